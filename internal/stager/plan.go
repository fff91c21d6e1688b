package stager

import (
	"path/filepath"
	"strings"
)

// Rule is one literal substring replacement applied to a staged page's text.
// Absence of a match is not an error; rewriting is best-effort substitution.
type Rule struct {
	From string
	To   string
}

// PageMapping binds one destination path in the staged tree to its source
// file. Destination is a forward-slash relative path; Source is relative to
// the repository root. Rewrites are applied in declared order.
type PageMapping struct {
	Destination string
	Source      string
	Rewrites    []Rule
}

// Plan is the ordered mapping table for one staging pass. It is constructed
// once from configuration and never mutated during a run.
type Plan struct {
	Root  string // absolute repository root sources are resolved against
	Pages []PageMapping
}

// Destinations returns the plan's destination paths in declared order.
func (p Plan) Destinations() []string {
	out := make([]string, 0, len(p.Pages))
	for _, pg := range p.Pages {
		out = append(out, pg.Destination)
	}
	return out
}

// SourcePath returns the absolute filesystem path of a page's source file.
func (p Plan) SourcePath(pg PageMapping) string {
	return filepath.Join(p.Root, filepath.FromSlash(pg.Source))
}

// Rewrite applies rules to text in declared order and reports how many
// substring occurrences were replaced in total.
func Rewrite(text string, rules []Rule) (string, int) {
	replaced := 0
	for _, r := range rules {
		if r.From == "" {
			continue
		}
		if n := strings.Count(text, r.From); n > 0 {
			text = strings.ReplaceAll(text, r.From, r.To)
			replaced += n
		}
	}
	return text, replaced
}
