// Package linkcheck verifies that links in staged pages resolve, either to
// another staged destination, to a file under the configured check roots, or
// (optionally) to a reachable external URL.
package linkcheck

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/artificial-intelligence-first/docstage/internal/logfields"
	"github.com/artificial-intelligence-first/docstage/internal/markdown"
)

// Issue is one broken link found on a staged page.
type Issue struct {
	Page   string
	Link   string
	Reason string
}

// Result summarizes a link check over a set of staged pages.
type Result struct {
	Pages  int
	Links  int
	Issues []Issue
}

// OK reports whether no broken links were found.
func (r *Result) OK() bool { return len(r.Issues) == 0 }

// Options configures a Checker.
type Options struct {
	Root          string        // Repository root check roots are resolved against
	Roots         []string      // Directories link targets may live in, relative to Root
	External      bool          // Probe http(s) links over the network
	Timeout       time.Duration // Per-probe timeout
	MaxConcurrent int           // Concurrent external probes
}

// Checker verifies links in staged pages. It never writes anything.
type Checker struct {
	opts   Options
	pages  map[string][]byte
	client httpDoer
}

// New creates a Checker over staged pages keyed by destination path.
func New(pages map[string][]byte, opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	return &Checker{
		opts:   opts,
		pages:  pages,
		client: newProbeClient(opts.Timeout),
	}
}

// Check verifies every link on every staged page in destination order.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	destinations := make([]string, 0, len(c.pages))
	for d := range c.pages {
		destinations = append(destinations, d)
	}
	sort.Strings(destinations)

	result := &Result{Pages: len(destinations)}
	var probes []externalProbe
	queued := make(map[string]bool)

	for _, dest := range destinations {
		links := markdown.ExtractLinks(c.pages[dest])
		slog.Debug("Extracted links from staged page",
			logfields.Destination(dest), slog.Int("links", len(links)))

		for _, link := range links {
			target := strings.TrimSpace(link.Destination)
			if !shouldVerify(target) {
				continue
			}
			result.Links++

			if isExternal(target) {
				if c.opts.External && !queued[target] {
					queued[target] = true
					probes = append(probes, externalProbe{page: dest, url: target})
				}
				continue
			}

			if reason, ok := c.resolveInternal(dest, target); !ok {
				result.Issues = append(result.Issues, Issue{Page: dest, Link: link.Destination, Reason: reason})
			}
		}
	}

	if err := c.probeAll(ctx, probes, result); err != nil {
		return nil, err
	}

	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].Page != result.Issues[j].Page {
			return result.Issues[i].Page < result.Issues[j].Page
		}
		return result.Issues[i].Link < result.Issues[j].Link
	})
	return result, nil
}

// resolveInternal resolves target relative to the staged page's virtual
// directory and reports whether it lands on a staged destination or a file
// under one of the check roots.
func (c *Checker) resolveInternal(page, target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return "unparseable link target", false
	}
	if u.Scheme != "" || u.Host != "" {
		// Non-http schemes are not checkable here.
		return "", true
	}
	p := u.Path
	if p == "" {
		// Anchor or query on the page itself.
		return "", true
	}

	var virtual string
	if strings.HasPrefix(p, "/") {
		virtual = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		virtual = path.Clean(path.Join(path.Dir(page), p))
	}
	if virtual == "." {
		return "", true
	}
	if virtual == ".." || strings.HasPrefix(virtual, "../") {
		return "target escapes the staged tree", false
	}

	if _, ok := c.pages[virtual]; ok {
		return "", true
	}
	for _, rootDir := range c.opts.Roots {
		full := filepath.Join(c.opts.Root, filepath.FromSlash(rootDir), filepath.FromSlash(virtual))
		if _, err := os.Stat(full); err == nil {
			return "", true
		}
	}
	return "no staged page or file under the check roots", false
}

// shouldVerify filters out anchors, empty targets and non-navigational
// schemes.
func shouldVerify(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(target, prefix) {
			return false
		}
	}
	return true
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//")
}
