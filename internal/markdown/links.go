// Package markdown extracts link-like constructs from Markdown pages for
// analysis. It does not re-render Markdown.
package markdown

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
	LinkKindHTML                LinkKind = "html"
)

// Link is one extracted link with the construct it came from.
type Link struct {
	Kind        LinkKind
	Destination string
}
