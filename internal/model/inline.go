package model

import "strings"

// InlineKind identifies an inline run.
type InlineKind int

// Inline kinds.
const (
	InlineText InlineKind = iota
	InlineBold
	InlineItalic
	InlineCode
	InlineStrike
	InlineLink
	InlineLineBreak
)

var inlineKindNames = [...]string{
	InlineText:      "text",
	InlineBold:      "bold",
	InlineItalic:    "italic",
	InlineCode:      "code",
	InlineStrike:    "strike",
	InlineLink:      "link",
	InlineLineBreak: "lineBreak",
}

func (k InlineKind) String() string {
	if k < 0 || int(k) >= len(inlineKindNames) {
		return "unknown"
	}
	return inlineKindNames[k]
}

// Inline is one styled run of text.
//
// Text and Code are leaves. Bold, Italic, Strike and Link hold their nested
// runs in Children, and Content is the concatenation of the children's
// content. LineBreak has no content.
type Inline struct {
	Kind     InlineKind
	Content  string
	Href     string
	Children []Inline
}

// Text returns a plain text run.
func Text(s string) Inline {
	return Inline{Kind: InlineText, Content: s}
}

// Code returns a code span.
func Code(s string) Inline {
	return Inline{Kind: InlineCode, Content: s}
}

// LineBreak returns an explicit line break.
func LineBreak() Inline {
	return Inline{Kind: InlineLineBreak}
}

// Styled wraps children in a styled run of kind k.
func Styled(k InlineKind, children ...Inline) Inline {
	return Inline{Kind: k, Content: PlainText(children), Children: children}
}

// Link wraps children in a link to href.
func Link(href string, children ...Inline) Inline {
	in := Styled(InlineLink, children...)
	in.Href = href
	return in
}

// PlainText concatenates the content of inlines. Line breaks become newlines.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		if in.Kind == InlineLineBreak {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(in.Content)
	}
	return b.String()
}

// Walk calls fn for every inline in depth-first order. Returning false from
// fn skips the children of that inline.
func Walk(inlines []Inline, fn func(Inline) bool) {
	for _, in := range inlines {
		if fn(in) && len(in.Children) > 0 {
			Walk(in.Children, fn)
		}
	}
}
