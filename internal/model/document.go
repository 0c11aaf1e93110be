package model

import "strings"

// TOCEntry is one line of a table of contents.
//
// Depth and Number give the entry's position in the outline: depth 1 is the
// shallowest selected level, skipped levels are collapsed, and Number is the
// dotted counter ("1.2.").
type TOCEntry struct {
	Text     string
	Level    int
	AnchorID string
	Depth    int
	Number   string
}

// Document is the output of one generation pass.
type Document struct {
	Blocks []Block
	// AnchorIDs lists every heading anchor in document order.
	AnchorIDs []string
	TOC       []TOCEntry
	// PageBreaks holds the estimated 1-based line offsets of page breaks.
	PageBreaks []int
}

// Pages splits the document's blocks on page-break sentinels.
func (d *Document) Pages() [][]Block {
	return SplitPages(d.Blocks)
}

// Diagrams returns the diagram blocks in document order.
func (d *Document) Diagrams() []*Diagram {
	var out []*Diagram
	for _, b := range d.Blocks {
		if dg, ok := b.(*Diagram); ok {
			out = append(out, dg)
		}
	}
	return out
}

// Title returns the plain text of the first level-1 heading, or of the
// first heading when there is no level-1 heading. It is empty for documents
// without headings.
func (d *Document) Title() string {
	var first string
	for _, h := range Headings(d.Blocks) {
		text := strings.TrimSpace(h.PlainText())
		if h.Level == 1 {
			return text
		}
		if first == "" {
			first = text
		}
	}
	return first
}

// HasAnchor reports whether id is one of the document's heading anchors.
func (d *Document) HasAnchor(id string) bool {
	for _, a := range d.AnchorIDs {
		if a == id {
			return true
		}
	}
	return false
}
