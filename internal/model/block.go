package model

// Kind identifies a block variant.
type Kind int

// Block kinds.
const (
	KindParagraph Kind = iota
	KindHeading
	KindList
	KindTable
	KindCodeBlock
	KindBlockquote
	KindImage
	KindHorizontalRule
	KindPageBreak
	KindDiagram
)

var kindNames = [...]string{
	KindParagraph:      "paragraph",
	KindHeading:        "heading",
	KindList:           "list",
	KindTable:          "table",
	KindCodeBlock:      "codeBlock",
	KindBlockquote:     "blockquote",
	KindImage:          "image",
	KindHorizontalRule: "horizontalRule",
	KindPageBreak:      "pageBreak",
	KindDiagram:        "diagram",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Align is an optional horizontal text alignment.
type Align string

// Alignment values. AlignNone leaves the renderer default in place.
const (
	AlignNone   Align = ""
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Block is one structural unit of a document.
// The set of implementations is closed to this package.
type Block interface {
	Kind() Kind
	// Text returns the raw source content of the block. Its meaning depends
	// on the variant (heading text, code, joined list items, ...).
	Text() string
	Alignment() Align
	// SourceLine returns the 1-based line where the block starts.
	SourceLine() int
	isBlock()
}

// Base carries the fields every block has.
type Base struct {
	Raw   string
	Align Align
	Line  int
}

func (b Base) Text() string     { return b.Raw }
func (b Base) Alignment() Align { return b.Align }
func (b Base) SourceLine() int  { return b.Line }
func (Base) isBlock()           {}

// Paragraph is a run of text lines separated from other blocks by blank lines.
type Paragraph struct {
	Base
	Inlines []Inline
}

// Heading is an ATX heading. AnchorID is empty until anchors are assigned.
type Heading struct {
	Base
	Level    int
	AnchorID string
	Inlines  []Inline
}

// PlainText returns the heading's visible text without markup.
func (h *Heading) PlainText() string {
	return PlainText(h.Inlines)
}

// ListItem is one entry of a list. Depth 0 is the outermost level.
type ListItem struct {
	Content string
	Inlines []Inline
	Depth   int
	Ordered bool
}

// List is a sequence of consecutive items.
type List struct {
	Base
	Ordered bool
	Start   int
	Items   []ListItem
}

// MaxDepth returns the deepest item nesting level in the list.
func (l *List) MaxDepth() int {
	depth := 0
	for _, it := range l.Items {
		if it.Depth > depth {
			depth = it.Depth
		}
	}
	return depth
}

// Cell is one table cell.
type Cell struct {
	Text    string
	Inlines []Inline
}

// Table holds a header row and body rows. Rows are kept exactly as written:
// their length may differ from len(Headers). Renderers pad short rows.
type Table struct {
	Base
	Headers []Cell
	Rows    [][]Cell
	Align   []Align
}

// Columns returns the widest row length, header included.
func (t *Table) Columns() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// ColumnAlign returns the alignment of column i, AlignNone when unspecified.
func (t *Table) ColumnAlign(i int) Align {
	if i < 0 || i >= len(t.Align) {
		return AlignNone
	}
	return t.Align[i]
}

// CodeBlock is a fenced block of verbatim lines.
type CodeBlock struct {
	Base
	Language string
}

// Content returns the verbatim code.
func (c *CodeBlock) Content() string { return c.Raw }

// Blockquote is a run of consecutive quoted lines.
type Blockquote struct {
	Base
	Inlines []Inline
}

// Image is a line consisting only of image syntax.
type Image struct {
	Base
	Src     string
	Alt     string
	Caption string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct {
	Base
}

// PageBreak is a sentinel consumed when splitting a document into pages.
// It is never rendered as content.
type PageBreak struct {
	Base
}

// Diagram carries diagram source through the pipeline. Raster is filled by
// an external rasterization step, keyed by ID, before rendering.
type Diagram struct {
	Base
	ID       string
	Language string
	Source   string
	Raster   string
	Caption  string
}

func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Heading) Kind() Kind        { return KindHeading }
func (*List) Kind() Kind           { return KindList }
func (*Table) Kind() Kind          { return KindTable }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }
func (*Blockquote) Kind() Kind     { return KindBlockquote }
func (*Image) Kind() Kind          { return KindImage }
func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }
func (*PageBreak) Kind() Kind      { return KindPageBreak }
func (*Diagram) Kind() Kind        { return KindDiagram }

// Compile-time checks that every variant is a Block.
var (
	_ Block = (*Paragraph)(nil)
	_ Block = (*Heading)(nil)
	_ Block = (*List)(nil)
	_ Block = (*Table)(nil)
	_ Block = (*CodeBlock)(nil)
	_ Block = (*Blockquote)(nil)
	_ Block = (*Image)(nil)
	_ Block = (*HorizontalRule)(nil)
	_ Block = (*PageBreak)(nil)
	_ Block = (*Diagram)(nil)
)

// Headings returns the heading blocks of blocks in document order.
func Headings(blocks []Block) []*Heading {
	var out []*Heading
	for _, b := range blocks {
		if h, ok := b.(*Heading); ok {
			out = append(out, h)
		}
	}
	return out
}

// SplitPages splits blocks on PageBreak sentinels. The sentinels themselves
// are dropped. Empty pages between consecutive breaks are kept so that
// authors can force a blank page; a trailing break yields no empty page.
func SplitPages(blocks []Block) [][]Block {
	pages := [][]Block{nil}
	for _, b := range blocks {
		if _, ok := b.(*PageBreak); ok {
			pages = append(pages, nil)
			continue
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], b)
	}
	if len(pages) > 1 && len(pages[len(pages)-1]) == 0 {
		pages = pages[:len(pages)-1]
	}
	return pages
}
