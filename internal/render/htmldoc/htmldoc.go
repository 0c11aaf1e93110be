package htmldoc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/render"
)

// DefaultLang is the document language when Options.Lang is empty.
const DefaultLang = "en"

// defaultTitle is used for documents without headings.
const defaultTitle = "Document"

// Options configures a Renderer.
type Options struct {
	// Stylesheet is prepended to the theme rules, typically the embedded
	// base stylesheet.
	Stylesheet string
	// TOCTitle is the heading of the table of contents. Empty omits it.
	TOCTitle string
	Lang     string
}

// Renderer produces a standalone HTML5 document.
type Renderer struct {
	opts Options
}

// Compile-time interface check.
var _ render.Renderer = (*Renderer)(nil)

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}
	return &Renderer{opts: opts}
}

// Render writes doc as HTML. The theme is completed with defaults first.
func (r *Renderer) Render(ctx context.Context, doc *model.Document, theme model.Theme) ([]byte, error) {
	if doc == nil {
		return nil, render.ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	theme = theme.WithDefaults()

	w := &writer{
		doc:         doc,
		highlighter: newHighlighter(theme.CodeStyle),
	}

	title := doc.Title()
	if title == "" {
		title = defaultTitle
	}

	w.s("<!DOCTYPE html>\n")
	w.s(`<html lang="`)
	w.esc(r.opts.Lang)
	w.s("\">\n<head>\n<meta charset=\"utf-8\">\n")
	w.s("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	w.s("<title>")
	w.esc(title)
	w.s("</title>\n<style>")
	w.s(sanitizeCSS(r.opts.Stylesheet))
	w.s(sanitizeCSS(buildThemeCSS(theme)))
	w.s("</style>\n</head>\n<body>\n")

	w.toc(doc.TOC, r.opts.TOCTitle)

	w.s("<main>\n")
	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.s("<section class=\"page\">\n")
		for _, b := range page {
			w.block(b)
		}
		w.s("</section>\n")
	}
	w.s("</main>\n</body>\n</html>\n")

	return []byte(w.buf.String()), nil
}

// writer accumulates the HTML of one render call.
type writer struct {
	buf         strings.Builder
	doc         *model.Document
	highlighter *highlighter
}

func (w *writer) s(str string) { w.buf.WriteString(str) }

func (w *writer) esc(str string) { w.buf.Write(util.EscapeHTML([]byte(str))) }

// url writes an escaped URL attribute value.
func (w *writer) url(href string) {
	w.buf.Write(util.EscapeHTML(util.URLEscape([]byte(href), false)))
}

// toc writes the numbered table of contents. Numbers and depths come from
// the pipeline, so the outline matches every other output format.
func (w *writer) toc(entries []model.TOCEntry, title string) {
	if len(entries) == 0 {
		return
	}
	w.s(`<nav class="toc">`)
	if title != "" {
		w.s(`<h2 class="toc-title">`)
		w.esc(title)
		w.s(`</h2>`)
	}
	w.s(`<ol class="toc-list">`)
	for _, e := range entries {
		fmt.Fprintf(&w.buf, `<li class="toc-item toc-depth-%d"><a href="#`, e.Depth)
		w.esc(e.AnchorID)
		w.s(`"><span class="toc-number">`)
		w.esc(e.Number)
		w.s(`</span> `)
		w.esc(e.Text)
		w.s(`</a></li>`)
	}
	w.s("</ol></nav>\n")
}

// open writes an opening tag with the block's alignment, if any.
func (w *writer) open(tag string, align model.Align, attrs string) {
	w.s("<" + tag + attrs)
	if align != model.AlignNone {
		w.s(` style="text-align:` + string(align) + `"`)
	}
	w.s(">")
}

func (w *writer) block(b model.Block) {
	switch v := b.(type) {
	case *model.Heading:
		tag := "h" + strconv.Itoa(clampLevel(v.Level))
		attrs := ""
		if v.AnchorID != "" {
			attrs = ` id="` + string(util.EscapeHTML([]byte(v.AnchorID))) + `"`
		}
		w.open(tag, v.Align, attrs)
		w.inlines(v.Inlines)
		w.s("</" + tag + ">\n")
	case *model.Paragraph:
		w.open("p", v.Align, "")
		w.inlines(v.Inlines)
		w.s("</p>\n")
	case *model.List:
		w.list(v)
	case *model.Table:
		w.table(v)
	case *model.CodeBlock:
		w.code(v)
	case *model.Blockquote:
		w.open("blockquote", v.Align, "")
		w.s("<p>")
		w.inlines(v.Inlines)
		w.s("</p></blockquote>\n")
	case *model.Image:
		w.image(v)
	case *model.HorizontalRule:
		w.s("<hr>\n")
	case *model.Diagram:
		w.diagram(v)
	case *model.PageBreak:
		// Consumed by Document.Pages.
	}
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}

// list writes nested lists from the flat, depth-annotated items.
func (w *writer) list(l *model.List) {
	var closers []string
	for _, it := range l.Items {
		d := it.Depth
		if d < 0 {
			d = 0
		}
		for len(closers) > d+1 {
			w.s("</li>" + closers[len(closers)-1])
			closers = closers[:len(closers)-1]
		}
		if len(closers) == d+1 {
			w.s("</li>")
		}
		for len(closers) < d+1 {
			tag, attrs := "ul", ""
			ordered := it.Ordered
			if len(closers) == 0 {
				ordered = l.Ordered
				if ordered && l.Start > 0 && l.Start != 1 {
					attrs = ` start="` + strconv.Itoa(l.Start) + `"`
				}
			}
			if ordered {
				tag = "ol"
			}
			if len(closers) == 0 {
				w.open(tag, l.Align, attrs)
			} else {
				w.s("<" + tag + ">")
			}
			closers = append(closers, "</"+tag+">")
		}
		w.s("<li>")
		w.inlines(it.Inlines)
	}
	for len(closers) > 0 {
		w.s("</li>" + closers[len(closers)-1])
		closers = closers[:len(closers)-1]
	}
	w.s("\n")
}

// table writes a table whose rows are padded to the widest row.
func (w *writer) table(t *model.Table) {
	cols := t.Columns()
	w.open("table", t.Base.Align, "")
	if len(t.Headers) > 0 {
		w.s("<thead><tr>")
		for i := 0; i < cols; i++ {
			w.cell("th", t.Headers, i, t.ColumnAlign(i))
		}
		w.s("</tr></thead>")
	}
	if len(t.Rows) > 0 {
		w.s("<tbody>")
		for _, row := range t.Rows {
			w.s("<tr>")
			for i := 0; i < cols; i++ {
				w.cell("td", row, i, t.ColumnAlign(i))
			}
			w.s("</tr>")
		}
		w.s("</tbody>")
	}
	w.s("</table>\n")
}

func (w *writer) cell(tag string, row []model.Cell, i int, align model.Align) {
	w.open(tag, align, "")
	if i < len(row) {
		w.inlines(row[i].Inlines)
	}
	w.s("</" + tag + ">")
}

func (w *writer) code(c *model.CodeBlock) {
	w.s(`<div class="code-block"`)
	if c.Language != "" {
		w.s(` data-language="`)
		w.esc(c.Language)
		w.s(`"`)
	}
	w.s(">")
	if out, ok := w.highlighter.highlight(c.Content(), c.Language); ok {
		w.s(out)
	} else {
		w.s("<pre><code>")
		w.esc(c.Content())
		w.s("</code></pre>")
	}
	w.s("</div>\n")
}

func (w *writer) image(img *model.Image) {
	w.open("figure", img.Align, "")
	w.img(img.Src, img.Alt)
	if img.Caption != "" {
		w.s("<figcaption>")
		w.esc(img.Caption)
		w.s("</figcaption>")
	}
	w.s("</figure>\n")
}

func (w *writer) img(src, alt string) {
	w.s(`<img src="`)
	if !html.IsDangerousURL([]byte(src)) {
		w.url(src)
	}
	w.s(`" alt="`)
	w.esc(alt)
	w.s(`">`)
}

// diagram writes the raster when one is attached, the source otherwise.
func (w *writer) diagram(d *model.Diagram) {
	attrs := ` class="diagram"`
	if d.ID != "" {
		attrs += ` id="` + string(util.EscapeHTML([]byte(d.ID))) + `"`
	}
	w.open("figure", d.Align, attrs)
	if d.Raster != "" {
		alt := d.Caption
		if alt == "" {
			alt = d.ID
		}
		w.img(d.Raster, alt)
	} else {
		w.s(`<pre class="diagram-source"`)
		if d.Language != "" {
			w.s(` data-language="`)
			w.esc(d.Language)
			w.s(`"`)
		}
		w.s("><code>")
		w.esc(d.Source)
		w.s("</code></pre>")
	}
	if d.Caption != "" {
		w.s("<figcaption>")
		w.esc(d.Caption)
		w.s("</figcaption>")
	}
	w.s("</figure>\n")
}

func (w *writer) inlines(ins []model.Inline) {
	for _, in := range ins {
		w.inline(in)
	}
}

func (w *writer) inline(in model.Inline) {
	switch in.Kind {
	case model.InlineText:
		w.esc(in.Content)
	case model.InlineCode:
		w.s("<code>")
		w.esc(in.Content)
		w.s("</code>")
	case model.InlineLineBreak:
		w.s("<br>")
	case model.InlineBold:
		w.wrap("strong", in.Children)
	case model.InlineItalic:
		w.wrap("em", in.Children)
	case model.InlineStrike:
		w.wrap("del", in.Children)
	case model.InlineLink:
		w.link(in)
	default:
		w.esc(in.Content)
	}
}

func (w *writer) wrap(tag string, children []model.Inline) {
	w.s("<" + tag + ">")
	w.inlines(children)
	w.s("</" + tag + ">")
}

// link writes an anchor. Internal links must resolve to a heading of the
// document and unsafe URLs are refused; both degrade to their text.
func (w *writer) link(in model.Inline) {
	if pipeline.IsInternalLink(in.Href) {
		id, ok := pipeline.ResolveAnchorLink(in.Href, w.doc.AnchorIDs)
		if !ok {
			w.inlines(in.Children)
			return
		}
		w.s(`<a href="#`)
		w.esc(id)
		w.s(`">`)
		w.inlines(in.Children)
		w.s("</a>")
		return
	}
	if in.Href == "" || html.IsDangerousURL([]byte(strings.ToLower(in.Href))) {
		w.inlines(in.Children)
		return
	}
	w.s(`<a href="`)
	w.url(in.Href)
	w.s(`">`)
	w.inlines(in.Children)
	w.s("</a>")
}
