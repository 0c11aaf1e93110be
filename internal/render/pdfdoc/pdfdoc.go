package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/render"
)

// DefaultEmojiSubstitute replaces each emoji cluster when
// Options.EmojiSubstitute is empty.
const DefaultEmojiSubstitute = "?"

// DefaultCreator is written to the document information dictionary.
const DefaultCreator = "go-md2doc"

// Layout constants, in points.
const (
	pointsPerInch  = 72.0
	listIndent     = 18.0
	markerWidth    = 14.0
	quoteIndent    = 14.0
	quoteRuleWidth = 2.0
	tocIndent      = 16.0
	cellMargin     = 3.0
	lineWidth      = 0.5
	footerFontSize = 8.0
	captionRatio   = 0.85
)

// Footer appearance, shared with the browser print footer.
const (
	footerGray      = 0xaa
	footerSeparator = " - "
)

// bullets are cycled by list depth.
var bullets = []string{"•", "-", "·"}

// Options configures a Renderer.
type Options struct {
	// BaseDir resolves relative image and font paths.
	BaseDir string
	// TOCTitle is the heading of the contents page. Empty omits it.
	TOCTitle        string
	EmojiSubstitute string
	Creator         string
	// Now returns the time used for "auto" footer dates. Defaults to time.Now.
	Now func() time.Time
	// Uncompressed writes page content streams without compression.
	Uncompressed bool
}

// Renderer produces fixed-layout PDF documents.
type Renderer struct {
	opts Options
}

// Compile-time interface check.
var _ render.Renderer = (*Renderer)(nil)

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.EmojiSubstitute == "" {
		opts.EmojiSubstitute = DefaultEmojiSubstitute
	}
	if opts.Creator == "" {
		opts.Creator = DefaultCreator
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{opts: opts}
}

// Render lays out doc on pages sized by theme. A table of contents page is
// emitted first when the document has TOC entries.
func (r *Renderer) Render(ctx context.Context, doc *model.Document, theme model.Theme) ([]byte, error) {
	if doc == nil {
		return nil, render.ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	theme = theme.WithDefaults()

	footer, err := r.footerText(theme.Footer)
	if err != nil {
		return nil, err
	}

	pdf := newPDF(theme)
	pdf.SetCompression(!r.opts.Uncompressed)
	pdf.SetCreator(r.opts.Creator, true)
	if title := doc.Title(); title != "" {
		pdf.SetTitle(title, true)
	}

	fonts, err := loadFonts(pdf, theme.Fonts, r.opts.BaseDir, r.opts.EmojiSubstitute)
	if err != nil {
		return nil, err
	}

	w := newWriter(pdf, doc, theme, fonts, newImageCache(pdf, r.opts.BaseDir))
	if theme.Footer.Enabled() {
		if theme.Footer.ShowPageNumber {
			pdf.AliasNbPages("")
		}
		pdf.SetFooterFunc(w.footer(footer, theme.Footer))
	}

	if len(doc.TOC) > 0 {
		pdf.AddPage()
		w.toc(r.opts.TOCTitle)
	}
	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		for _, b := range page {
			w.block(b)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// footerText joins the date and text parts of the footer the way the
// browser print footer does. The page number is added per page.
func (r *Renderer) footerText(f model.Footer) (string, error) {
	var parts []string
	if f.Date != "" {
		date, err := dateutil.ResolveDate(f.Date, r.opts.Now())
		if err != nil {
			return "", fmt.Errorf("footer date: %w", err)
		}
		parts = append(parts, date)
	}
	if f.Text != "" {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, footerSeparator), nil
}

// newPDF creates a point-based document with the theme page box.
func newPDF(theme model.Theme) *gofpdf.Fpdf {
	w, h := theme.Page.Dimensions()
	orientation := "P"
	if w > h {
		w, h = h, w
		orientation = "L"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w * pointsPerInch, Ht: h * pointsPerInch},
	})
	m := theme.Page.Margins
	pdf.SetMargins(m.Left*pointsPerInch, m.Top*pointsPerInch, m.Right*pointsPerInch)
	pdf.SetAutoPageBreak(true, m.Bottom*pointsPerInch)
	pdf.SetCellMargin(cellMargin)
	pdf.SetLineWidth(lineWidth)
	return pdf
}

// span is the inherited style of an inline run.
type span struct {
	face       face
	size       float64
	style      string
	color      string
	lineHeight float64
	link       int
	url        string
}

func (s span) with(style byte) span {
	if !strings.ContainsRune(s.style, rune(style)) {
		s.style += string(style)
	}
	return s
}

// writer draws the blocks of one render call.
type writer struct {
	pdf     *gofpdf.Fpdf
	doc     *model.Document
	theme   model.Theme
	fonts   fontSet
	images  *imageCache
	links   map[string]int
	outline outline

	left, top, contentWidth, pageBottom float64
}

func newWriter(pdf *gofpdf.Fpdf, doc *model.Document, theme model.Theme, fonts fontSet, images *imageCache) *writer {
	w := &writer{
		pdf:    pdf,
		doc:    doc,
		theme:  theme,
		fonts:  fonts,
		images: images,
		links:  make(map[string]int),
	}
	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	w.left, w.top = left, top
	w.contentWidth = pageW - left - right
	w.pageBottom = pageH - bottom

	headings := model.Headings(doc.Blocks)
	w.outline = newOutline(headings)
	for _, h := range headings {
		if h.AnchorID != "" {
			w.links[h.AnchorID] = pdf.AddLink()
		}
	}
	return w
}

func (w *writer) lineHeight(size float64) float64 {
	leading := w.theme.Leading
	if leading < 1 {
		leading = 1
	}
	return size * leading
}

func (w *writer) bodySpan() span {
	size := w.theme.Fonts.Body.Size
	return span{
		face:       w.fonts.body,
		size:       size,
		color:      w.theme.Colors.Text,
		lineHeight: w.lineHeight(size),
	}
}

func (w *writer) textColor(hex string) {
	w.pdf.SetTextColor(model.RGB(hex))
}

func (w *writer) drawColor(hex string) {
	w.pdf.SetDrawColor(model.RGB(hex))
}

func (w *writer) gap() {
	w.pdf.Ln(w.theme.Fonts.Body.Size * 0.6)
}

// ensureSpace starts a new page when less than h points remain.
func (w *writer) ensureSpace(h float64) {
	if w.pdf.GetY()+h > w.pageBottom {
		w.pdf.AddPage()
	}
}

func (w *writer) atPageTop() bool {
	return w.pdf.GetY() <= w.top+0.5
}

func alignStr(a model.Align) string {
	switch a {
	case model.AlignCenter:
		return "C"
	case model.AlignRight:
		return "R"
	}
	return "L"
}

func (w *writer) block(b model.Block) {
	switch v := b.(type) {
	case *model.Heading:
		w.heading(v)
	case *model.Paragraph:
		w.paragraph(v.Inlines, v.Align, w.bodySpan())
	case *model.List:
		w.list(v)
	case *model.Table:
		w.table(v)
	case *model.CodeBlock:
		w.code(v.Content())
	case *model.Blockquote:
		w.blockquote(v)
	case *model.Image:
		w.image(v.Src, v.Alt, v.Caption)
	case *model.HorizontalRule:
		w.rule()
	case *model.Diagram:
		w.diagram(v)
	case *model.PageBreak:
		// Consumed by Document.Pages.
	}
}

func (w *writer) paragraph(ins []model.Inline, align model.Align, sp span) {
	w.paragraphText(ins, align, sp)
	w.gap()
}

func (w *writer) heading(h *model.Heading) {
	size := w.theme.HeadingSize(h.Level)
	sp := span{
		face:       w.fonts.heading,
		size:       size,
		style:      "B",
		color:      w.theme.Colors.Heading,
		lineHeight: size * 1.2,
	}
	if !w.atPageTop() {
		w.pdf.Ln(size * 0.4)
	}
	// Keep the heading with at least two body lines.
	w.ensureSpace(sp.lineHeight + 2*w.lineHeight(w.theme.Fonts.Body.Size))

	if link, ok := w.links[h.AnchorID]; ok {
		w.pdf.SetLink(link, -1, -1)
	}
	w.pdf.SetFont(sp.face.family, sp.style, sp.size)
	w.pdf.Bookmark(w.fonts.text(sp.face, h.PlainText()), w.outline.level(h.Level), -1)

	if h.Align == model.AlignCenter || h.Align == model.AlignRight {
		w.textColor(sp.color)
		w.pdf.MultiCell(0, sp.lineHeight, w.fonts.text(sp.face, h.PlainText()), "", alignStr(h.Align), false)
	} else {
		w.inlines(h.Inlines, sp)
		w.pdf.Ln(sp.lineHeight)
	}
	w.pdf.Ln(size * 0.2)
}

func (w *writer) inlines(ins []model.Inline, sp span) {
	for _, in := range ins {
		w.inline(in, sp)
	}
}

func (w *writer) inline(in model.Inline, sp span) {
	switch in.Kind {
	case model.InlineText:
		w.write(in.Content, sp)
	case model.InlineCode:
		sp.size *= w.theme.Fonts.Code.Size / w.theme.Fonts.Body.Size
		sp.face = w.fonts.code
		w.write(in.Content, sp)
	case model.InlineLineBreak:
		w.pdf.Ln(sp.lineHeight)
	case model.InlineBold:
		w.inlines(in.Children, sp.with('B'))
	case model.InlineItalic:
		w.inlines(in.Children, sp.with('I'))
	case model.InlineStrike:
		w.inlines(in.Children, sp.with('S'))
	case model.InlineLink:
		w.link(in, sp)
	default:
		w.write(in.Content, sp)
	}
}

// link resolves internal links to heading targets and keeps safe external
// URLs. Anything else is written as plain text.
func (w *writer) link(in model.Inline, sp span) {
	linked := false
	if pipeline.IsInternalLink(in.Href) {
		if id, ok := pipeline.ResolveAnchorLink(in.Href, w.doc.AnchorIDs); ok {
			if target, ok := w.links[id]; ok {
				sp.link = target
				linked = true
			}
		}
	} else if in.Href != "" && !html.IsDangerousURL([]byte(strings.ToLower(in.Href))) {
		sp.url = in.Href
		linked = true
	}
	if linked {
		sp.color = w.theme.Colors.Link
		if w.theme.LinkUnderline {
			sp = sp.with('U')
		}
	}
	w.inlines(in.Children, sp)
}

func (w *writer) write(s string, sp span) {
	if s == "" {
		return
	}
	w.pdf.SetFont(sp.face.family, sp.style, sp.size)
	w.textColor(sp.color)
	txt := w.fonts.text(sp.face, s)
	switch {
	case sp.link > 0:
		w.pdf.WriteLinkID(sp.lineHeight, txt, sp.link)
	case sp.url != "":
		w.pdf.WriteLinkString(sp.lineHeight, txt, sp.url)
	default:
		w.pdf.Write(sp.lineHeight, txt)
	}
}

// list draws items with their markers in a gutter left of the item text.
// Ordered counters restart whenever a shallower item closes a nested list.
func (w *writer) list(l *model.List) {
	sp := w.bodySpan()
	counters := make(map[int]int)
	for _, it := range l.Items {
		d := max(it.Depth, 0)
		for depth := range counters {
			if depth > d {
				delete(counters, depth)
			}
		}

		ordered := it.Ordered
		if d == 0 {
			ordered = l.Ordered
		}
		marker := bullets[d%len(bullets)]
		if ordered {
			n, seen := counters[d]
			switch {
			case seen:
				n++
			case d == 0 && l.Start > 0:
				n = l.Start
			default:
				n = 1
			}
			counters[d] = n
			marker = strconv.Itoa(n) + "."
		}

		indent := w.left + listIndent*float64(d+1)
		w.pdf.SetLeftMargin(indent)
		w.pdf.SetX(indent - markerWidth)
		w.pdf.SetFont(sp.face.family, "", sp.size)
		w.textColor(sp.color)
		w.pdf.CellFormat(markerWidth, sp.lineHeight, w.fonts.text(sp.face, marker), "", 0, "L", false, 0, "")
		w.inlines(it.Inlines, sp)
		w.pdf.Ln(sp.lineHeight)
	}
	w.pdf.SetLeftMargin(w.left)
	w.gap()
}

// table draws bordered cells of equal width. Rows shorter than the widest
// row are padded with empty cells, and a row never splits across pages.
func (w *writer) table(t *model.Table) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	colW := w.contentWidth / float64(cols)
	sp := w.bodySpan()
	lh := sp.size * 1.3
	w.drawColor(w.theme.Colors.Rule)
	w.textColor(sp.color)

	row := func(cells []model.Cell, style string) {
		w.pdf.SetFont(sp.face.family, style, sp.size)
		texts := make([]string, cols)
		lines := 1
		for i := range texts {
			if i < len(cells) {
				texts[i] = w.fonts.text(sp.face, model.PlainText(cells[i].Inlines))
			}
			if n := len(w.pdf.SplitLines([]byte(texts[i]), colW-2*cellMargin)); n > lines {
				lines = n
			}
		}
		h := float64(lines) * lh
		w.ensureSpace(h)
		y := w.pdf.GetY()
		for i, txt := range texts {
			x := w.left + float64(i)*colW
			w.pdf.Rect(x, y, colW, h, "D")
			w.pdf.SetXY(x, y)
			w.pdf.MultiCell(colW, lh, txt, "", alignStr(t.ColumnAlign(i)), false)
		}
		w.pdf.SetXY(w.left, y+h)
	}

	if len(t.Headers) > 0 {
		row(t.Headers, "B")
	}
	for _, r := range t.Rows {
		row(r, "")
	}
	w.gap()
}

// code draws verbatim text on the theme code background.
func (w *writer) code(content string) {
	size := w.theme.Fonts.Code.Size
	w.pdf.SetFont(w.fonts.code.family, "", size)
	w.pdf.SetFillColor(model.RGB(w.theme.Colors.CodeBackground))
	w.textColor(w.theme.Colors.Text)
	content = strings.ReplaceAll(strings.TrimRight(content, "\n"), "\t", "    ")
	w.pdf.MultiCell(0, size*1.35, w.fonts.text(w.fonts.code, content), "", "L", true)
	w.gap()
}

// blockquote indents italic text behind a vertical rule. When the quote
// crosses a page, the rule is drawn on the last page from the top margin.
func (w *writer) blockquote(q *model.Blockquote) {
	sp := w.bodySpan().with('I')
	startY, startPage := w.pdf.GetY(), w.pdf.PageNo()

	w.pdf.SetLeftMargin(w.left + quoteIndent)
	w.pdf.SetX(w.left + quoteIndent)
	w.paragraphText(q.Inlines, q.Align, sp)
	w.pdf.SetLeftMargin(w.left)
	endY := w.pdf.GetY()

	if w.pdf.PageNo() != startPage {
		startY = w.top
	}
	w.drawColor(w.theme.Colors.QuoteBorder)
	w.pdf.SetLineWidth(quoteRuleWidth)
	x := w.left + quoteRuleWidth/2
	w.pdf.Line(x, startY, x, endY)
	w.pdf.SetLineWidth(lineWidth)
	w.gap()
}

// paragraphText writes flowing inline runs. Centered and right-aligned
// text is drawn as one plain-text cell since Write only flows from the left.
func (w *writer) paragraphText(ins []model.Inline, align model.Align, sp span) {
	if align == model.AlignCenter || align == model.AlignRight {
		w.pdf.SetFont(sp.face.family, sp.style, sp.size)
		w.textColor(sp.color)
		w.pdf.MultiCell(0, sp.lineHeight, w.fonts.text(sp.face, model.PlainText(ins)), "", alignStr(align), false)
		return
	}
	w.inlines(ins, sp)
	w.pdf.Ln(sp.lineHeight)
}

// image draws src scaled to fit the content box, centered, followed by
// its caption. Unreadable sources fall back to "[alt]".
func (w *writer) image(src, alt, caption string) {
	name, ok := w.images.load(src)
	if !ok {
		sp := w.bodySpan().with('I')
		w.paragraph([]model.Inline{model.Text("[" + alt + "]")}, model.AlignNone, sp)
		return
	}
	iw, ih := w.pdf.GetImageInfo(name).Extent()
	if iw <= 0 || ih <= 0 {
		return
	}
	maxH := (w.pageBottom - w.top) * 0.8
	scale := min(1, w.contentWidth/iw, maxH/ih)
	iw, ih = iw*scale, ih*scale

	x := w.left + (w.contentWidth-iw)/2
	w.pdf.ImageOptions(name, x, -1, iw, ih, true, gofpdf.ImageOptions{}, 0, "")
	w.caption(caption)
	w.gap()
}

func (w *writer) caption(text string) {
	if text == "" {
		return
	}
	size := w.theme.Fonts.Body.Size * captionRatio
	w.pdf.SetFont(w.fonts.body.family, "I", size)
	w.textColor(w.theme.Colors.Text)
	w.pdf.MultiCell(0, w.lineHeight(size), w.fonts.text(w.fonts.body, text), "", "C", false)
}

// diagram draws the attached raster, or the source as a code block when
// there is none or it cannot be read.
func (w *writer) diagram(d *model.Diagram) {
	if d.Raster != "" {
		if _, ok := w.images.load(d.Raster); ok {
			alt := d.Caption
			if alt == "" {
				alt = d.ID
			}
			w.image(d.Raster, alt, d.Caption)
			return
		}
	}
	w.code(d.Source)
	if d.Caption != "" {
		w.caption(d.Caption)
		w.gap()
	}
}

func (w *writer) rule() {
	lh := w.lineHeight(w.theme.Fonts.Body.Size)
	y := w.pdf.GetY() + lh/2
	w.drawColor(w.theme.Colors.Rule)
	w.pdf.Line(w.left, y, w.left+w.contentWidth, y)
	w.pdf.SetY(y + lh/2)
}

// toc draws the contents page. Entries link to their headings and are
// indented by depth.
func (w *writer) toc(title string) {
	if title != "" {
		size := w.theme.HeadingSize(1)
		w.pdf.SetFont(w.fonts.heading.family, "B", size)
		w.textColor(w.theme.Colors.Heading)
		w.pdf.MultiCell(0, size*1.2, w.fonts.text(w.fonts.heading, title), "", "L", false)
		w.gap()
	}
	sp := w.bodySpan()
	for _, e := range w.doc.TOC {
		x := w.left + float64(max(e.Depth, 1)-1)*tocIndent
		w.pdf.SetLeftMargin(x)
		w.pdf.SetX(x)
		label := strings.TrimSpace(e.Number + " " + e.Text)
		if target, ok := w.links[e.AnchorID]; ok {
			sp.link = target
		} else {
			sp.link = 0
		}
		w.write(label, sp)
		w.pdf.Ln(sp.lineHeight)
	}
	w.pdf.SetLeftMargin(w.left)
}

// footer returns the per-page footer callback.
func (w *writer) footer(text string, f model.Footer) func() {
	align := "R"
	switch strings.ToLower(f.Position) {
	case "left":
		align = "L"
	case "center":
		align = "C"
	}
	return func() {
		content := text
		if f.ShowPageNumber {
			page := strconv.Itoa(w.pdf.PageNo()) + "/{nb}"
			if content == "" {
				content = page
			} else {
				content = page + footerSeparator + content
			}
		}
		bottom := w.theme.Page.Margins.Bottom * pointsPerInch
		w.pdf.SetY(-(bottom/2 + footerFontSize))
		w.pdf.SetX(w.left)
		w.pdf.SetFont(w.fonts.body.family, "", footerFontSize)
		w.pdf.SetTextColor(footerGray, footerGray, footerGray)
		w.pdf.CellFormat(w.contentWidth, footerFontSize*1.5, w.fonts.text(w.fonts.body, content), "", 0, align, false, 0, "")
	}
}

// outline maps heading levels to bookmark levels. Levels are relative to
// the shallowest heading and never skip, which the PDF outline requires.
type outline struct {
	base, prev int
}

func newOutline(headings []*model.Heading) outline {
	base := 0
	for _, h := range headings {
		if base == 0 || h.Level < base {
			base = h.Level
		}
	}
	return outline{base: base, prev: -1}
}

func (o *outline) level(headingLevel int) int {
	l := max(headingLevel-o.base, 0)
	if l > o.prev+1 {
		l = o.prev + 1
	}
	o.prev = l
	return l
}
