package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// ParseOptions tunes block recognition.
type ParseOptions struct {
	// PageBreakMarkers are whole lines that produce a page-break sentinel,
	// in addition to "<!-- pagebreak -->".
	PageBreakMarkers []string
	// DiagramLabels are fence info words that produce diagram blocks
	// instead of code blocks. Matching is case-insensitive.
	DiagramLabels []string
}

// DefaultParseOptions returns the markers and labels recognized by default.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		PageBreakMarkers: []string{model.DefaultPageBreakMarker, `\pagebreak`, `\newpage`},
		DiagramLabels:    []string{"mermaid", "plantuml", "diagram"},
	}
}

// WithPageBreakMarker returns a copy of o that also recognizes marker.
func (o ParseOptions) WithPageBreakMarker(marker string) ParseOptions {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return o
	}
	for _, m := range o.PageBreakMarkers {
		if m == marker {
			return o
		}
	}
	markers := make([]string, 0, len(o.PageBreakMarkers)+1)
	markers = append(markers, o.PageBreakMarkers...)
	o.PageBreakMarkers = append(markers, marker)
	return o
}

// WithDiagramLabels returns a copy of o that also treats labels as diagram
// fences. Blank and duplicate labels are ignored.
func (o ParseOptions) WithDiagramLabels(labels ...string) ParseOptions {
	out := make([]string, 0, len(o.DiagramLabels)+len(labels))
	out = append(out, o.DiagramLabels...)
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		dup := false
		for _, existing := range out {
			if strings.EqualFold(existing, l) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	o.DiagramLabels = out
	return o
}

var (
	headingLine   = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*)$`)
	closingHashes = regexp.MustCompile(`(?:^|[ \t]+)#+[ \t]*$`)
	fenceLine     = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})[ \t]*(.*)$")
	ruleLine      = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	quoteLine     = regexp.MustCompile(`^ {0,3}>[ ]?(.*)$`)
	listLine      = regexp.MustCompile(`^( *)([-*+]|\d{1,9}[.)])(?:[ \t]+(.*))?$`)
	tableSepLine  = regexp.MustCompile(`^[ \t]*\|?[ \t]*:?-+:?[ \t]*(?:\|[ \t]*:?-+:?[ \t]*)*\|?[ \t]*$`)
	imageLine     = regexp.MustCompile(`^!\[([^\]]*)\]\([ \t]*(<[^>]*>|[^\s)]+)(?:[ \t]+"([^"]*)")?[ \t]*\)$`)
	commentBreak  = regexp.MustCompile(`(?i)^<!--\s*page-?break\s*-->$`)
	alignSuffix   = regexp.MustCompile(`[ \t]*\{[ \t]*\.(left|center|right)[ \t]*\}[ \t]*$`)
)

// ParseMarkdown parses source into blocks with the default options.
func ParseMarkdown(source string) []model.Block {
	return ParseMarkdownWithOptions(source, DefaultParseOptions())
}

// ParseMarkdownWithOptions parses source into an ordered block sequence.
//
// The scan is line oriented and single pass: once a line commits to a block
// type, later lines cannot change that decision. Blank lines separate blocks
// and are dropped. The result is identical for identical input.
func ParseMarkdownWithOptions(source string, opts ParseOptions) []model.Block {
	p := &blockParser{
		lines: splitLines(Preprocess(source)),
		opts:  opts,
	}
	p.parse()
	return p.blocks
}

type blockParser struct {
	lines  []string
	opts   ParseOptions
	blocks []model.Block

	para      []string
	paraStart int
}

func (p *blockParser) line(i int) string {
	return expandTabs(p.lines[i])
}

func (p *blockParser) parse() {
	for i := 0; i < len(p.lines); {
		line := p.line(i)
		if strings.TrimSpace(line) == "" {
			p.flushParagraph()
			i++
			continue
		}
		if next, ok := p.parseBlock(i); ok {
			i = next
			continue
		}
		if len(p.para) == 0 {
			p.paraStart = i + 1
		}
		p.para = append(p.para, strings.TrimLeft(line, " "))
		i++
	}
	p.flushParagraph()
}

// parseBlock tries every non-paragraph block type at line i. On success it
// returns the index of the first line after the block.
func (p *blockParser) parseBlock(i int) (int, bool) {
	line := p.line(i)
	trimmed := strings.TrimSpace(line)

	if m := fenceLine.FindStringSubmatch(line); m != nil && !(m[2][0] == '`' && strings.Contains(m[3], "`")) {
		p.flushParagraph()
		return p.parseFence(i, len(m[1]), m[2], m[3]), true
	}
	if p.isPageBreak(trimmed) {
		p.flushParagraph()
		p.add(&model.PageBreak{Base: model.Base{Raw: trimmed, Line: i + 1}})
		return i + 1, true
	}
	if m := headingLine.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.addHeading(i, len(m[1]), m[2])
		return i + 1, true
	}
	if ruleLine.MatchString(line) {
		p.flushParagraph()
		p.add(&model.HorizontalRule{Base: model.Base{Raw: trimmed, Line: i + 1}})
		return i + 1, true
	}
	if quoteLine.MatchString(line) {
		p.flushParagraph()
		return p.parseBlockquote(i), true
	}
	if p.isTableStart(i) {
		p.flushParagraph()
		return p.parseTable(i), true
	}
	if img, ok := parseImageLine(trimmed, i+1); ok {
		p.flushParagraph()
		p.add(img)
		return i + 1, true
	}
	if listLine.MatchString(line) {
		p.flushParagraph()
		return p.parseList(i), true
	}
	return 0, false
}

func (p *blockParser) add(b model.Block) {
	p.blocks = append(p.blocks, b)
}

func (p *blockParser) isPageBreak(trimmed string) bool {
	return isPageBreakLine(trimmed, p.opts.PageBreakMarkers)
}

// isPageBreakLine reports whether a trimmed line is "<!-- pagebreak -->" or
// one of markers.
func isPageBreakLine(trimmed string, markers []string) bool {
	if commentBreak.MatchString(trimmed) {
		return true
	}
	for _, m := range markers {
		if m != "" && trimmed == m {
			return true
		}
	}
	return false
}

func (p *blockParser) isDiagramLabel(label string) bool {
	for _, l := range p.opts.DiagramLabels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

func (p *blockParser) flushParagraph() {
	if len(p.para) == 0 {
		return
	}
	raw := strings.TrimRight(strings.Join(p.para, "\n"), " \t")
	raw, align := splitAlign(raw)
	p.add(&model.Paragraph{
		Base:    model.Base{Raw: raw, Align: align, Line: p.paraStart},
		Inlines: ParseInline(raw),
	})
	p.para = p.para[:0]
}

func (p *blockParser) addHeading(i, level int, text string) {
	text = strings.TrimSpace(text)
	text, align := splitAlign(text)
	text = strings.TrimSpace(closingHashes.ReplaceAllString(text, ""))
	p.add(&model.Heading{
		Base:    model.Base{Raw: text, Align: align, Line: i + 1},
		Level:   level,
		Inlines: ParseInline(text),
	})
}

// parseFence consumes a fenced code or diagram block. An unterminated fence
// runs to the end of the input.
func (p *blockParser) parseFence(i, indent int, fence, info string) int {
	fields := strings.Fields(info)
	label := ""
	if len(fields) > 0 {
		label = fields[0]
	}

	var body []string
	j := i + 1
	for ; j < len(p.lines); j++ {
		line := p.line(j)
		if isClosingFence(line, fence) {
			break
		}
		body = append(body, stripIndent(line, indent))
	}
	content := strings.Join(body, "\n")
	next := j + 1
	if j >= len(p.lines) {
		next = j
	}

	if label != "" && p.isDiagramLabel(label) {
		p.add(&model.Diagram{
			Base:     model.Base{Raw: content, Line: i + 1},
			ID:       DiagramID(label, content),
			Language: strings.ToLower(label),
			Source:   content,
			Caption:  strings.Join(fields[1:], " "),
		})
		return next
	}
	p.add(&model.CodeBlock{
		Base:     model.Base{Raw: content, Line: i + 1},
		Language: label,
	})
	return next
}

func isClosingFence(line, fence string) bool {
	t := strings.TrimSpace(line)
	if len(t) < len(fence) || len(line)-len(strings.TrimLeft(line, " ")) > 3 {
		return false
	}
	return strings.Trim(t, fence[:1]) == ""
}

func stripIndent(line string, n int) string {
	for n > 0 && strings.HasPrefix(line, " ") {
		line = line[1:]
		n--
	}
	return line
}

// DiagramID derives a stable identifier from a diagram's label and source.
// External rasterizers key their output by this id.
func DiagramID(label, source string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(label) + "\n" + source))
	return "diagram-" + hex.EncodeToString(sum[:6])
}

// parseBlockquote merges consecutive quoted lines. An empty quoted line
// becomes a hard line break.
func (p *blockParser) parseBlockquote(i int) int {
	var lines []string
	j := i
	for ; j < len(p.lines); j++ {
		m := quoteLine.FindStringSubmatch(p.line(j))
		if m == nil {
			break
		}
		content := strings.TrimRight(m[1], " \t")
		if content == "" {
			if len(lines) > 0 && !strings.HasSuffix(lines[len(lines)-1], "  ") {
				lines[len(lines)-1] += "  "
			}
			continue
		}
		lines = append(lines, m[1])
	}
	raw := strings.TrimRight(strings.Join(lines, "\n"), " \t")
	p.add(&model.Blockquote{
		Base:    model.Base{Raw: raw, Line: i + 1},
		Inlines: ParseInline(raw),
	})
	return j
}

func (p *blockParser) isTableStart(i int) bool {
	if i+1 >= len(p.lines) || !strings.Contains(p.lines[i], "|") {
		return false
	}
	sep := p.lines[i+1]
	return strings.Contains(sep, "|") && tableSepLine.MatchString(sep)
}

// parseTable consumes a header row, a separator row and body rows until a
// line without a pipe. Rows are kept at their written length.
func (p *blockParser) parseTable(i int) int {
	header := splitRow(p.lines[i])
	t := &model.Table{
		Base:  model.Base{Raw: p.lines[i], Line: i + 1},
		Align: parseColumnAlign(p.lines[i+1]),
	}
	if !allEmpty(header) {
		t.Headers = makeCells(header)
	}

	raw := []string{p.lines[i], p.lines[i+1]}
	j := i + 2
	for ; j < len(p.lines); j++ {
		line := p.lines[j]
		if strings.TrimSpace(line) == "" || !strings.Contains(line, "|") {
			break
		}
		raw = append(raw, line)
		t.Rows = append(t.Rows, makeCells(splitRow(line)))
	}
	t.Raw = strings.Join(raw, "\n")
	p.add(t)
	return j
}

// splitRow splits a table row on pipes that are neither escaped nor inside
// a code span. Outer pipes are optional.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var cells []string
	start := 0
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			if _, end, ok := matchCodeSpan(s, j); ok {
				j = end - 1
			}
		case '|':
			cells = append(cells, strings.TrimSpace(s[start:j]))
			start = j + 1
		}
	}
	return append(cells, strings.TrimSpace(s[start:]))
}

func parseColumnAlign(sep string) []model.Align {
	cells := splitRow(sep)
	aligns := make([]model.Align, len(cells))
	for k, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[k] = model.AlignCenter
		case right:
			aligns[k] = model.AlignRight
		case left:
			aligns[k] = model.AlignLeft
		}
	}
	return aligns
}

func makeCells(texts []string) []model.Cell {
	cells := make([]model.Cell, len(texts))
	for k, text := range texts {
		cells[k] = model.Cell{Text: text, Inlines: ParseInline(text)}
	}
	return cells
}

func allEmpty(texts []string) bool {
	for _, t := range texts {
		if t != "" {
			return false
		}
	}
	return true
}

// parseImageLine recognizes a line holding only image syntax, optionally
// followed by an alignment suffix.
func parseImageLine(trimmed string, line int) (*model.Image, bool) {
	if !strings.HasPrefix(trimmed, "![") {
		return nil, false
	}
	text, align := splitAlign(trimmed)
	m := imageLine.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	src := strings.TrimSuffix(strings.TrimPrefix(m[2], "<"), ">")
	caption := m[3]
	if caption == "" {
		caption = m[1]
	}
	return &model.Image{
		Base:    model.Base{Raw: trimmed, Align: align, Line: line},
		Src:     src,
		Alt:     m[1],
		Caption: caption,
	}, true
}

// parseList consumes consecutive list items. Items at the outer level must
// share the first item's kind; nested items may be of either kind. Depth is
// derived from an indentation stack, so two- and four-space indents both
// nest one level per step.
func (p *blockParser) parseList(i int) int {
	first := listLine.FindStringSubmatch(p.line(i))
	ordered := isOrderedMarker(first[2])
	list := &model.List{
		Base:    model.Base{Line: i + 1},
		Ordered: ordered,
		Start:   1,
	}
	if ordered {
		list.Start = markerNumber(first[2])
	}
	indents := []int{len(first[1])}

	j := i
	for j < len(p.lines) {
		line := p.line(j)
		if strings.TrimSpace(line) == "" {
			next := p.nextNonBlank(j)
			if next < 0 || !p.continuesList(p.line(next), indents[0], ordered) {
				break
			}
			j = next
			continue
		}
		if m := listLine.FindStringSubmatch(line); m != nil && !ruleLine.MatchString(line) {
			indent := len(m[1])
			depth := pushIndent(&indents, indent)
			itemOrdered := isOrderedMarker(m[2])
			if depth == 0 && itemOrdered != ordered {
				break
			}
			content := strings.TrimRight(m[3], " \t")
			list.Items = append(list.Items, model.ListItem{
				Content: content,
				Depth:   depth,
				Ordered: itemOrdered,
			})
			j++
			continue
		}
		if indentOf(line) >= 2 && len(list.Items) > 0 && !p.startsBlock(j) {
			last := &list.Items[len(list.Items)-1]
			last.Content = strings.TrimRight(last.Content+"\n"+strings.TrimSpace(line), " \t")
			j++
			continue
		}
		break
	}

	contents := make([]string, len(list.Items))
	for k := range list.Items {
		list.Items[k].Inlines = ParseInline(list.Items[k].Content)
		contents[k] = list.Items[k].Content
	}
	list.Raw = strings.Join(contents, "\n")
	p.add(list)
	return j
}

// continuesList reports whether a line found after blank lines still
// belongs to the current list.
func (p *blockParser) continuesList(line string, baseIndent int, ordered bool) bool {
	if m := listLine.FindStringSubmatch(line); m != nil && !ruleLine.MatchString(line) {
		if len(m[1]) > baseIndent {
			return true
		}
		return isOrderedMarker(m[2]) == ordered
	}
	return false
}

// startsBlock reports whether line i opens a block other than a list item
// or paragraph.
func (p *blockParser) startsBlock(i int) bool {
	line := p.line(i)
	trimmed := strings.TrimSpace(line)
	if fenceLine.MatchString(line) || p.isPageBreak(trimmed) || headingLine.MatchString(line) ||
		ruleLine.MatchString(line) || quoteLine.MatchString(line) || p.isTableStart(i) {
		return true
	}
	_, ok := parseImageLine(trimmed, i+1)
	return ok
}

func (p *blockParser) nextNonBlank(i int) int {
	for j := i; j < len(p.lines); j++ {
		if strings.TrimSpace(p.lines[j]) != "" {
			return j
		}
	}
	return -1
}

// pushIndent updates the indentation stack for an item at indent and
// returns its depth.
func pushIndent(stack *[]int, indent int) int {
	s := *stack
	for len(s) > 1 && indent < s[len(s)-1] {
		s = s[:len(s)-1]
	}
	if indent > s[len(s)-1] {
		s = append(s, indent)
	}
	*stack = s
	return len(s) - 1
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func isOrderedMarker(marker string) bool {
	return marker[0] >= '0' && marker[0] <= '9'
}

func markerNumber(marker string) int {
	n, err := strconv.Atoi(strings.TrimRight(marker, ".)"))
	if err != nil {
		return 1
	}
	return n
}

// splitAlign strips a trailing {.left}, {.center} or {.right} attribute.
func splitAlign(text string) (string, model.Align) {
	m := alignSuffix.FindStringSubmatchIndex(text)
	if m == nil {
		return text, model.AlignNone
	}
	return text[:m[0]], model.Align(text[m[2]:m[3]])
}
