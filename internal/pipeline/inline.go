package pipeline

import (
	"regexp"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// maxEmphasisDepth is how deep bold/italic/strike runs may nest. Depth 0 is
// the block level, so bold inside italic (and the reverse) is allowed, and
// a third level is kept as literal text.
const maxEmphasisDepth = 1

// brTag matches an explicit HTML line break marker.
var brTag = regexp.MustCompile(`(?i)^<br\s*/?>`)

// ParseInline parses one block's raw text into inline runs.
//
// Recognized, in priority order at each position: backslash escapes, code
// spans, images (reduced to their alt text), links, bold, italic,
// strikethrough, explicit line breaks. Unterminated delimiters stay literal
// and no character is dropped other than consumed markup. Soft line breaks
// become a single space.
func ParseInline(raw string) []model.Inline {
	return parseInlines(raw, 0)
}

type inlineParser struct {
	src   string
	depth int
	out   []model.Inline
	text  strings.Builder
}

func parseInlines(src string, depth int) []model.Inline {
	p := &inlineParser{src: src, depth: depth}
	p.run()
	return p.out
}

// flush emits pending literal text as one node. Literal text is only ever
// cut here, at a markup boundary, so grapheme clusters stay whole.
func (p *inlineParser) flush() {
	if p.text.Len() == 0 {
		return
	}
	p.out = append(p.out, model.Text(p.text.String()))
	p.text.Reset()
}

func (p *inlineParser) emit(in model.Inline) {
	p.flush()
	p.out = append(p.out, in)
}

func (p *inlineParser) run() {
	s := p.src
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '\\':
			if i+1 < len(s) && s[i+1] == '\n' {
				p.lineBreak()
				i = skipSpaces(s, i+2)
				continue
			}
			if i+1 < len(s) && isEscapable(s[i+1]) {
				p.text.WriteByte(s[i+1])
				i += 2
				continue
			}
		case '`':
			if end, ok := p.codeSpan(i); ok {
				i = end
				continue
			}
			run := countRun(s, i, '`')
			p.text.WriteString(s[i : i+run])
			i += run
			continue
		case '!':
			if i+1 < len(s) && s[i+1] == '[' {
				if alt, _, end, ok := parseLinkAt(s, i+1); ok {
					p.text.WriteString(alt)
					i = end
					continue
				}
			}
		case '[':
			if text, href, end, ok := parseLinkAt(s, i); ok {
				p.emit(model.Link(href, parseInlines(text, p.depth)...))
				i = end
				continue
			}
		case '*', '_':
			if end, ok := p.emphasis(i); ok {
				i = end
				continue
			}
			run := countRun(s, i, c)
			p.text.WriteString(s[i : i+run])
			i += run
			continue
		case '~':
			if end, ok := p.strike(i); ok {
				i = end
				continue
			}
			run := countRun(s, i, c)
			p.text.WriteString(s[i : i+run])
			i += run
			continue
		case '<':
			if loc := brTag.FindStringIndex(s[i:]); loc != nil {
				p.lineBreak()
				i += loc[1]
				if i < len(s) && s[i] == '\n' {
					i = skipSpaces(s, i+1)
				}
				continue
			}
		case '\n':
			if p.trimTrailingSpaces() >= 2 {
				p.lineBreak()
			} else {
				p.text.WriteByte(' ')
			}
			i = skipSpaces(s, i+1)
			continue
		}
		p.text.WriteByte(c)
		i++
	}
	p.flush()
}

func (p *inlineParser) lineBreak() {
	p.trimTrailingSpaces()
	p.emit(model.LineBreak())
}

// trimTrailingSpaces removes spaces at the end of the pending text and
// reports how many were removed.
func (p *inlineParser) trimTrailingSpaces() int {
	pending := p.text.String()
	trimmed := strings.TrimRight(pending, " ")
	n := len(pending) - len(trimmed)
	if n > 0 {
		p.text.Reset()
		p.text.WriteString(trimmed)
	}
	return n
}

// codeSpan parses a backtick code span starting at i. The closing run must
// have exactly as many backticks as the opening one.
func (p *inlineParser) codeSpan(i int) (int, bool) {
	content, end, ok := matchCodeSpan(p.src, i)
	if !ok {
		return 0, false
	}
	p.emit(model.Code(content))
	return end, true
}

func matchCodeSpan(s string, i int) (content string, end int, ok bool) {
	n := countRun(s, i, '`')
	for j := i + n; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		r := countRun(s, j, '`')
		if r == n {
			content = strings.ReplaceAll(s[i+n:j], "\n", " ")
			if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.TrimSpace(content) != "" {
				content = content[1 : len(content)-1]
			}
			return content, j + r, true
		}
		j += r
	}
	return "", 0, false
}

// emphasis parses a bold or italic run opened by the delimiter run at i.
func (p *inlineParser) emphasis(i int) (int, bool) {
	if p.depth > maxEmphasisDepth {
		return 0, false
	}
	s := p.src
	c := s[i]
	if c == '_' && i > 0 && isWordByte(s[i-1]) {
		return 0, false
	}
	run := countRun(s, i, c)
	sizes := []int{1}
	if run >= 2 {
		sizes = []int{2, 1}
	}
	for _, n := range sizes {
		open := i + n
		if open >= len(s) || isSpaceByte(s[open]) {
			continue
		}
		closer := findCloser(s, open, c, n)
		if closer < 0 {
			continue
		}
		kind := model.InlineItalic
		if n == 2 {
			kind = model.InlineBold
		}
		p.emit(model.Styled(kind, parseInlines(s[open:closer], p.depth+1)...))
		return closer + n, true
	}
	return 0, false
}

// strike parses a ~~strikethrough~~ run at i.
func (p *inlineParser) strike(i int) (int, bool) {
	s := p.src
	if p.depth > maxEmphasisDepth || countRun(s, i, '~') < 2 {
		return 0, false
	}
	open := i + 2
	if open >= len(s) || isSpaceByte(s[open]) {
		return 0, false
	}
	closer := findCloser(s, open, '~', 2)
	if closer < 0 {
		return 0, false
	}
	p.emit(model.Styled(model.InlineStrike, parseInlines(s[open:closer], p.depth+1)...))
	return closer + 2, true
}

// findCloser returns the index of a closing delimiter of n bytes of c at or
// after from, or -1. The closer must follow non-space content. When the
// closing run is longer than n, its last n bytes close. A run of exactly two
// never closes a single delimiter since it is itself a strong delimiter.
// Code spans, links and escapes are skipped, so a link binds tighter than
// emphasis around it.
func findCloser(s string, from int, c byte, n int) int {
	for j := from; j < len(s); {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '`':
			if _, end, ok := matchCodeSpan(s, j); ok {
				j = end
				continue
			}
			j += countRun(s, j, '`')
			continue
		case '[':
			if _, _, end, ok := parseLinkAt(s, j); ok {
				j = end
				continue
			}
		case c:
			r := countRun(s, j, c)
			if j > from && r >= n && !(n == 1 && r == 2) && !isSpaceByte(s[j-1]) &&
				(c != '_' || j+r >= len(s) || !isWordByte(s[j+r])) {
				return j + r - n
			}
			j += r
			continue
		}
		j++
	}
	return -1
}

// parseLinkAt parses "[text](href)" with s[i] == '['. Brackets and
// parentheses may nest. A quoted or parenthesized title after the href is
// dropped; any other text is part of the href, so "#My Heading" survives.
func parseLinkAt(s string, i int) (text, href string, end int, ok bool) {
	closeText := matchBracket(s, i, '[', ']')
	if closeText < 0 || closeText+1 >= len(s) || s[closeText+1] != '(' {
		return "", "", 0, false
	}
	closeHref := matchBracket(s, closeText+1, '(', ')')
	if closeHref < 0 {
		return "", "", 0, false
	}
	target := strings.TrimSpace(s[closeText+2 : closeHref])
	if strings.HasPrefix(target, "<") {
		if j := strings.IndexByte(target, '>'); j > 0 {
			target = target[1:j]
		}
	} else {
		target = stripLinkTitle(target)
	}
	if strings.ContainsRune(target, '\n') {
		return "", "", 0, false
	}
	return s[i+1 : closeText], target, closeHref + 1, true
}

// stripLinkTitle removes a trailing "title", 'title' or (title) separated
// from the href by whitespace.
func stripLinkTitle(target string) string {
	for _, q := range []struct{ open, close byte }{{'"', '"'}, {'\'', '\''}, {'(', ')'}} {
		if len(target) < 2 || target[len(target)-1] != q.close {
			continue
		}
		j := strings.LastIndexByte(target[:len(target)-1], q.open)
		if j > 0 && isSpaceByte(target[j-1]) {
			if href := strings.TrimSpace(target[:j]); href != "" {
				return href
			}
		}
	}
	return target
}

// matchBracket returns the index of the bracket closing the one at i.
func matchBracket(s string, i int, opening, closing byte) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			if _, end, ok := matchCodeSpan(s, j); ok {
				j = end - 1
			}
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func countRun(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// isWordByte reports ASCII alphanumerics and any byte of a multi-byte
// UTF-8 sequence, which is enough to keep underscores intraword.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

func isEscapable(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
