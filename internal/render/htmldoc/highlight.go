package htmldoc

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// codeTabWidth is the number of columns a tab expands to in code blocks.
const codeTabWidth = 4

// highlighter renders code blocks with inline styles, so the output has no
// dependency on an external stylesheet.
type highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newHighlighter(styleName string) *highlighter {
	return &highlighter{
		formatter: chromahtml.New(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(codeTabWidth),
		),
		style: styles.Get(styleName),
	}
}

// highlight returns the highlighted HTML for code in language, or ok=false
// when the language is unknown or tokenizing fails. Callers fall back to an
// escaped plain block.
func (h *highlighter) highlight(code, language string) (string, bool) {
	if language == "" {
		return "", false
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}
