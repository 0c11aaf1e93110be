package htmldoc

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// buildThemeCSS generates the rules derived from the theme: page box,
// typography, colors and link decoration.
func buildThemeCSS(th model.Theme) string {
	var buf strings.Builder

	w, h := th.Page.Dimensions()
	m := th.Page.Margins
	fmt.Fprintf(&buf, `
/* Page */
@page {
  size: %sin %sin;
  margin: %sin %sin %sin %sin;
}
`, num(w), num(h), num(m.Top), num(m.Right), num(m.Bottom), num(m.Left))

	fmt.Fprintf(&buf, `
/* Body */
body {
  font-family: %s;
  font-size: %spt;
  line-height: %s;
  color: %s;
`, fontStack(th.Fonts.Body.Family, "sans-serif"), num(th.Fonts.Body.Size), num(th.Leading), th.Colors.Text)
	if th.Kerning != 0 {
		fmt.Fprintf(&buf, "  letter-spacing: %spt;\n", num(th.Kerning))
	}
	buf.WriteString("}\n")

	fmt.Fprintf(&buf, `
/* Headings */
h1, h2, h3, h4, h5, h6 {
  font-family: %s;
  color: %s;
}
`, fontStack(th.Fonts.Heading.Family, "sans-serif"), th.Colors.Heading)
	for level := 1; level <= 6; level++ {
		fmt.Fprintf(&buf, "h%d { font-size: %spt; }\n", level, num(th.HeadingSize(level)))
	}

	decoration := "none"
	if th.LinkUnderline {
		decoration = "underline"
	}
	fmt.Fprintf(&buf, `
/* Links */
a { color: %s; text-decoration: %s; }
`, th.Colors.Link, decoration)

	fmt.Fprintf(&buf, `
/* Code */
code, pre {
  font-family: %s;
  font-size: %spt;
}
code, pre { background-color: %s; }
`, fontStack(th.Fonts.Code.Family, "monospace"), num(th.Fonts.Code.Size), th.Colors.CodeBackground)

	fmt.Fprintf(&buf, `
/* Rules and quotes */
blockquote { border-left-color: %s; }
hr, th, td { border-color: %s; }
`, th.Colors.QuoteBorder, th.Colors.Rule)

	return buf.String()
}

// fontStack quotes family and appends a generic fallback chosen from the
// family name, or generic when the name gives no clue.
func fontStack(family, generic string) string {
	lower := strings.ToLower(family)
	switch {
	case strings.Contains(lower, "courier"), strings.Contains(lower, "mono"):
		generic = "monospace"
	case strings.Contains(lower, "times"), strings.Contains(lower, "georgia"),
		strings.Contains(lower, "serif") && !strings.Contains(lower, "sans"):
		generic = "serif"
	}
	if family == "" {
		return generic
	}
	return `"` + escapeCSSString(family) + `", ` + generic
}

// num formats a CSS number without trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// escapeCSSString escapes a string for use inside a double-quoted CSS string.
func escapeCSSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\A `)
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
