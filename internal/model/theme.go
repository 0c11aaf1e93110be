package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidTheme is returned by Theme.Validate.
var ErrInvalidTheme = errors.New("invalid theme")

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.75
)

// DefaultPageBreakMarker is the page-break line recognized in every theme.
const DefaultPageBreakMarker = "---PAGE_BREAK---"

// pageDimensions maps page sizes to portrait width and height in inches.
var pageDimensions = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// PageDimensions returns width and height in inches for a named page size
// and orientation. Unknown sizes report ok=false.
func PageDimensions(size, orientation string) (width, height float64, ok bool) {
	dims, ok := pageDimensions[strings.ToLower(size)]
	if !ok {
		return 0, 0, false
	}
	width, height = dims[0], dims[1]
	if strings.EqualFold(orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height, true
}

// Margins in inches.
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Page describes the physical page. Width and Height are in inches and take
// precedence over Size when both are set.
type Page struct {
	Size        string  `yaml:"size"`
	Orientation string  `yaml:"orientation"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Margins     Margins `yaml:"margins"`
}

// Dimensions resolves the page width and height in inches.
func (p Page) Dimensions() (width, height float64) {
	if p.Width > 0 && p.Height > 0 {
		return p.Width, p.Height
	}
	if w, h, ok := PageDimensions(p.Size, p.Orientation); ok {
		return w, h
	}
	w, h, _ := PageDimensions(PageSizeLetter, p.Orientation)
	return w, h
}

// Font configures one typographic role. Size is in points. File optionally
// names a TrueType file used by renderers that embed fonts.
type Font struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
	File   string  `yaml:"file"`
}

// Fonts groups the typographic roles.
type Fonts struct {
	Body    Font `yaml:"body"`
	Heading Font `yaml:"heading"`
	Code    Font `yaml:"code"`
}

// Colors holds hex colors ("#rrggbb").
type Colors struct {
	Text           string `yaml:"text"`
	Heading        string `yaml:"heading"`
	Link           string `yaml:"link"`
	CodeBackground string `yaml:"codeBackground"`
	QuoteBorder    string `yaml:"quoteBorder"`
	Rule           string `yaml:"rule"`
}

// Footer configures the running page footer.
type Footer struct {
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Text           string `yaml:"text"`
	// Date is a literal date, "auto" for today, or "auto:<format>".
	Date     string `yaml:"date"`
	Position string `yaml:"position"`
}

// Enabled reports whether the footer has anything to show.
func (f Footer) Enabled() bool {
	return f.ShowPageNumber || f.Text != "" || f.Date != ""
}

// Theme is the immutable styling input of one generation pass.
type Theme struct {
	Name    string  `yaml:"name"`
	Page    Page    `yaml:"page"`
	Fonts   Fonts   `yaml:"fonts"`
	Colors  Colors  `yaml:"colors"`
	Leading float64 `yaml:"leading"`
	// Kerning is extra letter spacing in points.
	Kerning         float64 `yaml:"kerning"`
	LinkUnderline   bool    `yaml:"linkUnderline"`
	PageBreakMarker string  `yaml:"pageBreakMarker"`
	CodeStyle       string  `yaml:"codeStyle"`
	Footer          Footer  `yaml:"footer"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Name: "default",
		Page: Page{
			Size:        PageSizeLetter,
			Orientation: OrientationPortrait,
			Margins:     Margins{Top: DefaultMargin, Right: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin},
		},
		Fonts: Fonts{
			Body:    Font{Family: "Helvetica", Size: 11},
			Heading: Font{Family: "Helvetica", Size: 22},
			Code:    Font{Family: "Courier", Size: 9.5},
		},
		Colors: Colors{
			Text:           "#222222",
			Heading:        "#111111",
			Link:           "#0b5fff",
			CodeBackground: "#f5f5f5",
			QuoteBorder:    "#cccccc",
			Rule:           "#dddddd",
		},
		Leading:         1.4,
		LinkUnderline:   true,
		PageBreakMarker: DefaultPageBreakMarker,
		CodeStyle:       "github",
	}
}

// WithDefaults fills zero-valued fields from DefaultTheme.
func (t Theme) WithDefaults() Theme {
	d := DefaultTheme()
	if t.Name == "" {
		t.Name = d.Name
	}
	if t.Page.Size == "" && (t.Page.Width <= 0 || t.Page.Height <= 0) {
		t.Page.Size = d.Page.Size
	}
	if t.Page.Orientation == "" {
		t.Page.Orientation = d.Page.Orientation
	}
	if t.Page.Margins == (Margins{}) {
		t.Page.Margins = d.Page.Margins
	}
	fillFont(&t.Fonts.Body, d.Fonts.Body)
	fillFont(&t.Fonts.Heading, d.Fonts.Heading)
	fillFont(&t.Fonts.Code, d.Fonts.Code)
	fillString(&t.Colors.Text, d.Colors.Text)
	fillString(&t.Colors.Heading, d.Colors.Heading)
	fillString(&t.Colors.Link, d.Colors.Link)
	fillString(&t.Colors.CodeBackground, d.Colors.CodeBackground)
	fillString(&t.Colors.QuoteBorder, d.Colors.QuoteBorder)
	fillString(&t.Colors.Rule, d.Colors.Rule)
	if t.Leading == 0 {
		t.Leading = d.Leading
	}
	fillString(&t.PageBreakMarker, d.PageBreakMarker)
	fillString(&t.CodeStyle, d.CodeStyle)
	return t
}

func fillFont(f *Font, d Font) {
	fillString(&f.Family, d.Family)
	if f.Size == 0 {
		f.Size = d.Size
	}
}

func fillString(s *string, d string) {
	if *s == "" {
		*s = d
	}
}

// headingScale holds heading sizes relative to Fonts.Heading.Size, h1 through h6.
var headingScale = [6]float64{1, 0.8, 0.68, 0.58, 0.5, 0.45}

// HeadingSize returns the font size in points of a heading level. Levels
// outside 1-6 are clamped and no heading is smaller than body text.
func (t Theme) HeadingSize(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(headingScale) {
		level = len(headingScale)
	}
	size := t.Fonts.Heading.Size * headingScale[level-1]
	if size < t.Fonts.Body.Size {
		size = t.Fonts.Body.Size
	}
	return size
}

// Validate checks the theme for values no renderer can honor.
// Degenerate metrics that only affect the page-break estimate are not
// rejected here; the estimator treats them as "no heuristic breaks".
func (t Theme) Validate() error {
	p := t.Page
	if p.Size != "" {
		if _, ok := pageDimensions[strings.ToLower(p.Size)]; !ok {
			return fmt.Errorf("%w: page size %q", ErrInvalidTheme, p.Size)
		}
	}
	switch strings.ToLower(p.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: orientation %q", ErrInvalidTheme, p.Orientation)
	}
	margins := []struct {
		name  string
		value float64
	}{
		{"top", p.Margins.Top}, {"right", p.Margins.Right},
		{"bottom", p.Margins.Bottom}, {"left", p.Margins.Left},
	}
	for _, m := range margins {
		if m.value != 0 && (m.value < MinMargin || m.value > MaxMargin) {
			return fmt.Errorf("%w: %s margin %.2f (must be between %.2f and %.2f)", ErrInvalidTheme, m.name, m.value, MinMargin, MaxMargin)
		}
	}
	fonts := []struct {
		name string
		font Font
	}{
		{"body", t.Fonts.Body}, {"heading", t.Fonts.Heading}, {"code", t.Fonts.Code},
	}
	for _, f := range fonts {
		if f.font.Size < 0 || math.IsNaN(f.font.Size) || f.font.Size > 200 {
			return fmt.Errorf("%w: %s font size %.2f", ErrInvalidTheme, f.name, f.font.Size)
		}
	}
	colors := []struct {
		name  string
		value string
	}{
		{"text", t.Colors.Text}, {"heading", t.Colors.Heading}, {"link", t.Colors.Link},
		{"codeBackground", t.Colors.CodeBackground}, {"quoteBorder", t.Colors.QuoteBorder}, {"rule", t.Colors.Rule},
	}
	for _, c := range colors {
		if c.value != "" && !IsHexColor(c.value) {
			return fmt.Errorf("%w: %s color %q", ErrInvalidTheme, c.name, c.value)
		}
	}
	switch strings.ToLower(t.Footer.Position) {
	case "", "left", "center", "right":
	default:
		return fmt.Errorf("%w: footer position %q", ErrInvalidTheme, t.Footer.Position)
	}
	return nil
}

// IsHexColor reports whether s is "#rgb" or "#rrggbb".
func IsHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// RGB parses a hex color. Invalid colors yield black.
func RGB(s string) (r, g, b int) {
	if !IsHexColor(s) {
		return 0, 0, 0
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	var v [3]int
	for i := 0; i < 3; i++ {
		v[i] = hexVal(hex[2*i])<<4 | hexVal(hex[2*i+1])
	}
	return v[0], v[1], v[2]
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}
