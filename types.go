package md2doc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/model"
)

// Format names an output format.
type Format string

// Output formats.
const (
	// FormatHTML is a standalone HTML5 document.
	FormatHTML Format = "html"
	// FormatPDF is a fixed page layout PDF drawn without a browser.
	FormatPDF Format = "pdf"
	// FormatPrint is the HTML document printed to PDF by headless Chrome.
	FormatPrint Format = "print"
)

// Formats lists every supported output format.
var Formats = []Format{FormatHTML, FormatPDF, FormatPrint}

// ParseFormat converts a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be html, pdf, or print)", ErrUnknownFormat, s)
}

// Document model aliases. The model is shared by every renderer.
type (
	Document = model.Document
	Block    = model.Block
	Inline   = model.Inline
	TOCEntry = model.TOCEntry
	Theme    = model.Theme
	Page     = model.Page
	Margins  = model.Margins
	Fonts    = model.Fonts
	Font     = model.Font
	Colors   = model.Colors
	Footer   = model.Footer
)

// DefaultTheme returns the built-in default theme.
func DefaultTheme() Theme {
	return model.DefaultTheme()
}

// TOC level bounds and defaults.
const (
	MinTOCLevel        = 1
	MaxTOCLevel        = 6
	DefaultTOCMinLevel = 1
	DefaultTOCMaxLevel = 3
)

// TOC configures the table of contents.
type TOC struct {
	Title    string // Heading of the contents section (empty: none)
	MinLevel int    // Shallowest heading level (0 = DefaultTOCMinLevel)
	MaxLevel int    // Deepest heading level (0 = DefaultTOCMaxLevel)
}

// Levels returns the effective level range.
func (t *TOC) Levels() (minLevel, maxLevel int) {
	minLevel, maxLevel = t.MinLevel, t.MaxLevel
	if minLevel == 0 {
		minLevel = DefaultTOCMinLevel
	}
	if maxLevel == 0 {
		maxLevel = DefaultTOCMaxLevel
	}
	return minLevel, maxLevel
}

// Validate checks the level range.
// Returns nil if t is nil (nil means no TOC).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	if t.MinLevel < 0 || t.MinLevel > MaxTOCLevel {
		return fmt.Errorf("%w: minLevel %d (must be between %d and %d)", ErrInvalidTOCRange, t.MinLevel, MinTOCLevel, MaxTOCLevel)
	}
	if t.MaxLevel < 0 || t.MaxLevel > MaxTOCLevel {
		return fmt.Errorf("%w: maxLevel %d (must be between %d and %d)", ErrInvalidTOCRange, t.MaxLevel, MinTOCLevel, MaxTOCLevel)
	}
	if minLevel, maxLevel := t.Levels(); minLevel > maxLevel {
		return fmt.Errorf("%w: minLevel %d is greater than maxLevel %d", ErrInvalidTOCRange, minLevel, maxLevel)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	Markdown string   // Markdown content (required)
	Formats  []Format // Output formats (nil = PDF only)
	TOC      *TOC     // Table of contents (optional)
	// Diagrams maps diagram ids to raster references (file paths or data URIs).
	Diagrams map[string]string
	// DiagramLabels adds fence labels recognized as diagrams.
	DiagramLabels []string
	Theme         *Theme // Overrides the converter theme (optional)
	// BaseDir resolves relative image, raster and font paths.
	BaseDir string
}

// resolvedFormats returns the requested formats, deduplicated, defaulting
// to PDF.
func (in Input) resolvedFormats() ([]Format, error) {
	if len(in.Formats) == 0 {
		return []Format{FormatPDF}, nil
	}
	seen := make(map[Format]bool, len(in.Formats))
	out := make([]Format, 0, len(in.Formats))
	for _, raw := range in.Formats {
		f, err := ParseFormat(string(raw))
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Result holds the outputs of one conversion. Only the requested formats
// are set.
type Result struct {
	Document *Document
	HTML     []byte
	PDF      []byte
	Print    []byte
	// PageBreaks are the estimated 1-based line offsets of page starts.
	PageBreaks []int
}

// Bytes returns the output of format f, or nil.
func (r *Result) Bytes(f Format) []byte {
	switch f {
	case FormatHTML:
		return r.HTML
	case FormatPDF:
		return r.PDF
	case FormatPrint:
		return r.Print
	}
	return nil
}

// Renderer renders a processed document to one output format.
type Renderer interface {
	Render(ctx context.Context, doc *Document, theme Theme) ([]byte, error)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout   time.Duration
	theme     *Theme
	themeName string
	assetPath string
	renderers map[Format]Renderer
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the browser page load timeout of the print format.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2doc: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithTheme sets the theme used when Input.Theme is nil. Missing fields are
// filled from DefaultTheme.
func WithTheme(theme Theme) Option {
	return func(c *Converter) {
		c.cfg.theme = &theme
	}
}

// WithThemeName selects a built-in theme, or one from the asset path.
// WithTheme takes precedence.
func WithThemeName(name string) Option {
	return func(c *Converter) {
		c.cfg.themeName = name
	}
}

// WithAssetPath adds a directory holding themes/<name>.yaml and
// styles/<name>.css files. They take precedence over built-in assets.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithRenderer replaces the renderer of a format. FormatPrint renders
// through the browser and cannot be replaced; its HTML input comes from
// the FormatHTML renderer.
func WithRenderer(format Format, r Renderer) Option {
	return func(c *Converter) {
		if c.cfg.renderers == nil {
			c.cfg.renderers = make(map[Format]Renderer)
		}
		c.cfg.renderers[format] = r
	}
}
