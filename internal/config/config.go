// Package config loads the YAML configuration of the md2doc command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// configDirName is the directory searched under os.UserConfigDir.
const configDirName = "go-md2doc"

// Field length limits.
const (
	MaxNameLength       = 64   // Theme, code style names
	MaxTitleLength      = 100  // TOC title
	MaxPathLength       = 4096 // Directories
	MaxDateLength       = 60   // "auto:MMMM D, YYYY" or a literal date
	MaxTextLength       = 500  // Footer free-form text
	MaxMarkerLength     = 100  // Page break marker line
	MaxPageSizeLength   = 10   // "letter", "a4", "legal"
	MaxOrientationLen   = 10   // "portrait", "landscape"
	MaxDiagramLabels    = 16
	MaxDiagramLabelSize = 32
)

// Output formats.
const (
	FormatHTML  = "html"
	FormatPDF   = "pdf"
	FormatPrint = "print"
)

// Heading level bounds for the table of contents.
const (
	MinTOCLevel     = 1
	MaxTOCLevel     = 6
	DefaultTOCMax   = 3
	DefaultTOCTitle = "Contents"
)

// Config holds all configuration for document generation.
type Config struct {
	Theme    ThemeConfig    `yaml:"theme"`
	TOC      TOCConfig      `yaml:"toc"`
	Output   OutputConfig   `yaml:"output"`
	Diagrams DiagramsConfig `yaml:"diagrams"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// ThemeConfig selects a theme and overrides some of its fields.
// Zero values keep the theme's own setting.
type ThemeConfig struct {
	Name            string       `yaml:"name"` // Embedded or on-disk theme (default: "default")
	Page            PageConfig   `yaml:"page"`
	Footer          FooterConfig `yaml:"footer"`
	PageBreakMarker string       `yaml:"pageBreakMarker"`
	CodeStyle       string       `yaml:"codeStyle"` // Chroma style name
}

// PageConfig overrides page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches, applied to all sides
}

// FooterConfig overrides the theme footer. Enabled replaces the theme
// footer entirely.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Position       string `yaml:"position"` // "left", "center", "right"
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Date           string `yaml:"date"` // literal, "auto" or "auto:FORMAT"
	Text           string `yaml:"text"`
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Title    string `yaml:"title"`    // Empty = DefaultTOCTitle
	MinLevel int    `yaml:"minLevel"` // 1-6, default 1
	MaxLevel int    `yaml:"maxLevel"` // 1-6, default 3
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string   `yaml:"defaultDir"` // Empty = same as source
	Formats    []string `yaml:"formats"`    // Empty = ["pdf"]
}

// DiagramsConfig defines diagram handling.
type DiagramsConfig struct {
	Labels    []string `yaml:"labels"`    // Extra fence labels treated as diagrams
	RasterDir string   `yaml:"rasterDir"` // Directory holding {diagramID}.png rasters
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"theme.name", c.Theme.Name, MaxNameLength},
		{"theme.codeStyle", c.Theme.CodeStyle, MaxNameLength},
		{"theme.pageBreakMarker", c.Theme.PageBreakMarker, MaxMarkerLength},
		{"theme.page.size", c.Theme.Page.Size, MaxPageSizeLength},
		{"theme.page.orientation", c.Theme.Page.Orientation, MaxOrientationLen},
		{"theme.footer.date", c.Theme.Footer.Date, MaxDateLength},
		{"theme.footer.text", c.Theme.Footer.Text, MaxTextLength},
		{"toc.title", c.TOC.Title, MaxTitleLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"diagrams.rasterDir", c.Diagrams.RasterDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Theme.Footer.Position != "" {
		switch strings.ToLower(c.Theme.Footer.Position) {
		case "left", "center", "right":
		default:
			return fmt.Errorf("%w: theme.footer.position %q (must be left, center, or right)", ErrInvalidValue, c.Theme.Footer.Position)
		}
	}
	if err := dateutil.Validate(c.Theme.Footer.Date); err != nil {
		return fmt.Errorf("%w: theme.footer.date: %v", ErrInvalidValue, err)
	}
	if m := c.Theme.Page.Margin; m != 0 && (m < model.MinMargin || m > model.MaxMargin) {
		return fmt.Errorf("%w: theme.page.margin %.2f (must be between %.2f and %.2f)", ErrInvalidValue, m, model.MinMargin, model.MaxMargin)
	}

	if err := c.TOC.validate(); err != nil {
		return err
	}

	for i, f := range c.Output.Formats {
		if !IsFormat(f) {
			return fmt.Errorf("%w: output.formats[%d] %q (must be html, pdf, or print)", ErrInvalidValue, i, f)
		}
	}

	if len(c.Diagrams.Labels) > MaxDiagramLabels {
		return fmt.Errorf("%w: diagrams.labels has %d entries (max %d)", ErrInvalidValue, len(c.Diagrams.Labels), MaxDiagramLabels)
	}
	for i, l := range c.Diagrams.Labels {
		if strings.TrimSpace(l) == "" || strings.ContainsAny(l, " \t`~") {
			return fmt.Errorf("%w: diagrams.labels[%d] %q", ErrInvalidValue, i, l)
		}
		if err := validateFieldLength(fmt.Sprintf("diagrams.labels[%d]", i), l, MaxDiagramLabelSize); err != nil {
			return err
		}
	}

	return nil
}

func (t TOCConfig) validate() error {
	for _, lv := range []struct {
		name  string
		value int
	}{{"toc.minLevel", t.MinLevel}, {"toc.maxLevel", t.MaxLevel}} {
		if lv.value != 0 && (lv.value < MinTOCLevel || lv.value > MaxTOCLevel) {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidValue, lv.name, MinTOCLevel, MaxTOCLevel, lv.value)
		}
	}
	if minLevel, maxLevel := t.Levels(); minLevel > maxLevel {
		return fmt.Errorf("%w: toc.minLevel %d is greater than toc.maxLevel %d", ErrInvalidValue, minLevel, maxLevel)
	}
	return nil
}

// Levels returns the heading range with defaults applied.
func (t TOCConfig) Levels() (minLevel, maxLevel int) {
	minLevel, maxLevel = t.MinLevel, t.MaxLevel
	if minLevel == 0 {
		minLevel = MinTOCLevel
	}
	if maxLevel == 0 {
		maxLevel = DefaultTOCMax
	}
	return minLevel, maxLevel
}

// ResolvedTitle returns the TOC title with the default applied.
func (t TOCConfig) ResolvedTitle() string {
	if t.Title == "" {
		return DefaultTOCTitle
	}
	return t.Title
}

// IsFormat reports whether f names an output format.
func IsFormat(f string) bool {
	switch strings.ToLower(f) {
	case FormatHTML, FormatPDF, FormatPrint:
		return true
	}
	return false
}

// ResolvedFormats returns the configured formats, lowercased and deduplicated,
// or ["pdf"] when none are set.
func (o OutputConfig) ResolvedFormats() []string {
	if len(o.Formats) == 0 {
		return []string{FormatPDF}
	}
	seen := make(map[string]bool, len(o.Formats))
	out := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ApplyTheme returns th with the config overrides applied.
func (c *Config) ApplyTheme(th model.Theme) model.Theme {
	p := c.Theme.Page
	if p.Size != "" {
		th.Page.Size = strings.ToLower(p.Size)
		th.Page.Width, th.Page.Height = 0, 0
	}
	if p.Orientation != "" {
		th.Page.Orientation = strings.ToLower(p.Orientation)
	}
	if p.Margin != 0 {
		th.Page.Margins = model.Margins{Top: p.Margin, Right: p.Margin, Bottom: p.Margin, Left: p.Margin}
	}
	if c.Theme.PageBreakMarker != "" {
		th.PageBreakMarker = c.Theme.PageBreakMarker
	}
	if c.Theme.CodeStyle != "" {
		th.CodeStyle = c.Theme.CodeStyle
	}
	if f := c.Theme.Footer; f.Enabled {
		th.Footer = model.Footer{
			ShowPageNumber: f.ShowPageNumber,
			Text:           f.Text,
			Date:           f.Date,
			Position:       strings.ToLower(f.Position),
		}
	}
	return th
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: default theme, no TOC,
// PDF output next to the source.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Formats: []string{FormatPDF}},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths returns the files tried for a config name, in order:
// ./name.yaml, ./name.yml, then the same names under the user config dir.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
