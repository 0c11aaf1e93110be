package md2doc

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/render/htmldoc"
	"github.com/alnah/go-md2doc/internal/render/pdfdoc"
)

// Converter orchestrates the markdown conversion pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
type Converter struct {
	cfg        converterConfig
	loader     assets.AssetLoader
	theme      model.Theme
	stylesheet string
	printer    htmlPrinter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithThemeName, WithAssetPath).
// Returns error if the asset path, theme or base stylesheet cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:    converterConfig{timeout: defaultTimeout},
		loader: assets.NewEmbeddedLoader(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Handle WithAssetPath: custom assets first, embedded as fallback
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.loader = resolver
	}

	theme, err := c.resolveTheme()
	if err != nil {
		return nil, err
	}
	c.theme = theme

	stylesheet, err := c.loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading base stylesheet: %w", err)
	}
	c.stylesheet = stylesheet

	c.printer = newChromePrinter(c.cfg.timeout)
	return c, nil
}

// resolveTheme picks WithTheme, then WithThemeName, then the default theme.
func (c *Converter) resolveTheme() (model.Theme, error) {
	if c.cfg.theme != nil {
		return validTheme(*c.cfg.theme)
	}

	name := c.cfg.themeName
	if name == "" {
		name = assets.DefaultThemeName
	}
	theme, err := c.loader.LoadTheme(name)
	if err != nil {
		if errors.Is(err, assets.ErrThemeNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return model.Theme{}, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
		}
		return model.Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return validTheme(theme)
}

// validTheme fills defaults and validates the result.
func validTheme(theme Theme) (Theme, error) {
	theme = theme.WithDefaults()
	if err := theme.Validate(); err != nil {
		return model.Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return theme, nil
}

// Theme returns the converter's resolved theme.
func (c *Converter) Theme() Theme {
	return c.theme
}

// Convert runs the pipeline once and renders every requested format from the
// same Document. The context is used for cancellation and timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	formats, theme, err := c.validateInput(input)
	if err != nil {
		return nil, err
	}

	doc, err := pipeline.Process(ctx, input.Markdown, c.pipelineOptions(input, theme))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Document:   doc,
		PageBreaks: doc.PageBreaks,
	}

	var tocTitle string
	if input.TOC != nil {
		tocTitle = input.TOC.Title
	}

	for _, f := range formats {
		out, err := c.render(ctx, f, doc, theme, input.BaseDir, tocTitle, res)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): %w", ErrRender, f, err)
		}
		switch f {
		case FormatHTML:
			res.HTML = out
		case FormatPDF:
			res.PDF = out
		case FormatPrint:
			res.Print = out
		}
	}
	return res, nil
}

// render produces one format. The print format reuses HTML already rendered
// for res when HTML was requested.
func (c *Converter) render(ctx context.Context, f Format, doc *Document, theme Theme, baseDir, tocTitle string, res *Result) ([]byte, error) {
	switch f {
	case FormatHTML:
		return c.renderer(FormatHTML, baseDir, tocTitle).Render(ctx, doc, theme)
	case FormatPDF:
		return c.renderer(FormatPDF, baseDir, tocTitle).Render(ctx, doc, theme)
	case FormatPrint:
		document := res.HTML
		if document == nil {
			var err error
			document, err = c.renderer(FormatHTML, baseDir, tocTitle).Render(ctx, doc, theme)
			if err != nil {
				return nil, err
			}
		}
		return c.printer.Print(ctx, string(document), baseDir, theme)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// renderer returns the WithRenderer override for f, or the built-in one.
func (c *Converter) renderer(f Format, baseDir, tocTitle string) Renderer {
	if r, ok := c.cfg.renderers[f]; ok && r != nil {
		return r
	}
	if f == FormatHTML {
		return htmldoc.New(htmldoc.Options{
			Stylesheet: c.stylesheet,
			TOCTitle:   tocTitle,
		})
	}
	return pdfdoc.New(pdfdoc.Options{
		BaseDir:  baseDir,
		TOCTitle: tocTitle,
	})
}

// pipelineOptions maps input to one generation pass.
func (c *Converter) pipelineOptions(input Input, theme Theme) pipeline.Options {
	opts := pipeline.Options{
		Theme:    theme,
		Diagrams: input.Diagrams,
	}
	if input.TOC != nil {
		minLevel, maxLevel := input.TOC.Levels()
		opts.TOC = pipeline.TOCOptions{Enabled: true, MinLevel: minLevel, MaxLevel: maxLevel}
	}
	if len(input.DiagramLabels) > 0 {
		parse := pipeline.DefaultParseOptions().WithDiagramLabels(input.DiagramLabels...)
		opts.Parse = &parse
	}
	return opts
}

// validateInput checks that required fields are present and valid, and
// returns the formats and theme of the conversion.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier by Config.Validate() at config load time.
func (c *Converter) validateInput(input Input) ([]Format, Theme, error) {
	if input.Markdown == "" {
		return nil, Theme{}, ErrEmptyMarkdown
	}
	formats, err := input.resolvedFormats()
	if err != nil {
		return nil, Theme{}, err
	}
	if err := input.TOC.Validate(); err != nil {
		return nil, Theme{}, err
	}
	theme := c.theme
	if input.Theme != nil {
		theme, err = validTheme(*input.Theme)
		if err != nil {
			return nil, Theme{}, err
		}
	}
	return formats, theme, nil
}

// Close releases resources (headless Chrome browser of the print format).
func (c *Converter) Close() error {
	if c.printer != nil {
		return c.printer.Close()
	}
	return nil
}
