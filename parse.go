package md2doc

import (
	"context"

	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// ParseOption configures Parse.
type ParseOption func(*pipeline.Options)

// WithParseTheme sets the theme whose page break marker and page metrics
// drive parsing and page break estimation.
func WithParseTheme(theme Theme) ParseOption {
	return func(o *pipeline.Options) {
		o.Theme = theme.WithDefaults()
	}
}

// WithTOCLevels builds a table of contents from headings within
// [minLevel, maxLevel].
func WithTOCLevels(minLevel, maxLevel int) ParseOption {
	return func(o *pipeline.Options) {
		o.TOC = pipeline.TOCOptions{Enabled: true, MinLevel: minLevel, MaxLevel: maxLevel}
	}
}

// WithDiagramLabels adds fence labels recognized as diagrams.
func WithDiagramLabels(labels ...string) ParseOption {
	return func(o *pipeline.Options) {
		parse := pipeline.DefaultParseOptions()
		if o.Parse != nil {
			parse = *o.Parse
		}
		parse = parse.WithDiagramLabels(labels...)
		o.Parse = &parse
	}
}

// WithRasters attaches raster references to diagrams by id.
func WithRasters(rasters map[string]string) ParseOption {
	return func(o *pipeline.Options) {
		o.Diagrams = rasters
	}
}

// Parse runs one full pass over markdown and returns the document model:
// blocks, heading anchors, the optional table of contents and estimated page
// breaks. Parsing never fails; unsupported syntax degrades to text.
func Parse(markdown string, opts ...ParseOption) *Document {
	o := pipeline.Options{Theme: model.DefaultTheme()}
	for _, opt := range opts {
		opt(&o)
	}
	// Process only fails on context cancellation.
	doc, _ := pipeline.Process(context.Background(), markdown, o)
	return doc
}
