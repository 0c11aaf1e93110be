package pipeline

import (
	"context"

	"github.com/alnah/go-md2doc/internal/model"
)

// TOCOptions selects the headings of the table of contents.
type TOCOptions struct {
	Enabled  bool
	MinLevel int
	MaxLevel int
}

// Options configures one generation pass.
type Options struct {
	Theme model.Theme
	TOC   TOCOptions
	// Diagrams maps diagram ids to raster references (file paths or data URIs).
	Diagrams map[string]string
	// Parse overrides the default block options. The theme's page break
	// marker is always added.
	Parse *ParseOptions
}

// Process runs one full generation pass over source: parse, assign anchors,
// attach diagram rasters, build the TOC and estimate page breaks. Each call
// owns its anchor registry, so concurrent calls are independent.
//
// The only error is ctx's, checked between stages.
func Process(ctx context.Context, source string, opts Options) (*model.Document, error) {
	parseOpts := DefaultParseOptions()
	if opts.Parse != nil {
		parseOpts = *opts.Parse
	}
	parseOpts = parseOpts.WithPageBreakMarker(opts.Theme.PageBreakMarker)

	blocks := ParseMarkdownWithOptions(source, parseOpts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &model.Document{Blocks: blocks}
	doc.AnchorIDs = AssignAnchors(blocks, NewAnchorRegistry())
	AttachRasters(blocks, opts.Diagrams)
	if opts.TOC.Enabled {
		doc.TOC = BuildTOC(blocks, opts.TOC.MinLevel, opts.TOC.MaxLevel)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc.PageBreaks = CalculatePageBreaks(source, opts.Theme)
	return doc, nil
}

// AttachRasters sets Raster on each diagram whose id is in rasters and
// returns how many were attached. Diagrams without an entry are untouched.
func AttachRasters(blocks []model.Block, rasters map[string]string) int {
	if len(rasters) == 0 {
		return 0
	}
	n := 0
	for _, b := range blocks {
		d, ok := b.(*model.Diagram)
		if !ok {
			continue
		}
		if ref, found := rasters[d.ID]; found && ref != "" {
			d.Raster = ref
			n++
		}
	}
	return n
}
