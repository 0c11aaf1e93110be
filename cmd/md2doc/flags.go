package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// themeFlags select a theme and override some of its fields.
type themeFlags struct {
	name        string
	assetPath   string
	pageSize    string
	orientation string
	margin      float64
}

// footerFlags holds footer-related flags.
type footerFlags struct {
	position   string
	text       string
	date       string
	pageNumber bool
	disabled   bool
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	enabled  bool
	disabled bool
	title    string
	minLevel int
	maxLevel int
}

// diagramFlags holds diagram flags.
type diagramFlags struct {
	rasterDir string
	labels    []string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	theme    themeFlags
	footer   footerFlags
	toc      tocFlags
	diagrams diagramFlags
	formats  []string
	output   string
	workers  int
	timeout  string
}

// inspectFlags holds flags of the toc and pages commands.
type inspectFlags struct {
	config string
	theme  themeFlags
	toc    tocFlags
	labels []string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-file timing")
}

// addThemeFlags adds theme flags to a FlagSet.
func addThemeFlags(fs *flag.FlagSet, f *themeFlags) {
	fs.StringVar(&f.name, "theme", "", "theme name: default, compact, technical, or one from --asset-path")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory holding themes/ and styles/")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addFooterFlags adds footer flags to a FlagSet.
func addFooterFlags(fs *flag.FlagSet, f *footerFlags) {
	fs.StringVar(&f.position, "footer-position", "", "footer position: left, center, right")
	fs.StringVar(&f.text, "footer-text", "", "custom footer text")
	fs.StringVar(&f.date, "footer-date", "", "footer date: \"auto\", \"auto:PATTERN\", \"auto:PRESET\" or a literal")
	fs.BoolVar(&f.pageNumber, "footer-page-number", false, "show page numbers in footer")
	fs.BoolVar(&f.disabled, "no-footer", false, "disable footer")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "toc", false, "add a table of contents")
	fs.BoolVar(&f.disabled, "no-toc", false, "disable table of contents")
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.minLevel, "toc-min", 0, "shallowest heading level in the TOC (1-6, default: 1)")
	fs.IntVar(&f.maxLevel, "toc-max", 0, "deepest heading level in the TOC (1-6, default: 3)")
}

// addDiagramFlags adds diagram flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.rasterDir, "diagram-dir", "", "directory holding <diagram-id>.png rasters")
	fs.StringArrayVar(&f.labels, "diagram-label", nil, "extra fence label treated as a diagram (repeatable)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{}

	// I/O flags
	fs.StringSliceVarP(&f.formats, "format", "f", nil, "output format: html, pdf, print (repeatable)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser print timeout (e.g., 30s, 2m)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addThemeFlags(fs, &f.theme)
	addFooterFlags(fs, &f.footer)
	addTOCFlags(fs, &f.toc)
	addDiagramFlags(fs, &f.diagrams)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}

	return f, fs.Args(), nil
}

// parseInspectFlags parses flags of the toc and pages commands.
func parseInspectFlags(name string, args []string, stderr io.Writer) (*inspectFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &inspectFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	addThemeFlags(fs, &f.theme)
	fs.IntVar(&f.toc.minLevel, "toc-min", 0, "shallowest heading level (1-6, default: 1)")
	fs.IntVar(&f.toc.maxLevel, "toc-max", 0, "deepest heading level (1-6, default: 3)")
	fs.StringArrayVar(&f.labels, "diagram-label", nil, "extra fence label treated as a diagram (repeatable)")

	fs.Usage = func() { printCommandUsage(stderr, name) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}

	return f, fs.Args(), nil
}
