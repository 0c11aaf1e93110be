package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// outlineGap separates the heading column from the anchor column.
const outlineGap = 2

// runTOC prints the numbered outline of one markdown file.
func runTOC(args []string, env *Environment) error {
	flags, positional, err := parseInspectFlags("toc", args, env.Stderr)
	if err != nil {
		return err
	}
	markdown, cfg, err := loadInspectInput(flags, positional)
	if err != nil {
		return err
	}

	minLevel, maxLevel := cfg.TOC.Levels()
	doc := md2doc.Parse(markdown,
		md2doc.WithTOCLevels(minLevel, maxLevel),
		md2doc.WithDiagramLabels(cfg.Diagrams.Labels...),
	)
	writeOutline(env.Stdout, doc.TOC)
	return nil
}

// runPages prints the estimated source line of each page start.
func runPages(args []string, env *Environment) error {
	flags, positional, err := parseInspectFlags("pages", args, env.Stderr)
	if err != nil {
		return err
	}
	markdown, cfg, err := loadInspectInput(flags, positional)
	if err != nil {
		return err
	}
	theme, err := resolveTheme(cfg)
	if err != nil {
		return err
	}

	doc := md2doc.Parse(markdown,
		md2doc.WithParseTheme(theme),
		md2doc.WithDiagramLabels(cfg.Diagrams.Labels...),
	)

	w, h := theme.Page.Dimensions()
	fmt.Fprintf(env.Stdout, "theme %s: %.2fx%.2fin, %d lines per page\n", theme.Name, w, h, pipeline.LinesPerPage(theme))
	fmt.Fprintf(env.Stdout, "page 1: line 1\n")
	for i, line := range doc.PageBreaks {
		fmt.Fprintf(env.Stdout, "page %d: line %d\n", i+2, line)
	}
	return nil
}

// loadInspectInput reads the single markdown argument and merges config
// with the inspect flags.
func loadInspectInput(flags *inspectFlags, positional []string) (string, *config.Config, error) {
	if len(positional) == 0 {
		return "", nil, ErrNoInput
	}
	if len(positional) > 1 {
		return "", nil, fmt.Errorf("%w: expected one file, got %d", ErrUsage, len(positional))
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return "", nil, err
	}
	mergeThemeFlags(flags.theme, cfg)
	mergeTOCFlags(flags.toc, cfg)
	cfg.Diagrams.Labels = append(cfg.Diagrams.Labels, flags.labels...)
	if err := validateConfig(cfg); err != nil {
		return "", nil, err
	}

	content, err := os.ReadFile(positional[0]) // #nosec G304 -- user-provided path
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return string(content), cfg, nil
}

// writeOutline prints one entry per line: the indented number and text,
// then the anchor in an aligned column. Widths are display cells so wide
// characters keep the column straight.
func writeOutline(w io.Writer, entries []md2doc.TOCEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no headings")
		return
	}

	labels := make([]string, len(entries))
	width := 0
	for i, e := range entries {
		labels[i] = strings.Repeat("  ", max(e.Depth-1, 0)) + e.Number + " " + e.Text
		if lw := runewidth.StringWidth(labels[i]); lw > width {
			width = lw
		}
	}

	for i, e := range entries {
		fmt.Fprintf(w, "%s#%s\n", runewidth.FillRight(labels[i], width+outlineGap), e.AnchorID)
	}
}
