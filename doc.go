// Package md2doc converts Markdown documents into paginated, styled output
// in several formats from a single parse.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := md2doc.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2doc.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Formats:  []md2doc.Format{md2doc.FormatHTML, md2doc.FormatPDF},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// # Conversion Pipeline
//
// Every conversion runs one pass over the markdown:
//
//  1. Block parsing (headings, lists, tables, code, diagrams, page breaks)
//  2. Inline parsing of text runs (emphasis, code spans, links)
//  3. Anchor assignment for headings, unique within the document
//  4. Table of contents construction (optional, numbered)
//  5. Page break estimation from the theme's page metrics
//
// The resulting Document feeds every renderer without re-parsing:
//
//   - FormatHTML: a standalone HTML5 document with highlighted code
//   - FormatPDF: a fixed page layout PDF drawn directly (no browser)
//   - FormatPrint: the HTML document printed to PDF by headless Chrome
//
// Use Parse to run the pipeline alone and inspect the Document.
//
// # Themes
//
// A Theme sets page size, margins, fonts, colors, leading and the footer.
// Built-in themes are "default", "compact" and "technical"; WithAssetPath
// adds a directory of themes/<name>.yaml files that take precedence.
//
// # Parallel Conversion
//
// A Converter is safe for use by one goroutine at a time. ConverterPool
// hands out converters for batch work; each owns its own browser for the
// print format, started on first use.
package md2doc
