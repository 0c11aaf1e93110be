package main

import (
	"fmt"
	"io"
	"strings"
)

const mainUsage = `Usage: md2doc <command> [flags] [args]

Commands:
  convert    Convert markdown files to HTML and PDF
  toc        Print the numbered outline of a markdown file
  pages      Print estimated page starts of a markdown file
  themes     List built-in themes
  theme      Print a theme as YAML
  version    Show version information
  help       Show help for a command

A markdown file or directory as first argument runs convert.
Run 'md2doc help <command>' for details on a specific command.
`

const convertUsage = `Usage: md2doc convert <file.md|dir>... [flags]

Convert markdown files. Directories are walked for *.md files.
Outputs: <name>.html, <name>.pdf, <name>.print.pdf

Input/Output:
  -f, --format <s>          html, pdf, print (repeatable, default: pdf)
  -o, --output <dir>        Output directory (default: next to source)
  -c, --config <name>       Config file name or path
  -w, --workers <n>         Parallel workers (0 = auto)
  -t, --timeout <d>         Browser print timeout, e.g. 30s (env MD2DOC_TIMEOUT)

Theme:
      --theme <name>        default, compact, technical, or one from --asset-path
      --asset-path <dir>    Directory holding themes/ and styles/
  -p, --page-size <s>       letter, a4, legal
      --orientation <s>     portrait, landscape
      --margin <f>          Margin in inches (0.25-3.0)

Footer:
      --footer-position <s> left, center, right
      --footer-text <s>     Footer text
      --footer-date <s>     "auto", "auto:PATTERN", "auto:PRESET" or a literal
                            Tokens: YYYY YY MMMM MMM MM M DD D dddd ddd
                            Presets: iso european us long short weekday
      --footer-page-number  Show page numbers
      --no-footer           Disable the footer

Table of Contents:
      --toc                 Add a table of contents
      --toc-title <s>       Heading of the contents section
      --toc-min <n>         Shallowest heading level (1-6)
      --toc-max <n>         Deepest heading level (1-6)
      --no-toc              Disable the table of contents

Diagrams:
      --diagram-dir <dir>   Directory holding <diagram-id>.png rasters
      --diagram-label <s>   Extra fence label treated as a diagram

Output Control:
  -q, --quiet               Only show errors
  -v, --verbose             Show per-file timing
`

// commandUsage holds the help of every command but convert.
var commandUsage = map[string][2]string{
	"toc":     {"toc <file.md> [--toc-min n] [--toc-max n] [--config name]", "Print the numbered outline with each heading's anchor."},
	"pages":   {"pages <file.md> [--theme name] [--page-size s] [--config name]", "Print the estimated source line where each page starts."},
	"themes":  {"themes", "List built-in themes."},
	"theme":   {"theme [name] [--asset-path dir]", "Print a theme as YAML, with defaults filled in."},
	"version": {"version", "Show version information."},
	"help":    {"help [command]", "Show help for a command."},
}

func printUsage(w io.Writer) {
	_, _ = io.WriteString(w, mainUsage)
}

func printConvertUsage(w io.Writer) {
	_, _ = io.WriteString(w, convertUsage)
}

// printCommandUsage prints the help of command. Unknown commands print
// nothing.
func printCommandUsage(w io.Writer, command string) {
	if command == "convert" {
		printConvertUsage(w)
		return
	}
	if u, ok := commandUsage[command]; ok {
		fmt.Fprintf(w, "Usage: md2doc %s\n\n%s\n", u[0], u[1])
	}
}

// runHelp implements "md2doc help [command]".
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", strings.TrimSpace(args[0]))
		printUsage(env.Stderr)
		return ExitUsage
	}
	printCommandUsage(env.Stdout, args[0])
	return ExitSuccess
}
