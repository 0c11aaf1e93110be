package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the subcommand names.
var commands = []string{"convert", "toc", "pages", "themes", "theme", "version", "help"}

func main() {
	configureMaxProcs(hasVerboseFlag(os.Args), os.Stderr)
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerboseFlag reports whether args ask for verbose output.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches args to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		if !looksLikeMarkdown(cmd) && !isDirectory(cmd) {
			fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		cmd, rest = "convert", args[1:]
	}

	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(rest, env)
	case "toc":
		err = runTOC(rest, env)
	case "pages":
		err = runPages(rest, env)
	case "themes":
		err = runThemes(rest, env)
	case "theme":
		err = runTheme(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "md2doc %s\n", Version)
	case "help":
		return runHelp(rest, env)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// isCommand reports whether s names a command. Matching is case-sensitive.
func isCommand(s string) bool {
	for _, c := range commands {
		if s == c {
			return true
		}
	}
	return false
}

// looksLikeMarkdown reports whether path has a markdown extension.
// Matching is case-sensitive, like the directory walk.
func looksLikeMarkdown(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}

// isDirectory reports whether path is an existing directory.
func isDirectory(path string) bool {
	if strings.HasPrefix(path, "-") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
