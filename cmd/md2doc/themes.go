package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// runThemes lists the built-in themes.
func runThemes(args []string, env *Environment) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: themes takes no arguments", ErrUsage)
	}
	for _, name := range assets.ThemeNames() {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

// runTheme prints a theme as YAML with defaults filled in.
func runTheme(args []string, env *Environment) error {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var assetPath string
	fs.StringVar(&assetPath, "asset-path", "", "directory holding themes/ and styles/")
	fs.Usage = func() { printCommandUsage(env.Stderr, "theme") }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	name := assets.DefaultThemeName
	switch fs.NArg() {
	case 0:
	case 1:
		name = fs.Arg(0)
	default:
		return fmt.Errorf("%w: expected one theme name, got %d", ErrUsage, fs.NArg())
	}

	cfg := config.DefaultConfig()
	cfg.Theme.Name = name
	cfg.Assets.BasePath = assetPath
	theme, err := resolveTheme(cfg)
	if err != nil {
		return err
	}

	if err := yamlutil.Encode(env.Stdout, theme.WithDefaults()); err != nil {
		return fmt.Errorf("%w: encoding theme: %v", md2doc.ErrInvalidTheme, err)
	}
	return nil
}
