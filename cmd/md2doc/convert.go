package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrRasterDir          = errors.New("diagram raster directory not found")
	ErrConversionFailed   = errors.New("conversion failed")
)

// envTimeout overrides the browser print timeout when --timeout is unset.
const envTimeout = "MD2DOC_TIMEOUT"

// Output permissions.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// usageError marks flag parsing errors. The help request passes through.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// convertPlan is everything a batch needs, resolved once.
type convertPlan struct {
	files   []FileToConvert
	formats []md2doc.Format
	toc     *md2doc.TOC
	rasters map[string]string
	labels  []string
	options []md2doc.Option
	workers int
}

// runConvertCmd parses flags, plans the batch and converts over a pool.
func runConvertCmd(args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	plan, err := planConvert(flags, positional, env)
	if err != nil {
		return err
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", plan.workers)
	}
	pool := md2doc.NewConverterPool(plan.workers, plan.options...)
	defer pool.Close()

	ctx, stop := notifyContext(context.Background())
	defer stop()

	return runConvert(ctx, &poolAdapter{pool: pool}, plan, flags.common, env)
}

// runConvert converts the planned files and reports the results.
func runConvert(ctx context.Context, pool Pool, plan *convertPlan, common commonFlags, env *Environment) error {
	results := convertBatch(ctx, pool, plan)

	failed, firstErr := printResults(results, common.quiet, common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s): %w", ErrConversionFailed, failed, len(results), firstErr)
	}
	return nil
}

// planConvert merges config and flags, then resolves inputs, theme, rasters
// and converter options.
func planConvert(flags *convertFlags, positional []string, env *Environment) (*convertPlan, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return nil, err
	}
	mergeFlags(flags, cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	formats, err := parseFormats(cfg.Output.ResolvedFormats())
	if err != nil {
		return nil, err
	}

	if len(positional) == 0 {
		return nil, ErrNoInput
	}
	files, err := discoverFiles(positional, cfg.Output.DefaultDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no markdown files in %s", ErrNoInput, strings.Join(positional, ", "))
	}

	theme, err := resolveTheme(cfg)
	if err != nil {
		return nil, err
	}
	// Resolve "auto" date once for entire batch
	if theme.Footer.Date, err = dateutil.ResolveDate(theme.Footer.Date, env.Now()); err != nil {
		return nil, fmt.Errorf("%w: footer date: %v", config.ErrInvalidValue, err)
	}

	rasters, err := buildRasterMap(cfg.Diagrams.RasterDir)
	if err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(flags.timeout, env.Getenv(envTimeout))
	if err != nil {
		return nil, err
	}

	options := []md2doc.Option{md2doc.WithTheme(theme)}
	if cfg.Assets.BasePath != "" {
		options = append(options, md2doc.WithAssetPath(cfg.Assets.BasePath))
	}
	if timeout > 0 {
		options = append(options, md2doc.WithTimeout(timeout))
	}

	var toc *md2doc.TOC
	if cfg.TOC.Enabled {
		minLevel, maxLevel := cfg.TOC.Levels()
		toc = &md2doc.TOC{Title: cfg.TOC.ResolvedTitle(), MinLevel: minLevel, MaxLevel: maxLevel}
	}

	workers := md2doc.ResolvePoolSize(flags.workers)
	if workers > len(files) {
		workers = len(files)
	}

	return &convertPlan{
		files:   files,
		formats: formats,
		toc:     toc,
		rasters: rasters,
		labels:  cfg.Diagrams.Labels,
		options: options,
		workers: workers,
	}, nil
}

// loadConfig loads the named config, or the default one when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// validateConfig validates cfg after flags are merged.
func validateConfig(cfg *config.Config) error {
	err := cfg.Validate()
	if err != nil && strings.Contains(err.Error(), "toc.") {
		return fmt.Errorf("%w%s", err, hints.ForTOCRange(config.MinTOCLevel, config.MaxTOCLevel))
	}
	return err
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	mergeThemeFlags(flags.theme, cfg)

	// Footer flags replace the config footer
	ft := flags.footer
	if ft.position != "" || ft.text != "" || ft.date != "" || ft.pageNumber {
		f := &cfg.Theme.Footer
		f.Enabled = true
		if ft.position != "" {
			f.Position = ft.position
		}
		if ft.text != "" {
			f.Text = ft.text
		}
		if ft.date != "" {
			f.Date = ft.date
		}
		if ft.pageNumber {
			f.ShowPageNumber = true
		}
	}
	if ft.disabled {
		// An enabled empty footer replaces the theme's.
		cfg.Theme.Footer = config.FooterConfig{Enabled: true}
	}

	// TOC flags
	mergeTOCFlags(flags.toc, cfg)

	// Output flags
	if len(flags.formats) > 0 {
		cfg.Output.Formats = flags.formats
	}
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}

	// Diagram flags
	if flags.diagrams.rasterDir != "" {
		cfg.Diagrams.RasterDir = flags.diagrams.rasterDir
	}
	cfg.Diagrams.Labels = append(cfg.Diagrams.Labels, flags.diagrams.labels...)
}

// mergeThemeFlags merges theme selection and page flags into config.
func mergeThemeFlags(f themeFlags, cfg *config.Config) {
	if f.name != "" {
		cfg.Theme.Name = f.name
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.pageSize != "" {
		cfg.Theme.Page.Size = f.pageSize
	}
	if f.orientation != "" {
		cfg.Theme.Page.Orientation = f.orientation
	}
	if f.margin != 0 {
		cfg.Theme.Page.Margin = f.margin
	}
}

// mergeTOCFlags merges table of contents flags into config.
func mergeTOCFlags(f tocFlags, cfg *config.Config) {
	if f.enabled {
		cfg.TOC.Enabled = true
	}
	if f.title != "" {
		cfg.TOC.Title = f.title
	}
	if f.minLevel != 0 {
		cfg.TOC.MinLevel = f.minLevel
	}
	if f.maxLevel != 0 {
		cfg.TOC.MaxLevel = f.maxLevel
	}
	if f.disabled {
		cfg.TOC.Enabled = false
	}
}

// parseFormats converts format names.
func parseFormats(names []string) ([]md2doc.Format, error) {
	formats := make([]md2doc.Format, 0, len(names))
	for _, name := range names {
		f, err := md2doc.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// resolveTheme loads the configured theme and applies config overrides.
func resolveTheme(cfg *config.Config) (md2doc.Theme, error) {
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return md2doc.Theme{}, fmt.Errorf("%w: %v", md2doc.ErrInvalidAssetPath, err)
	}

	name := cfg.Theme.Name
	if name == "" {
		name = assets.DefaultThemeName
	}
	theme, err := resolver.LoadTheme(name)
	if err != nil {
		if errors.Is(err, assets.ErrThemeNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return md2doc.Theme{}, fmt.Errorf("%w: %q%s", md2doc.ErrThemeNotFound, name, hints.ForThemeNotFound(resolver.ThemeNames()))
		}
		return md2doc.Theme{}, fmt.Errorf("%w: %v", md2doc.ErrInvalidTheme, err)
	}

	theme = cfg.ApplyTheme(theme).WithDefaults()
	if err := theme.Validate(); err != nil {
		return md2doc.Theme{}, fmt.Errorf("%w: %v", md2doc.ErrInvalidTheme, err)
	}
	return theme, nil
}

// resolveTimeout parses the print timeout. The flag wins over the
// environment; zero means the library default.
func resolveTimeout(flagValue, envValue string) (time.Duration, error) {
	value := flagValue
	if value == "" {
		value = envValue
	}
	if value == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s (must be positive)", ErrInvalidTimeout, value)
	}
	return d, nil
}

// rasterExtensions lists raster file types, most preferred first.
var rasterExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// buildRasterMap maps diagram ids to raster files found in dir: a file
// named <diagram-id>.png holds the raster of that diagram.
func buildRasterMap(dir string) (map[string]string, error) {
	if dir == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s%s", ErrRasterDir, dir, hints.ForDiagramRaster())
		}
		return nil, fmt.Errorf("reading diagram directory: %w", err)
	}

	rasters := make(map[string]string)
	rank := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		r := rasterRank(ext)
		if r < 0 {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if prev, ok := rank[id]; ok && prev <= r {
			continue
		}
		rank[id] = r
		rasters[id] = filepath.Join(abs, e.Name())
	}
	return rasters, nil
}

func rasterRank(ext string) int {
	for i, e := range rasterExtensions {
		if ext == e {
			return i
		}
	}
	return -1
}

// validateWorkers checks the --workers range. Zero means auto.
func validateWorkers(n int) error {
	if n < 0 || n > md2doc.MaxPoolSize {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, md2doc.MaxPoolSize)
	}
	return nil
}

// FileToConvert pairs a markdown file with its output directory.
type FileToConvert struct {
	InputPath string
	OutputDir string // Empty = next to the input
}

// discoverFiles expands inputs into markdown files. Directories are walked
// recursively; their subdirectory layout is kept under outDir.
func discoverFiles(inputs []string, outDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		}

		if !info.IsDir() {
			if !fileutil.IsMarkdown(input) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, input)
			}
			files = append(files, FileToConvert{InputPath: input, OutputDir: outDir})
			continue
		}

		found, err := walkMarkdown(input, outDir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// walkMarkdown collects markdown files under root in lexical order.
func walkMarkdown(root, outDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !fileutil.IsMarkdown(path) {
			return nil
		}

		dir := outDir
		if outDir != "" {
			rel, err := filepath.Rel(root, filepath.Dir(path))
			if err != nil {
				return err
			}
			dir = filepath.Join(outDir, rel)
		}
		files = append(files, FileToConvert{InputPath: path, OutputDir: dir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %w", ErrReadMarkdown, root, err)
	}
	return files, nil
}

// CLIConverter is the converter surface the CLI needs.
type CLIConverter interface {
	Convert(ctx context.Context, input md2doc.Input) (*md2doc.Result, error)
}

// Pool hands out converters to batch workers.
type Pool interface {
	Acquire(ctx context.Context) (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// poolAdapter adapts md2doc.ConverterPool to Pool.
type poolAdapter struct {
	pool *md2doc.ConverterPool
}

func (a *poolAdapter) Acquire(ctx context.Context) (CLIConverter, error) {
	conv, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*md2doc.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// ConversionResult is the outcome of one file.
type ConversionResult struct {
	InputPath   string
	OutputPaths []string
	Err         error
	Duration    time.Duration
}

// convertBatch converts files concurrently, one worker per pool slot.
// Results keep the order of plan.files.
func convertBatch(ctx context.Context, pool Pool, plan *convertPlan) []ConversionResult {
	results := make([]ConversionResult, len(plan.files))
	if len(plan.files) == 0 {
		return results
	}

	workers := pool.Size()
	if workers > len(plan.files) {
		workers = len(plan.files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = convertWithPool(ctx, pool, plan, plan.files[i])
			}
		}()
	}

	for i := range plan.files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// convertWithPool acquires a converter for one file.
func convertWithPool(ctx context.Context, pool Pool, plan *convertPlan, f FileToConvert) ConversionResult {
	if err := ctx.Err(); err != nil {
		return ConversionResult{InputPath: f.InputPath, Err: err}
	}
	conv, err := pool.Acquire(ctx)
	if err != nil {
		return ConversionResult{InputPath: f.InputPath, Err: fmt.Errorf("acquiring converter: %w", err)}
	}
	defer pool.Release(conv)

	return convertFile(ctx, conv, plan, f)
}

// formatSuffixes maps formats to output file suffixes.
var formatSuffixes = map[md2doc.Format]string{
	md2doc.FormatHTML:  ".html",
	md2doc.FormatPDF:   ".pdf",
	md2doc.FormatPrint: ".print.pdf",
}

// convertFile reads one markdown file, converts it and writes every
// requested format.
func convertFile(ctx context.Context, conv CLIConverter, plan *convertPlan, f FileToConvert) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- user-provided path
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		return result
	}

	res, err := conv.Convert(ctx, md2doc.Input{
		Markdown:      string(content),
		Formats:       plan.formats,
		TOC:           plan.toc,
		Diagrams:      plan.rasters,
		DiagramLabels: plan.labels,
		BaseDir:       filepath.Dir(f.InputPath),
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if f.OutputDir != "" {
		if err := os.MkdirAll(f.OutputDir, dirPermissions); err != nil {
			result.Err = fmt.Errorf("%w: creating %s: %w%s", ErrWriteOutput, f.OutputDir, err, hints.ForOutputDirectory())
			return result
		}
	}

	for _, format := range plan.formats {
		out := fileutil.OutputPath(f.InputPath, f.OutputDir, formatSuffixes[format])
		if err := os.WriteFile(out, res.Bytes(format), filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
			return result
		}
		result.OutputPaths = append(result.OutputPaths, out)
	}

	result.Duration = time.Since(start)
	return result
}

// printResults reports each file and a summary, and returns the failure
// count with the first error.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	var failed int
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, resultHint(r.Err, env.Getenv))
			continue
		}
		if quiet {
			continue
		}
		for _, out := range r.OutputPaths {
			if verbose {
				fmt.Fprintf(env.Stdout, "Created %s (%v)\n", out, r.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", out)
			}
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed, firstErr
}

// resultHint returns a hint for browser failures.
func resultHint(err error, getenv func(string) string) string {
	switch {
	case errors.Is(err, md2doc.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv)
	case errors.Is(err, md2doc.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}
