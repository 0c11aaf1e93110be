package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2doc/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme.Name != "" {
		t.Errorf("Theme.Name = %q, want empty", cfg.Theme.Name)
	}
	if cfg.TOC.Enabled {
		t.Error("TOC.Enabled = true, want false")
	}
	if diff := cmp.Diff([]string{FormatPDF}, cfg.Output.Formats); diff != "" {
		t.Errorf("Output.Formats mismatch (-want +got):\n%s", diff)
	}
	if cfg.Assets.BasePath != "" {
		t.Errorf("Assets.BasePath = %q, want empty", cfg.Assets.BasePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit is invalid", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("field", tt.value, tt.maxLength)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	long := func(n int) string { return strings.Repeat("x", n) }

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "zero config is valid",
			cfg:  Config{},
		},
		{
			name:    "theme name too long",
			cfg:     Config{Theme: ThemeConfig{Name: long(MaxNameLength + 1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "toc title too long",
			cfg:     Config{TOC: TOCConfig{Title: long(MaxTitleLength + 1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "raster dir too long",
			cfg:     Config{Diagrams: DiagramsConfig{RasterDir: long(MaxPathLength + 1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "footer position",
			cfg:     Config{Theme: ThemeConfig{Footer: FooterConfig{Position: "top"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "footer position is case insensitive",
			cfg:  Config{Theme: ThemeConfig{Footer: FooterConfig{Position: "Right"}}},
		},
		{
			name:    "footer date syntax",
			cfg:     Config{Theme: ThemeConfig{Footer: FooterConfig{Date: "auto:[oops"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "footer date preset",
			cfg:  Config{Theme: ThemeConfig{Footer: FooterConfig{Date: "auto:long"}}},
		},
		{
			name:    "margin below minimum",
			cfg:     Config{Theme: ThemeConfig{Page: PageConfig{Margin: 0.1}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "margin in range",
			cfg:  Config{Theme: ThemeConfig{Page: PageConfig{Margin: 1}}},
		},
		{
			name: "known formats",
			cfg:  Config{Output: OutputConfig{Formats: []string{"html", "PDF", "print"}}},
		},
		{
			name:    "unknown format",
			cfg:     Config{Output: OutputConfig{Formats: []string{"pdf", "docx"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "diagram labels",
			cfg:  Config{Diagrams: DiagramsConfig{Labels: []string{"plantuml", "d2"}}},
		},
		{
			name:    "blank diagram label",
			cfg:     Config{Diagrams: DiagramsConfig{Labels: []string{" "}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "diagram label with backtick",
			cfg:     Config{Diagrams: DiagramsConfig{Labels: []string{"a`b"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "diagram label too long",
			cfg:     Config{Diagrams: DiagramsConfig{Labels: []string{long(MaxDiagramLabelSize + 1)}}},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_TOC(t *testing.T) {
	tests := []struct {
		name    string
		toc     TOCConfig
		wantErr bool
	}{
		{"defaults", TOCConfig{Enabled: true}, false},
		{"explicit range", TOCConfig{MinLevel: 2, MaxLevel: 4}, false},
		{"single level", TOCConfig{MinLevel: 3, MaxLevel: 3}, false},
		{"min above default max", TOCConfig{MinLevel: 4}, true},
		{"max below min", TOCConfig{MinLevel: 3, MaxLevel: 2}, true},
		{"max out of range", TOCConfig{MaxLevel: 7}, true},
		{"negative min", TOCConfig{MinLevel: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{TOC: tt.toc}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidValue) {
				t.Errorf("error = %v, want ErrInvalidValue", err)
			}
		})
	}
}

func TestTOCConfig_Defaults(t *testing.T) {
	minLevel, maxLevel := TOCConfig{}.Levels()
	if minLevel != 1 || maxLevel != 3 {
		t.Errorf("Levels() = (%d, %d), want (1, 3)", minLevel, maxLevel)
	}
	if got := (TOCConfig{}).ResolvedTitle(); got != DefaultTOCTitle {
		t.Errorf("ResolvedTitle() = %q, want %q", got, DefaultTOCTitle)
	}
	if got := (TOCConfig{Title: "Index"}).ResolvedTitle(); got != "Index" {
		t.Errorf("ResolvedTitle() = %q, want %q", got, "Index")
	}
}

func TestOutputConfig_ResolvedFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		want    []string
	}{
		{"empty defaults to pdf", nil, []string{"pdf"}},
		{"lowercased", []string{"HTML"}, []string{"html"}},
		{"deduplicated in order", []string{"print", "html", "Print"}, []string{"print", "html"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputConfig{Formats: tt.formats}.ResolvedFormats()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolvedFormats() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_ApplyTheme(t *testing.T) {
	t.Run("zero config keeps theme", func(t *testing.T) {
		th := model.DefaultTheme()
		got := (&Config{}).ApplyTheme(th)
		if diff := cmp.Diff(th, got); diff != "" {
			t.Errorf("ApplyTheme() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		th := model.DefaultTheme()
		th.Page.Width, th.Page.Height = 5, 7
		cfg := &Config{Theme: ThemeConfig{
			Page:            PageConfig{Size: "A4", Orientation: "Landscape", Margin: 1},
			PageBreakMarker: "<<<break>>>",
			CodeStyle:       "monokai",
			Footer:          FooterConfig{Enabled: true, Position: "Right", Text: "Draft"},
		}}

		got := cfg.ApplyTheme(th)

		want := th
		want.Page = model.Page{
			Size:        "a4",
			Orientation: "landscape",
			Margins:     model.Margins{Top: 1, Right: 1, Bottom: 1, Left: 1},
		}
		want.PageBreakMarker = "<<<break>>>"
		want.CodeStyle = "monokai"
		want.Footer = model.Footer{Text: "Draft", Position: "right"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ApplyTheme() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("disabled footer keeps theme footer", func(t *testing.T) {
		th := model.DefaultTheme()
		th.Footer = model.Footer{ShowPageNumber: true}
		cfg := &Config{Theme: ThemeConfig{Footer: FooterConfig{Text: "ignored"}}}
		if got := cfg.ApplyTheme(th).Footer; got != th.Footer {
			t.Errorf("Footer = %+v, want %+v", got, th.Footer)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("LoadConfig(\"\") error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.yaml")
		content := `
theme:
  name: technical
  codeStyle: monokai
  page:
    size: a4
    margin: 1
  footer:
    enabled: true
    showPageNumber: true
    date: auto
toc:
  enabled: true
  title: Contents
  minLevel: 2
  maxLevel: 4
output:
  defaultDir: ./out
  formats: [html, pdf]
diagrams:
  labels: [plantuml]
  rasterDir: ./diagrams
assets:
  basePath: ./assets
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		want := &Config{
			Theme: ThemeConfig{
				Name:      "technical",
				CodeStyle: "monokai",
				Page:      PageConfig{Size: "a4", Margin: 1},
				Footer:    FooterConfig{Enabled: true, ShowPageNumber: true, Date: "auto"},
			},
			TOC:      TOCConfig{Enabled: true, Title: "Contents", MinLevel: 2, MaxLevel: 4},
			Output:   OutputConfig{DefaultDir: "./out", Formats: []string{"html", "pdf"}},
			Diagrams: DiagramsConfig{Labels: []string{"plantuml"}, RasterDir: "./diagrams"},
			Assets:   AssetsConfig{BasePath: "./assets"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("name not found", func(t *testing.T) {
		_, err := LoadConfig("no-such-config-name-md2doc")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("unknown: true\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("toc: [unclosed\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "range.yaml")
		if err := os.WriteFile(path, []byte("toc:\n  minLevel: 5\n  maxLevel: 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("name resolves in working directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "local.yml"), []byte("toc:\n  enabled: true\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)

		cfg, err := LoadConfig("local")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.TOC.Enabled {
			t.Error("TOC.Enabled = false, want true")
		}
	})
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("work")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least local paths", paths)
	}
	if paths[0] != "work.yaml" || paths[1] != "work.yml" {
		t.Errorf("local paths = %v, want [work.yaml work.yml]", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, configDirName) {
			t.Errorf("user path %q does not contain %q", p, configDirName)
		}
	}
}
