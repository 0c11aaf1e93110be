package pdfdoc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/render"
)

// fixedNow is the clock used for "auto" footer dates.
func fixedNow() time.Time {
	return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
}

func renderMarkdown(t *testing.T, src string, opts pipeline.Options, ropts Options) string {
	t.Helper()
	if opts.Theme.Name == "" {
		opts.Theme = model.DefaultTheme()
	}
	doc, err := pipeline.Process(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	ropts.Uncompressed = true
	if ropts.Now == nil {
		ropts.Now = fixedNow
	}
	out, err := New(ropts).Render(context.Background(), doc, opts.Theme)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(out)
}

// shown is how a single line of core font text appears in a content stream.
func shown(s string) string {
	return "(" + s + ")Tj"
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

func TestRender_Contents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		theme   func(*model.Theme)
		wants   []string
		unwants []string
	}{
		{
			name:  "single letter page",
			src:   "Hello world\n",
			wants: []string{"%PDF-1.", "/Count 1\n/MediaBox [0 0 612.00 792.00]", shown("Hello world"), "/BaseFont /Helvetica"},
		},
		{
			name:  "page breaks start pages",
			src:   "one\n\n---PAGE_BREAK---\n\ntwo\n\n<!-- pagebreak -->\n\nthree\n",
			wants: []string{"/Count 3\n", shown("one"), shown("two"), shown("three")},
		},
		{
			name: "a4 landscape",
			src:  "text\n",
			theme: func(th *model.Theme) {
				th.Page.Size = model.PageSizeA4
				th.Page.Orientation = model.OrientationLandscape
			},
			wants: []string{"/MediaBox [0 0 841.68 595.44]"},
		},
		{
			name:  "headings become bookmarks",
			src:   "# Intro\n\n## Details\n\ntext\n",
			wants: []string{"<</Title (Intro)", "<</Title (Details)", "/Outlines "},
		},
		{
			name:  "internal and external links",
			src:   "# Intro\n\nSee [intro](#intro) and [site](https://example.com).\n",
			wants: []string{"/Subtype /Link", "/URI (https://example.com)", "/Dest ["},
		},
		{
			name:    "unresolved internal link is plain text",
			src:     "# Intro\n\nSee [missing](#nowhere).\n",
			unwants: []string{"/Subtype /Link"},
		},
		{
			name:    "dangerous link is plain text",
			src:     "[x](javascript:alert(1))\n",
			unwants: []string{"/Subtype /Link", "/URI"},
		},
		{
			name:  "code uses courier",
			src:   "```go\nfmt.Println(1)\n```\n",
			wants: []string{"/BaseFont /Courier", shown(`fmt.Println\(1\)`)},
		},
		{
			name: "serif theme uses times",
			src:  "text\n",
			theme: func(th *model.Theme) {
				th.Fonts.Body.Family = "Georgia"
			},
			wants: []string{"/BaseFont /Times-Roman"},
		},
		{
			name:  "emoji clusters are substituted",
			src:   "Hi 😀👍🏽\n",
			wants: []string{shown("Hi ??")},
		},
		{
			name:  "latin text uses the code page",
			src:   "café\n",
			wants: []string{shown("caf\xe9")},
		},
		{
			name:  "list markers",
			src:   "1. first\n2. second\n\n- item\n",
			wants: []string{shown("1."), shown("2."), shown("\x95"), shown("first")},
		},
		{
			name:  "ordered list start",
			src:   "3. three\n4. four\n",
			wants: []string{shown("3."), shown("4.")},
		},
		{
			name:  "table cells",
			src:   "| A | B |\n|---|--:|\n| 1 |\n",
			wants: []string{shown("A"), shown("B"), shown("1")},
		},
		{
			name:  "missing image falls back to alt",
			src:   "![diagram](does-not-exist.png)\n",
			wants: []string{shown("[diagram]")},
		},
		{
			name:    "remote image is not fetched",
			src:     "![logo](https://example.com/logo.png)\n",
			wants:   []string{shown("[logo]")},
			unwants: []string{"/Subtype /Image"},
		},
		{
			name:  "diagram without raster shows source",
			src:   "```mermaid Flow\ngraph TD\n```\n",
			wants: []string{shown("graph TD"), shown("Flow")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			theme := model.DefaultTheme()
			if tt.theme != nil {
				tt.theme(&theme)
			}
			got := renderMarkdown(t, tt.src, pipeline.Options{Theme: theme}, Options{})
			for _, want := range tt.wants {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q", want)
				}
			}
			for _, unwant := range tt.unwants {
				if strings.Contains(got, unwant) {
					t.Errorf("output contains %q", unwant)
				}
			}
		})
	}
}

func TestRender_TOCPage(t *testing.T) {
	t.Parallel()

	src := "# Intro\n\n## Setup\n\ntext\n"
	got := renderMarkdown(t, src, pipeline.Options{
		TOC: pipeline.TOCOptions{Enabled: true, MinLevel: 1, MaxLevel: 3},
	}, Options{TOCTitle: "Contents"})

	wants := []string{"/Count 2\n", shown("Contents"), shown("1. Intro"), shown("1.1. Setup"), "/Subtype /Link"}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRender_Images(t *testing.T) {
	t.Parallel()

	t.Run("data URI", func(t *testing.T) {
		t.Parallel()

		got := renderMarkdown(t, "![dot]("+pngDataURI(t)+` "A dot")`+"\n", pipeline.Options{}, Options{})
		if !strings.Contains(got, "/Subtype /Image") {
			t.Error("image not embedded")
		}
		if !strings.Contains(got, shown("A dot")) {
			t.Error("caption missing")
		}
	})

	t.Run("relative file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(pngDataURI(t), "data:image/png;base64,"))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "dot.png"), data, 0o600); err != nil {
			t.Fatal(err)
		}

		got := renderMarkdown(t, "![dot](dot.png)\n", pipeline.Options{}, Options{BaseDir: dir})
		if !strings.Contains(got, "/Subtype /Image") {
			t.Error("image not embedded")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0o600); err != nil {
			t.Fatal(err)
		}

		got := renderMarkdown(t, "![bad](bad.png)\n", pipeline.Options{}, Options{BaseDir: dir})
		if !strings.Contains(got, shown("[bad]")) {
			t.Error("corrupt image did not fall back to alt text")
		}
	})

	t.Run("diagram raster", func(t *testing.T) {
		t.Parallel()

		src := "```mermaid\ngraph TD\n```\n"
		id := pipeline.DiagramID("mermaid", "graph TD")
		got := renderMarkdown(t, src, pipeline.Options{Diagrams: map[string]string{id: pngDataURI(t)}}, Options{})
		if !strings.Contains(got, "/Subtype /Image") {
			t.Error("raster not embedded")
		}
		if strings.Contains(got, shown("graph TD")) {
			t.Error("source drawn despite raster")
		}
	})
}

func TestRender_Footer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		footer model.Footer
		want   string
	}{
		{
			name:   "page number",
			footer: model.Footer{ShowPageNumber: true},
			want:   shown("1/1"),
		},
		{
			name:   "all parts",
			footer: model.Footer{ShowPageNumber: true, Date: "auto", Text: "Draft"},
			want:   shown("1/1 - 2024-03-15 - Draft"),
		},
		{
			name:   "text only",
			footer: model.Footer{Text: "100% draft", Position: "left"},
			want:   shown("100% draft"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			theme := model.DefaultTheme()
			theme.Footer = tt.footer
			got := renderMarkdown(t, "text\n", pipeline.Options{Theme: theme}, Options{})
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q", tt.want)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	doc := &model.Document{Blocks: []model.Block{&model.Paragraph{Inlines: []model.Inline{model.Text("x")}}}}

	t.Run("nil document", func(t *testing.T) {
		t.Parallel()

		_, err := New(Options{}).Render(context.Background(), nil, model.DefaultTheme())
		if !errors.Is(err, render.ErrNilDocument) {
			t.Errorf("error = %v, want ErrNilDocument", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(Options{}).Render(ctx, doc, model.DefaultTheme())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("missing font file", func(t *testing.T) {
		t.Parallel()

		theme := model.DefaultTheme()
		theme.Fonts.Body.File = "missing.ttf"
		_, err := New(Options{BaseDir: t.TempDir()}).Render(context.Background(), doc, theme)
		if !errors.Is(err, ErrFontFile) {
			t.Errorf("error = %v, want ErrFontFile", err)
		}
	})

	t.Run("invalid footer date", func(t *testing.T) {
		t.Parallel()

		theme := model.DefaultTheme()
		theme.Footer.Date = "auto:[unclosed"
		_, err := New(Options{}).Render(context.Background(), doc, theme)
		if err == nil {
			t.Error("expected error for invalid footer date")
		}
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestCoreFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family string
		want   string
	}{
		{"Helvetica", coreSans},
		{"Inter", coreSans},
		{"DejaVu Sans", coreSans},
		{"Noto Sans Serif", coreSans},
		{"Times New Roman", coreSerif},
		{"Georgia", coreSerif},
		{"PT Serif", coreSerif},
		{"Courier New", coreMono},
		{"JetBrains Mono", coreMono},
		{"", coreSans},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			t.Parallel()

			if got := coreFamily(tt.family); got != tt.want {
				t.Errorf("coreFamily(%q) = %q, want %q", tt.family, got, tt.want)
			}
		})
	}
}

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()

	payload := base64.StdEncoding.EncodeToString([]byte("abc"))

	tests := []struct {
		name     string
		uri      string
		wantData string
		wantType string
		wantErr  bool
	}{
		{name: "png", uri: "data:image/png;base64," + payload, wantData: "abc", wantType: "PNG"},
		{name: "jpeg", uri: "data:image/jpeg;base64," + payload, wantData: "abc", wantType: "JPG"},
		{name: "uppercase mime", uri: "data:IMAGE/GIF;BASE64," + payload, wantData: "abc", wantType: "GIF"},
		{name: "not base64", uri: "data:image/png," + payload, wantErr: true},
		{name: "svg", uri: "data:image/svg+xml;base64," + payload, wantErr: true},
		{name: "not an image", uri: "data:text/plain;base64," + payload, wantErr: true},
		{name: "no comma", uri: "data:image/png;base64", wantErr: true},
		{name: "bad payload", uri: "data:image/png;base64,@@@", wantErr: true},
		{name: "no scheme", uri: "image/png;base64," + payload, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, typ, err := decodeDataURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.wantData || typ != tt.wantType {
				t.Errorf("decodeDataURI() = %q, %q; want %q, %q", data, typ, tt.wantData, tt.wantType)
			}
		})
	}
}

func TestOutline_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []int
		want   []int
	}{
		{name: "nested", levels: []int{1, 2, 3, 2, 1}, want: []int{0, 1, 2, 1, 0}},
		{name: "skipped levels", levels: []int{1, 3, 4}, want: []int{0, 1, 2}},
		{name: "shallowest is not first", levels: []int{2, 3, 1}, want: []int{0, 1, 0}},
		{name: "starts at h2", levels: []int{2, 2, 3}, want: []int{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var headings []*model.Heading
			for _, l := range tt.levels {
				headings = append(headings, &model.Heading{Level: l})
			}
			o := newOutline(headings)
			var got []int
			for _, h := range headings {
				got = append(got, o.level(h.Level))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("levels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
