package htmldoc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/render"
)

func renderMarkdown(t *testing.T, src string, opts pipeline.Options, ropts Options) string {
	t.Helper()
	if opts.Theme.Name == "" {
		opts.Theme = model.DefaultTheme()
	}
	doc, err := pipeline.Process(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	out, err := New(ropts).Render(context.Background(), doc, opts.Theme)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(out)
}

func TestRender_DocumentShell(t *testing.T) {
	t.Parallel()

	got := renderMarkdown(t, "## Intro\n\n# Guide & Notes\n\ntext\n", pipeline.Options{}, Options{Stylesheet: "main { color: red; }"})

	wants := []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		`<meta charset="utf-8">`,
		"<title>Guide &amp; Notes</title>",
		"main { color: red; }",
		"size: 8.5in 11in;",
		"margin: 0.75in 0.75in 0.75in 0.75in;",
		`<section class="page">`,
		"</main>\n</body>\n</html>\n",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, `<nav class="toc">`) {
		t.Error("TOC rendered without entries")
	}
}

func TestRender_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "heading ids",
			src:      "# Setup\n\n## Setup\n",
			contains: []string{`<h1 id="setup">Setup</h1>`, `<h2 id="setup-1">Setup</h2>`},
		},
		{
			name:     "heading alignment",
			src:      "## Title {.center}\n",
			contains: []string{`<h2 id="title" style="text-align:center">Title</h2>`},
		},
		{
			name:     "inline styles",
			src:      "**b** *i* ~~s~~ `c`\n",
			contains: []string{"<p><strong>b</strong> <em>i</em> <del>s</del> <code>c</code></p>"},
		},
		{
			name:     "text is escaped",
			src:      "a <b> & \"c\"\n",
			contains: []string{"<p>a &lt;b&gt; &amp; &quot;c&quot;</p>"},
			excludes: []string{"<b>"},
		},
		{
			name:     "resolved internal link",
			src:      "# My Heading\n\nsee [here](#my-heading)\n",
			contains: []string{`<a href="#my-heading">here</a>`},
		},
		{
			name:     "internal link by heading text",
			src:      "# My Heading\n\nsee [here](#My%20Heading)\n",
			contains: []string{`<a href="#my-heading">here</a>`},
		},
		{
			name:     "unresolved internal link is plain text",
			src:      "# A\n\nsee [nowhere](#missing)\n",
			contains: []string{"<p>see nowhere</p>"},
			excludes: []string{`href="#missing"`},
		},
		{
			name:     "external link",
			src:      "[docs](https://example.com/a?x=1&y=2)\n",
			contains: []string{`<a href="https://example.com/a?x=1&amp;y=2">docs</a>`},
		},
		{
			name:     "script link is plain text",
			src:      "[x](javascript:void)\n",
			contains: []string{"<p>x</p>"},
			excludes: []string{"javascript"},
		},
		{
			name:     "nested list",
			src:      "- a\n  - b\n- c\n",
			contains: []string{"<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>"},
		},
		{
			name:     "ordered list start",
			src:      "3. x\n4. y\n",
			contains: []string{`<ol start="3"><li>x</li><li>y</li></ol>`},
		},
		{
			name:     "blockquote",
			src:      "> quoted\n",
			contains: []string{"<blockquote><p>quoted</p></blockquote>"},
		},
		{
			name:     "horizontal rule",
			src:      "a\n\n---\n\nb\n",
			contains: []string{"<hr>"},
		},
		{
			name:     "image with caption",
			src:      "![A cat](cat.png \"Sleeping\")\n",
			contains: []string{`<figure><img src="cat.png" alt="A cat"><figcaption>Sleeping</figcaption></figure>`},
		},
		{
			name:     "unknown code language is escaped plain",
			src:      "```nosuchlang\n<script>\n```\n",
			contains: []string{`data-language="nosuchlang"`, "<pre><code>&lt;script&gt;</code></pre>"},
			excludes: []string{"<script>"},
		},
		{
			name:     "highlighted code",
			src:      "```go\nfunc main() { if a < b {} }\n```\n",
			contains: []string{`<div class="code-block" data-language="go">`, "<pre", "main", "&lt;"},
			excludes: []string{"<pre><code>func"},
		},
		{
			name:     "diagram without raster",
			src:      "```mermaid Flow\ngraph A-->B\n```\n",
			contains: []string{`class="diagram"`, `<pre class="diagram-source" data-language="mermaid"><code>graph A--&gt;B</code></pre>`, "<figcaption>Flow</figcaption>"},
			excludes: []string{"<img"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := renderMarkdown(t, tt.src, pipeline.Options{}, Options{})
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\n%s", want, body(got))
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(body(got), bad) {
					t.Errorf("output contains %q\n%s", bad, body(got))
				}
			}
		})
	}
}

// body returns the part of a rendered document after <body>.
func body(doc string) string {
	if i := strings.Index(doc, "<body>"); i >= 0 {
		return doc[i:]
	}
	return doc
}

func TestRender_TablePadsRows(t *testing.T) {
	t.Parallel()

	got := renderMarkdown(t, "| a | b | c |\n|:--|:-:|--:|\n| 1 |\n| 1 | 2 | 3 | 4 |\n", pipeline.Options{}, Options{})

	if n := strings.Count(got, "</th>"); n != 4 {
		t.Errorf("got %d header cells, want 4 (widest row)", n)
	}
	if n := strings.Count(got, "</td>"); n != 8 {
		t.Errorf("got %d body cells, want 8", n)
	}
	if !strings.Contains(got, `<th style="text-align:center">b</th>`) {
		t.Errorf("column alignment missing:\n%s", body(got))
	}
}

func TestRender_TableWithoutHeaders(t *testing.T) {
	t.Parallel()

	got := renderMarkdown(t, "|   |   |\n|---|---|\n| 1 | 2 |\n", pipeline.Options{}, Options{})

	if strings.Contains(got, "<thead>") || strings.Contains(got, "<th") {
		t.Errorf("empty header row rendered:\n%s", body(got))
	}
	if n := strings.Count(got, "</td>"); n != 2 {
		t.Errorf("got %d body cells, want 2", n)
	}
}

func TestRender_Pages(t *testing.T) {
	t.Parallel()

	got := renderMarkdown(t, "one\n\n<!-- pagebreak -->\n\ntwo\n\n---PAGE_BREAK---\n\nthree\n", pipeline.Options{}, Options{})

	if n := strings.Count(got, `<section class="page">`); n != 3 {
		t.Errorf("got %d pages, want 3", n)
	}
	if strings.Contains(got, "PAGE_BREAK") || strings.Contains(got, "pagebreak") {
		t.Error("page-break markers leaked into the output")
	}
}

func TestRender_TOC(t *testing.T) {
	t.Parallel()

	src := "# Guide\n\n## Install\n\n### Linux\n\n## Use\n"
	opts := pipeline.Options{TOC: pipeline.TOCOptions{Enabled: true, MinLevel: 1, MaxLevel: 2}}
	got := renderMarkdown(t, src, opts, Options{TOCTitle: "Contents"})

	wants := []string{
		`<nav class="toc"><h2 class="toc-title">Contents</h2><ol class="toc-list">`,
		`<li class="toc-item toc-depth-1"><a href="#guide"><span class="toc-number">1.</span> Guide</a></li>`,
		`<li class="toc-item toc-depth-2"><a href="#install"><span class="toc-number">1.1.</span> Install</a></li>`,
		`<li class="toc-item toc-depth-2"><a href="#use"><span class="toc-number">1.2.</span> Use</a></li>`,
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, `href="#linux"><span`) {
		t.Error("level 3 heading listed in a 1-2 TOC")
	}
	if strings.Index(got, `<nav class="toc">`) > strings.Index(got, "<main>") {
		t.Error("TOC must precede the content")
	}
}

func TestRender_DiagramRaster(t *testing.T) {
	t.Parallel()

	src := "```plantuml Sequence\nA -> B\n```\n"
	id := pipeline.DiagramID("plantuml", "A -> B")
	got := renderMarkdown(t, src, pipeline.Options{Diagrams: map[string]string{id: "rasters/seq.png"}}, Options{})

	want := `<figure class="diagram" id="` + id + `"><img src="rasters/seq.png" alt="Sequence"><figcaption>Sequence</figcaption></figure>`
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q\n%s", want, body(got))
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	r := New(Options{})

	if _, err := r.Render(context.Background(), nil, model.DefaultTheme()); !errors.Is(err, render.ErrNilDocument) {
		t.Errorf("Render(nil) error = %v, want ErrNilDocument", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, &model.Document{}, model.DefaultTheme()); !errors.Is(err, context.Canceled) {
		t.Errorf("Render(canceled) error = %v, want context.Canceled", err)
	}
}

func TestRender_StyleCannotEscape(t *testing.T) {
	t.Parallel()

	th := model.DefaultTheme()
	th.Fonts.Body.Family = `Evil"</style><script>`
	doc := &model.Document{}
	out, err := New(Options{}).Render(context.Background(), doc, th)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(string(out), "</style><script>") {
		t.Error("font family broke out of the style element")
	}
}

func TestBuildThemeCSS(t *testing.T) {
	t.Parallel()

	th := model.DefaultTheme()
	th.Page.Size = model.PageSizeA4
	th.Page.Orientation = model.OrientationLandscape
	th.Kerning = 0.5
	th.LinkUnderline = false
	css := buildThemeCSS(th)

	wants := []string{
		"size: 11.69in 8.27in;",
		`font-family: "Helvetica", sans-serif;`,
		"font-size: 11pt;",
		"line-height: 1.4;",
		"letter-spacing: 0.5pt;",
		"h1 { font-size: 22pt; }",
		"h6 { font-size: 11pt; }",
		"text-decoration: none;",
		`font-family: "Courier", monospace;`,
		"background-color: #f5f5f5;",
	}
	for _, want := range wants {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q\n%s", want, css)
		}
	}
}

func TestFontStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family  string
		generic string
		want    string
	}{
		{"Helvetica", "sans-serif", `"Helvetica", sans-serif`},
		{"Times", "sans-serif", `"Times", serif`},
		{"DejaVu Sans Mono", "sans-serif", `"DejaVu Sans Mono", monospace`},
		{"Noto Sans", "sans-serif", `"Noto Sans", sans-serif`},
		{"", "monospace", "monospace"},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			t.Parallel()

			if got := fontStack(tt.family, tt.generic); got != tt.want {
				t.Errorf("fontStack(%q) = %q, want %q", tt.family, got, tt.want)
			}
		})
	}
}

func TestAbsolutizeSources(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	doc := `<!DOCTYPE html><html><head></head><body>` +
		`<img src="img/a.png" alt="a">` +
		`<img src="https://example.com/b.png" alt="b">` +
		`<img src="../escape.png" alt="c">` +
		`<img src="data:image/png;base64,AAAA" alt="d">` +
		`<a href="#top">top</a>` +
		`</body></html>`

	got, err := AbsolutizeSources(doc, base)
	if err != nil {
		t.Fatalf("AbsolutizeSources() error = %v", err)
	}

	wantSrc := fileURL(filepath.Join(base, "img", "a.png"))
	for _, want := range []string{
		`src="` + wantSrc + `"`,
		`src="https://example.com/b.png"`,
		`src="../escape.png"`,
		`src="data:image/png;base64,AAAA"`,
		`href="#top"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestAbsolutizeSources_EmptyBase(t *testing.T) {
	t.Parallel()

	doc := `<img src="a.png">`
	got, err := AbsolutizeSources(doc, "")
	if err != nil || got != doc {
		t.Errorf("AbsolutizeSources(doc, \"\") = (%q, %v), want unchanged", got, err)
	}
}
