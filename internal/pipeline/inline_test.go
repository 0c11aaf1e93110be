package pipeline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2doc/internal/model"
)

func TestParseInline(t *testing.T) {
	t.Parallel()

	bold := func(children ...model.Inline) model.Inline { return model.Styled(model.InlineBold, children...) }
	italic := func(children ...model.Inline) model.Inline { return model.Styled(model.InlineItalic, children...) }
	text := model.Text

	tests := []struct {
		name  string
		input string
		want  []model.Inline
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "plain text",
			input: "just text",
			want:  []model.Inline{text("just text")},
		},
		{
			name:  "bold",
			input: "Hello **world**",
			want:  []model.Inline{text("Hello "), bold(text("world"))},
		},
		{
			name:  "underscore bold and italic",
			input: "__a__ and _b_",
			want:  []model.Inline{bold(text("a")), text(" and "), italic(text("b"))},
		},
		{
			name:  "bold nested in italic",
			input: "*a **b** c*",
			want:  []model.Inline{italic(text("a "), bold(text("b")), text(" c"))},
		},
		{
			name:  "italic nested in bold",
			input: "**a *b* c**",
			want:  []model.Inline{bold(text("a "), italic(text("b")), text(" c"))},
		},
		{
			name:  "unterminated bold stays literal",
			input: "**bold",
			want:  []model.Inline{text("**bold")},
		},
		{
			name:  "intraword underscores",
			input: "snake_case_name",
			want:  []model.Inline{text("snake_case_name")},
		},
		{
			name:  "code span wins over emphasis",
			input: "`**not bold**`",
			want:  []model.Inline{model.Code("**not bold**")},
		},
		{
			name:  "double backtick code span",
			input: "`` a`b ``",
			want:  []model.Inline{model.Code("a`b")},
		},
		{
			name:  "strikethrough",
			input: "~~gone~~ here",
			want:  []model.Inline{model.Styled(model.InlineStrike, text("gone")), text(" here")},
		},
		{
			name:  "link",
			input: "see [the docs](https://example.com) now",
			want: []model.Inline{
				text("see "),
				model.Link("https://example.com", text("the docs")),
				text(" now"),
			},
		},
		{
			name:  "link with styled text and title",
			input: `[**go**](#intro "Intro")`,
			want:  []model.Inline{model.Link("#intro", bold(text("go")))},
		},
		{
			name:  "href with spaces",
			input: "[x](#My Heading)",
			want:  []model.Inline{model.Link("#My Heading", text("x"))},
		},
		{
			name:  "href with spaces and title",
			input: `[x](#My Heading 'the heading')`,
			want:  []model.Inline{model.Link("#My Heading", text("x"))},
		},
		{
			name:  "parenthesized title",
			input: "[x](https://example.com (docs))",
			want:  []model.Inline{model.Link("https://example.com", text("x"))},
		},
		{
			name:  "parentheses inside href",
			input: "[x](https://en.wikipedia.org/wiki/Go_(language))",
			want:  []model.Inline{model.Link("https://en.wikipedia.org/wiki/Go_(language)", text("x"))},
		},
		{
			name:  "link binds tighter than emphasis",
			input: "*[a*](b)",
			want:  []model.Inline{text("*"), model.Link("b", text("a*"))},
		},
		{
			name:  "emphasis around a link",
			input: "*see [a*](b)*",
			want:  []model.Inline{italic(model.Text("see "), model.Link("b", text("a*")))},
		},
		{
			name:  "inline image becomes alt text",
			input: "![a cat](cat.png) sleeps",
			want:  []model.Inline{text("a cat sleeps")},
		},
		{
			name:  "escaped delimiters",
			input: `\*not\* italic`,
			want:  []model.Inline{text("*not* italic")},
		},
		{
			name:  "soft newline is a space",
			input: "a\nb",
			want:  []model.Inline{text("a b")},
		},
		{
			name:  "two trailing spaces are a line break",
			input: "line one  \nline two",
			want:  []model.Inline{text("line one"), model.LineBreak(), text("line two")},
		},
		{
			name:  "backslash line break",
			input: "a\\\nb",
			want:  []model.Inline{text("a"), model.LineBreak(), text("b")},
		},
		{
			name:  "br tag",
			input: "a<br/>b",
			want:  []model.Inline{text("a"), model.LineBreak(), text("b")},
		},
		{
			name:  "lone asterisks",
			input: "2 * 3 * 4",
			want:  []model.Inline{text("2 * 3 * 4")},
		},
		{
			name:  "emoji kept whole",
			input: "ship it 🚀 **now**",
			want:  []model.Inline{text("ship it 🚀 "), bold(text("now"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseInline(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseInline_ContentMatchesChildren(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"*a **b** c*",
		"[**x** and `y`](#z)",
		"~~a *b*~~",
	}

	for _, in := range inputs {
		model.Walk(ParseInline(in), func(n model.Inline) bool {
			if len(n.Children) > 0 && n.Content != model.PlainText(n.Children) {
				t.Errorf("ParseInline(%q): %s content %q != children %q", in, n.Kind, n.Content, model.PlainText(n.Children))
			}
			return true
		})
	}
}

func TestParseInline_NeverDropsPlainCharacters(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"a * b",
		"unclosed [link(",
		"**a *b",
		"~single~ tilde",
		"end with backslash \\",
		"` unmatched",
	}

	for _, in := range inputs {
		got := model.PlainText(ParseInline(in))
		if strings.ReplaceAll(got, " ", "") != strings.ReplaceAll(in, " ", "") {
			t.Errorf("ParseInline(%q) plain text = %q", in, got)
		}
	}
}
