package segment

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitTextIntoSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "plain only",
			text: "Hello World",
			want: []Segment{{Text: "Hello World"}},
		},
		{
			name: "emoji between words",
			text: "Hello 😀 World",
			want: []Segment{
				{Text: "Hello "},
				{Text: "😀", IsEmoji: true},
				{Text: " World"},
			},
		},
		{
			name: "adjacent emoji merge",
			text: "😀😂🎉",
			want: []Segment{{Text: "😀😂🎉", IsEmoji: true}},
		},
		{
			name: "separated emoji do not merge",
			text: "😀 😂",
			want: []Segment{
				{Text: "😀", IsEmoji: true},
				{Text: " "},
				{Text: "😂", IsEmoji: true},
			},
		},
		{
			name: "skin tone modifier stays in cluster",
			text: "ok 👍🏽!",
			want: []Segment{
				{Text: "ok "},
				{Text: "👍🏽", IsEmoji: true},
				{Text: "!"},
			},
		},
		{
			name: "zwj family is one cluster",
			text: "a\U0001F468\u200d\U0001F469\u200d\U0001F467b",
			want: []Segment{
				{Text: "a"},
				{Text: "\U0001F468\u200d\U0001F469\u200d\U0001F467", IsEmoji: true},
				{Text: "b"},
			},
		},
		{
			name: "flag",
			text: "FR 🇫🇷",
			want: []Segment{
				{Text: "FR "},
				{Text: "🇫🇷", IsEmoji: true},
			},
		},
		{
			name: "keycap",
			text: "press 1\ufe0f\u20e3 now",
			want: []Segment{
				{Text: "press "},
				{Text: "1\ufe0f\u20e3", IsEmoji: true},
				{Text: " now"},
			},
		},
		{
			name: "digits without keycap are plain",
			text: "123",
			want: []Segment{{Text: "123"}},
		},
		{
			name: "lone variation selector is plain",
			text: "\ufe0fabc",
			want: []Segment{{Text: "\ufe0fabc"}},
		},
		{
			name: "lone skin tone modifier is plain",
			text: "\U0001F3FB",
			want: []Segment{{Text: "\U0001F3FB"}},
		},
		{
			name: "heart with VS16 is emoji",
			text: "I \u2764\ufe0f Go",
			want: []Segment{
				{Text: "I "},
				{Text: "\u2764\ufe0f", IsEmoji: true},
				{Text: " Go"},
			},
		},
		{
			name: "heart without VS16 is text",
			text: "I ❤ Go",
			want: []Segment{{Text: "I ❤ Go"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SplitTextIntoSegments(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitTextIntoSegments(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestSplitTextIntoSegments_Reassembles(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain",
		"Hello 😀 World",
		"\U0001F468\u200d\U0001F469\u200d\U0001F467 family and 🇯🇵 flag and 1\ufe0f\u20e3",
		"\ufe0f\U0001F3FB stray modifiers",
	}

	for _, in := range inputs {
		var b strings.Builder
		for _, seg := range SplitTextIntoSegments(in) {
			if seg.Text == "" {
				t.Errorf("SplitTextIntoSegments(%q) produced an empty segment", in)
			}
			b.WriteString(seg.Text)
		}
		if b.String() != in {
			t.Errorf("segments of %q reassemble to %q", in, b.String())
		}
	}
}

func TestCountEmojis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"no emoji here", 0},
		{"😀😂🎉", 3},
		{"\U0001F468\u200d\U0001F469\u200d\U0001F467", 1},
		{"🇫🇷🇩🇪", 2},
		{"👍🏽 and 👍", 2},
		{"1\ufe0f\u20e3 2", 1},
		{"🟠🟩 status", 2},
		{"dove \U0001F54A and \U0001F54A\ufe0f", 1},
	}

	for _, tt := range tests {
		if got := CountEmojis(tt.text); got != tt.want {
			t.Errorf("CountEmojis(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestHasEmoji(t *testing.T) {
	t.Parallel()

	if HasEmoji("plain text") {
		t.Error("HasEmoji(plain text) = true, want false")
	}
	if !HasEmoji("rocket 🚀") {
		t.Error("HasEmoji(rocket 🚀) = false, want true")
	}
}

func TestIsEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cluster string
		want    bool
	}{
		{"", false},
		{"a", false},
		{"😀", true},
		{"🇫🇷", true},
		{"#\ufe0f\u20e3", true},
		{"#", false},
		{"©", false},
		{"\u00a9\ufe0f", true},
		{"🟠", true},
		{"🟩", true},
		{"🟰", true},
		{"\U0001F54A", false},
		{"\U0001F54A\ufe0f", true},
		{"\U0001F321", false},
		{"\U0001F5A5", false},
		{"\U0001F3FB", false},
	}

	for _, tt := range tests {
		if got := IsEmoji(tt.cluster); got != tt.want {
			t.Errorf("IsEmoji(%q) = %v, want %v", tt.cluster, got, tt.want)
		}
	}
}

func TestReplaceEmojis(t *testing.T) {
	t.Parallel()

	got := ReplaceEmojis("a 😀😂 b \U0001F468\u200d\U0001F469\u200d\U0001F467", "?")
	if want := "a ?? b ?"; got != want {
		t.Errorf("ReplaceEmojis() = %q, want %q", got, want)
	}
}
