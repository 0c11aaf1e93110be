// Package segment splits text into plain and emoji runs without ever
// cutting a grapheme cluster, so text shaping downstream can pick a font per
// run.
package segment

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Segment is a maximal run of either plain text or emoji clusters.
type Segment struct {
	Text    string
	IsEmoji bool
}

const (
	zwj    = '\u200d'
	vs16   = '\ufe0f'
	keycap = '\u20e3'
)

// SplitTextIntoSegments splits text into alternating plain and emoji
// segments. Adjacent clusters of the same class are merged, so "😀😂🎉" is a
// single segment. The result never contains an empty segment and is nil for
// empty input.
func SplitTextIntoSegments(text string) []Segment {
	var segments []Segment
	var buf strings.Builder
	current := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		segments = append(segments, Segment{Text: buf.String(), IsEmoji: current})
		buf.Reset()
	}

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		emoji := IsEmoji(cluster)
		if emoji != current {
			flush()
			current = emoji
		}
		buf.WriteString(cluster)
	}
	flush()
	return segments
}

// IsEmoji reports whether cluster, a single grapheme cluster, renders as an
// emoji. Text longer than one cluster is judged by its first cluster.
func IsEmoji(cluster string) bool {
	if cluster == "" {
		return false
	}
	runes := []rune(cluster)
	first := runes[0]

	switch {
	case isSkinToneModifier(first):
		return false
	case isRegionalIndicator(first):
		// A lone indicator still renders as a boxed letter glyph from the
		// emoji font.
		return true
	case isKeycapBase(first):
		return hasRune(runes[1:], keycap)
	case isEmojiPresentation(first):
		return true
	case isTextDefaultPictograph(first):
		return hasRune(runes[1:], vs16) || hasRune(runes[1:], zwj)
	}
	return false
}

// HasEmoji reports whether text contains at least one emoji cluster.
func HasEmoji(text string) bool {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if IsEmoji(g.Str()) {
			return true
		}
	}
	return false
}

// CountEmojis counts emoji clusters, not scalar values: a ZWJ family or a
// flag counts once.
func CountEmojis(text string) int {
	n := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if IsEmoji(g.Str()) {
			n++
		}
	}
	return n
}

// ReplaceEmojis replaces every emoji cluster with repl. Renderers whose
// fonts cannot draw emoji use it to keep one substitute glyph per cluster.
func ReplaceEmojis(text, repl string) string {
	if !HasEmoji(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if IsEmoji(g.Str()) {
			b.WriteString(repl)
			continue
		}
		b.WriteString(g.Str())
	}
	return b.String()
}

func hasRune(runes []rune, r rune) bool {
	for _, x := range runes {
		if x == r {
			return true
		}
	}
	return false
}

func isSkinToneModifier(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

func isKeycapBase(r rune) bool {
	return r == '#' || r == '*' || (r >= '0' && r <= '9')
}

// isEmojiPresentation reports scalars that render as emoji on their own.
func isEmojiPresentation(r rune) bool {
	return unicode.Is(emojiPresentation, r)
}

// isTextDefaultPictograph reports pictographs that render as text unless a
// VS16 or a ZWJ sequence asks for emoji, such as U+2764 HEAVY BLACK HEART.
func isTextDefaultPictograph(r rune) bool {
	return unicode.Is(extendedPictographic, r)
}
