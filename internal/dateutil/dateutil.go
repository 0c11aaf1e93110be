// Package dateutil resolves the footer date of a theme. Literal dates pass
// through unchanged; "auto" values are rendered from a clock reading.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a malformed date pattern or auto value.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds the length of a pattern.
const MaxDateFormatLength = 50

// DefaultDateFormat is the pattern of a bare "auto".
const DefaultDateFormat = "YYYY-MM-DD"

// autoKeyword prefixes every generated date value.
const autoKeyword = "auto"

// DatePresets names common patterns usable as "auto:<preset>".
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"short":    "MMM D, YYYY",
	"weekday":  "dddd, MMMM D, YYYY",
}

// field renders one part of a date.
type field func(time.Time) string

type token struct {
	name   string
	render field
}

// tokens are tried in order at each position, so longer tokens that share a
// prefix come first.
var tokens = []token{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"dddd", func(t time.Time) string { return t.Weekday().String() }},
	{"ddd", func(t time.Time) string { return t.Weekday().String()[:3] }},
}

// Layout is a compiled date pattern.
type Layout struct {
	parts []field
}

// literal renders fixed text.
func literal(s string) field {
	return func(time.Time) string { return s }
}

// Compile parses a pattern made of the tokens YYYY, YY, MMMM, MMM, MM, M,
// DD, D, dddd and ddd. Text inside [brackets] is kept verbatim, as is any
// character that starts no token.
func Compile(pattern string) (Layout, error) {
	switch {
	case pattern == "":
		return Layout{}, fmt.Errorf("%w: empty pattern", ErrInvalidDateFormat)
	case len(pattern) > MaxDateFormatLength:
		return Layout{}, fmt.Errorf("%w: pattern longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var (
		parts []field
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, literal(text.String()))
			text.Reset()
		}
	}

	for rest, pos := pattern, 0; rest != ""; {
		if rest[0] == '[' {
			inner, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			text.WriteString(inner)
			pos += len(rest) - len(after)
			rest = after
			continue
		}

		n := 1
		if tok, ok := matchToken(rest); ok {
			flush()
			parts = append(parts, tok.render)
			n = len(tok.name)
		} else {
			text.WriteByte(rest[0])
		}
		pos += n
		rest = rest[n:]
	}
	flush()
	return Layout{parts: parts}, nil
}

func matchToken(s string) (token, bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok.name) {
			return tok, true
		}
	}
	return token{}, false
}

// Format renders t.
func (l Layout) Format(t time.Time) string {
	var b strings.Builder
	for _, p := range l.parts {
		b.WriteString(p(t))
	}
	return b.String()
}

// ResolveDate expands a footer date value:
//
//	auto           now as YYYY-MM-DD
//	auto:PATTERN   now rendered with PATTERN
//	auto:PRESET    now rendered with a DatePresets entry
//
// Any value not starting with "auto" (case-insensitive) is returned as is.
func ResolveDate(value string, now time.Time) (string, error) {
	if len(value) < len(autoKeyword) || !strings.EqualFold(value[:len(autoKeyword)], autoKeyword) {
		return value, nil
	}

	pattern := DefaultDateFormat
	if rest := value[len(autoKeyword):]; rest != "" {
		spec, ok := strings.CutPrefix(rest, ":")
		if !ok {
			return "", fmt.Errorf("%w: %q (use \"auto\" or \"auto:PATTERN\")", ErrInvalidDateFormat, value)
		}
		if spec == "" {
			return "", fmt.Errorf("%w: missing pattern after \"auto:\"", ErrInvalidDateFormat)
		}
		pattern = spec
		if preset, ok := DatePresets[strings.ToLower(spec)]; ok {
			pattern = preset
		}
	}

	layout, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return layout.Format(now), nil
}

// Validate reports whether value resolves without error.
func Validate(value string) error {
	_, err := ResolveDate(value, time.Time{})
	return err
}
