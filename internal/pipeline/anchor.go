package pipeline

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-md2doc/internal/model"
)

// FallbackAnchorID replaces slugs that normalize to nothing.
const FallbackAnchorID = "section"

var lowerCaser = cases.Lower(language.Und)

// AnchorRegistry holds the anchor ids allocated during one generation pass.
// It is not safe for concurrent use and must not be shared between passes.
type AnchorRegistry struct {
	used  map[string]struct{}
	order []string
}

// NewAnchorRegistry returns an empty registry.
func NewAnchorRegistry() *AnchorRegistry {
	return &AnchorRegistry{used: make(map[string]struct{})}
}

// Has reports whether id is already allocated.
func (r *AnchorRegistry) Has(id string) bool {
	_, ok := r.used[id]
	return ok
}

// IDs returns the allocated ids in allocation order.
func (r *AnchorRegistry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of allocated ids.
func (r *AnchorRegistry) Len() int {
	return len(r.order)
}

func (r *AnchorRegistry) register(id string) {
	r.used[id] = struct{}{}
	r.order = append(r.order, id)
}

// GenerateAnchorID turns heading text into a URL-safe slug.
//
// The text is decomposed (NFD) and lowercased, whitespace and underscore
// runs become one hyphen, everything but letters, numbers, combining marks
// and hyphens is dropped, the result is recomposed (NFC), and repeated or
// edge hyphens are removed. An empty result becomes FallbackAnchorID.
func GenerateAnchorID(text string) string {
	s := lowerCaser.String(norm.NFD.String(text))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '_':
			pendingSep = true
			continue
		case r == '-' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r):
		default:
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(r)
	}

	slug := collapseHyphens(norm.NFC.String(b.String()))
	if slug == "" {
		return FallbackAnchorID
	}
	return slug
}

func collapseHyphens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}

// GenerateUniqueAnchorID allocates a slug for text that is unique within
// registry: the base slug if free, otherwise the base suffixed with the
// lowest free "-1", "-2", ... Call it once per heading in document order.
// A nil registry is a caller bug and panics.
func GenerateUniqueAnchorID(text string, registry *AnchorRegistry) string {
	if registry == nil {
		panic("pipeline: GenerateUniqueAnchorID called with nil registry")
	}
	base := GenerateAnchorID(text)
	id := base
	for n := 1; registry.Has(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	registry.register(id)
	return id
}

// AssignAnchors sets AnchorID on every heading of blocks, in order, using
// registry, and returns the allocated ids in document order.
func AssignAnchors(blocks []model.Block, registry *AnchorRegistry) []string {
	if registry == nil {
		panic("pipeline: AssignAnchors called with nil registry")
	}
	var ids []string
	for _, h := range model.Headings(blocks) {
		h.AnchorID = GenerateUniqueAnchorID(h.PlainText(), registry)
		ids = append(ids, h.AnchorID)
	}
	return ids
}

// ResolveAnchorLink maps an in-document link target ("#Some Heading") to
// one of validIDs. It tries the target as written, then its slug, then a
// case-insensitive comparison. It never invents an id: ok is false when
// nothing matches or the target is empty.
func ResolveAnchorLink(href string, validIDs []string) (id string, ok bool) {
	target := strings.TrimPrefix(href, "#")
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}

	valid := make(map[string]struct{}, len(validIDs))
	for _, v := range validIDs {
		valid[v] = struct{}{}
	}
	if _, found := valid[target]; found {
		return target, true
	}
	slug := GenerateAnchorID(target)
	if _, found := valid[slug]; found {
		return slug, true
	}

	sorted := append([]string(nil), validIDs...)
	sort.Strings(sorted)
	for _, v := range sorted {
		if strings.EqualFold(v, target) || strings.EqualFold(v, slug) {
			return v, true
		}
	}
	return "", false
}

// IsInternalLink reports whether href points inside the document.
func IsInternalLink(href string) bool {
	return strings.HasPrefix(href, "#")
}
