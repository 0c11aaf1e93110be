package pdfdoc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/segment"
)

// ErrFontFile indicates a theme font file that does not exist.
var ErrFontFile = errors.New("font file not found")

// Core font families available without embedding.
const (
	coreSans  = "Helvetica"
	coreSerif = "Times"
	coreMono  = "Courier"
)

// fontStyles are registered for every TrueType font so bold and italic runs
// resolve to the same file.
var fontStyles = []string{"", "B", "I", "BI"}

// face is a font ready to be selected with SetFont.
type face struct {
	family string
	// unicode is set for embedded TrueType fonts, which take UTF-8 text.
	unicode bool
}

// fontSet holds the faces of the three typographic roles.
type fontSet struct {
	body, heading, code face
	// encode converts UTF-8 to the core font code page.
	encode     func(string) string
	substitute string
}

// coreFamily maps a theme family name to the closest core PDF font.
func coreFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return coreMono
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"),
		strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return coreSerif
	}
	return coreSans
}

// loadFonts registers the theme fonts on pdf. Relative font files resolve
// against baseDir.
func loadFonts(pdf *gofpdf.Fpdf, fonts model.Fonts, baseDir, substitute string) (fontSet, error) {
	set := fontSet{
		encode:     pdf.UnicodeTranslatorFromDescriptor(""),
		substitute: substitute,
	}
	roles := []struct {
		name string
		font model.Font
		dst  *face
	}{
		{"body", fonts.Body, &set.body},
		{"heading", fonts.Heading, &set.heading},
		{"code", fonts.Code, &set.code},
	}
	for _, r := range roles {
		if r.font.File == "" {
			*r.dst = face{family: coreFamily(r.font.Family)}
			continue
		}
		path := r.font.File
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		if !fileutil.FileExists(path) {
			return fontSet{}, fmt.Errorf("%w: %s font %q", ErrFontFile, r.name, r.font.File)
		}
		family := "md2doc-" + r.name
		for _, style := range fontStyles {
			pdf.AddUTF8Font(family, style, path)
		}
		if err := pdf.Error(); err != nil {
			return fontSet{}, fmt.Errorf("load %s font %q: %w", r.name, r.font.File, err)
		}
		*r.dst = face{family: family, unicode: true}
	}
	return set, nil
}

// text prepares s for drawing with f: emoji clusters are substituted and
// core font text is converted to its code page.
func (s fontSet) text(f face, str string) string {
	str = segment.ReplaceEmojis(str, s.substitute)
	if f.unicode {
		return str
	}
	return s.encode(str)
}
