package pdfdoc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

var errDataURI = errors.New("invalid data URI")

// imageTypes maps extensions and MIME subtypes to gofpdf image types.
var imageTypes = map[string]string{
	"png":  "PNG",
	"jpg":  "JPG",
	"jpeg": "JPG",
	"gif":  "GIF",
}

// decodeDataURI extracts the payload and gofpdf image type of a base64
// "data:image/<type>;base64," URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errDataURI
	}
	mime, enc, _ := strings.Cut(header, ";")
	if !strings.EqualFold(enc, "base64") {
		return nil, "", fmt.Errorf("%w: not base64", errDataURI)
	}
	sub, ok := strings.CutPrefix(strings.ToLower(mime), "image/")
	if !ok {
		return nil, "", fmt.Errorf("%w: %q is not an image", errDataURI, mime)
	}
	typ, ok := imageTypes[sub]
	if !ok {
		return nil, "", fmt.Errorf("%w: unsupported image type %q", errDataURI, mime)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errDataURI, err)
	}
	return data, typ, nil
}

// imageCache registers each image source once. Sources that cannot be read
// or decoded are remembered as failures.
type imageCache struct {
	pdf     *gofpdf.Fpdf
	baseDir string
	names   map[string]string
}

func newImageCache(pdf *gofpdf.Fpdf, baseDir string) *imageCache {
	return &imageCache{pdf: pdf, baseDir: baseDir, names: make(map[string]string)}
}

// load returns the registered name of src, or false when src cannot be
// drawn. Remote URLs are never fetched.
func (c *imageCache) load(src string) (string, bool) {
	if name, ok := c.names[src]; ok {
		return name, name != ""
	}
	name := ""
	if data, typ, err := c.read(src); err == nil {
		name = fmt.Sprintf("img%d", len(c.names))
		c.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ, ReadDpi: true}, bytes.NewReader(data))
		if c.pdf.Err() {
			// A corrupt image degrades to its alt text.
			c.pdf.ClearError()
			name = ""
		}
	}
	c.names[src] = name
	return name, name != ""
}

func (c *imageCache) read(src string) ([]byte, string, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	if src == "" || fileutil.IsURL(src) {
		return nil, "", fmt.Errorf("unsupported image source %q", src)
	}
	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) && c.baseDir != "" {
		path = filepath.Join(c.baseDir, path)
	}
	typ, ok := imageTypes[strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")]
	if !ok {
		return nil, "", fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the author's document
	if err != nil {
		return nil, "", err
	}
	return data, typ, nil
}
