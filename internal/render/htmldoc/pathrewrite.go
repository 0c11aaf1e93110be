package htmldoc

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// rewritableAttrs lists the element attributes that may hold a relative
// file reference.
var rewritableAttrs = map[string]string{
	"img": "src",
	"a":   "href",
}

// AbsolutizeSources rewrites relative img[src] and a[href] references of a
// rendered document into file:// URLs rooted at baseDir. A browser loading
// the document from another location (a temp file) then still finds images
// and diagram rasters. References escaping baseDir are left untouched.
// An empty baseDir returns the document unchanged.
func AbsolutizeSources(document, baseDir string) (string, error) {
	if baseDir == "" {
		return document, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := rewritableAttrs[n.Data]; ok {
				for i, attr := range n.Attr {
					if attr.Key == key && isRelativeReference(attr.Val) {
						if abs, ok := resolveUnder(absBase, attr.Val); ok {
							n.Attr[i].Val = fileURL(abs)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// isRelativeReference reports whether ref is a relative filesystem path:
// not empty, not a fragment, not a URL with a scheme or host, not absolute.
func isRelativeReference(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(ref)
}

// resolveUnder joins ref onto base and reports whether the result stays
// inside base.
func resolveUnder(base, ref string) (string, bool) {
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	abs := filepath.Clean(filepath.Join(base, ref))
	prefix := filepath.Clean(base) + string(filepath.Separator)
	if !strings.HasPrefix(abs+string(filepath.Separator), prefix) {
		return "", false
	}
	return abs, true
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
