package fileutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// markdownExtensions are matched case-insensitively.
var markdownExtensions = []string{".md", ".markdown"}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath tells a path from a bare name: "technical" names a theme or
// config, while "./technical.yaml" and `C:\cfg.yaml` are paths.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsURL reports whether s is an http or https address.
func IsURL(s string) bool {
	scheme, _, ok := strings.Cut(s, "://")
	if !ok {
		return false
	}
	scheme = strings.ToLower(scheme)
	return scheme == "http" || scheme == "https"
}

// IsMarkdown reports whether path ends in .md or .markdown.
func IsMarkdown(path string) bool {
	return slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(path)))
}

// OutputPath names the output of src for one format: the base name of src
// with its extension replaced by suffix, in outDir or, when outDir is
// empty, beside src.
//
//	OutputPath("docs/guide.md", "", ".pdf")            docs/guide.pdf
//	OutputPath("docs/guide.md", "out", ".print.pdf")   out/guide.print.pdf
func OutputPath(src, outDir, suffix string) string {
	if outDir == "" {
		outDir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+suffix)
}
