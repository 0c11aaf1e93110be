// Package hints builds the remediation lines appended to CLI error messages.
// Every hint renders as "\n  hint: <text>" so it can be concatenated onto a
// wrapped error.
package hints

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

const prefix = "\n  hint: "

// ciVariables are set by the CI systems that run the print format most.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// InContainer reports whether the process runs in a container.
var InContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// line joins parts into one hint. No parts gives no hint.
func line(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	return prefix + strings.Join(parts, "; ")
}

// ForBrowserConnect suggests how to get headless Chrome running. getenv
// reads the environment of the failed conversion.
func ForBrowserConnect(getenv func(string) string) string {
	var parts []string

	inCI := false
	for _, name := range ciVariables {
		if getenv(name) != "" {
			inCI = true
			break
		}
	}
	if (inCI || InContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 in containers and CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "point ROD_BROWSER_BIN at an installed Chrome")
	}
	parts = append(parts, "or drop the print format: html and pdf need no browser")
	return line(parts...)
}

// ForTimeout suggests a longer browser timeout.
func ForTimeout() string {
	return line("raise --timeout (or MD2DOC_TIMEOUT) for large documents")
}

// ForConfigNotFound names --config and the user-level file among searched.
func ForConfigNotFound(searched []string) string {
	parts := []string{"pass --config path/to/file.yaml"}
	for _, p := range searched {
		if strings.Contains(strings.ReplaceAll(p, `\`, "/"), "go-md2doc/") {
			parts[0] += " or create " + p
			break
		}
	}
	return line(parts...)
}

// ForOutputDirectory points at the output parent directory.
func ForOutputDirectory() string {
	return line("make sure the parent of --output exists and is writable")
}

// ForThemeNotFound lists the themes that do exist.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return line("available themes: " + strings.Join(available, ", "))
}

// ForTOCRange states the accepted heading levels.
func ForTOCRange(minLevel, maxLevel int) string {
	return line(fmt.Sprintf("use %d <= --toc-min <= --toc-max <= %d", minLevel, maxLevel))
}

// ForDiagramRaster explains where diagram rasters are looked up.
func ForDiagramRaster() string {
	return line("--diagram-dir holds <diagram-id>.png files", "diagrams without one render as source")
}
