package pipeline

import (
	"math"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// pointsPerInch converts page metrics (inches) to font metrics (points).
const pointsPerInch = 72

// CalculatePageBreaks estimates page-break positions for a preview.
//
// Lines that are explicit page-break markers ("<!-- pagebreak -->", the
// default markers and the theme's marker) are authoritative: when any exist
// their 1-based line numbers are returned verbatim and nothing is added.
// Otherwise breaks are placed at every multiple of LinesPerPage strictly
// below the line count. Markers inside fenced code are not breaks.
//
// The result is an approximation; renderers paginate at draw time.
func CalculatePageBreaks(content string, theme model.Theme) []int {
	lines := splitLines(Preprocess(content))
	markers := DefaultParseOptions().WithPageBreakMarker(theme.PageBreakMarker).PageBreakMarkers

	if explicit := explicitBreaks(lines, markers); len(explicit) > 0 {
		return explicit
	}

	perPage := LinesPerPage(theme)
	if perPage <= 0 {
		return nil
	}
	var breaks []int
	for n := perPage; n < len(lines); n += perPage {
		breaks = append(breaks, n)
	}
	return breaks
}

// LinesPerPage returns how many body lines fit on one page for theme, or 0
// when the metrics are degenerate (non-positive, NaN or infinite).
func LinesPerPage(theme model.Theme) int {
	_, height := theme.Page.Dimensions()
	m := theme.Page.Margins
	lineHeight := theme.Fonts.Body.Size * theme.Leading
	if lineHeight <= 0 || math.IsNaN(lineHeight) || math.IsInf(lineHeight, 0) {
		return 0
	}
	capacity := math.Floor((height - m.Top - m.Bottom) * pointsPerInch / lineHeight)
	if capacity < 1 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return 0
	}
	if capacity > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(capacity)
}

func explicitBreaks(lines []string, markers []string) []int {
	var breaks []int
	fence := ""
	for i, line := range lines {
		if m := fenceLine.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[2]
			case isClosingFence(line, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if isPageBreakLine(strings.TrimSpace(line), markers) {
			breaks = append(breaks, i+1)
		}
	}
	return breaks
}
