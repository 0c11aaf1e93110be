package pipeline

import (
	"strconv"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// Heading level bounds.
const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 6
)

// BuildTOC selects the headings whose level is within [minLevel, maxLevel],
// in document order, with their already assigned anchors. It returns nil
// when the range is empty or inverted or no heading qualifies; callers treat
// that as "no table of contents".
func BuildTOC(blocks []model.Block, minLevel, maxLevel int) []model.TOCEntry {
	if minLevel < MinHeadingLevel {
		minLevel = MinHeadingLevel
	}
	if maxLevel > MaxHeadingLevel {
		maxLevel = MaxHeadingLevel
	}
	if minLevel > maxLevel {
		return nil
	}

	var entries []model.TOCEntry
	numbering := newNumberingState()
	for _, h := range model.Headings(blocks) {
		if h.Level < minLevel || h.Level > maxLevel {
			continue
		}
		num, depth := numbering.next(h.Level)
		entries = append(entries, model.TOCEntry{
			Text:     strings.TrimSpace(h.PlainText()),
			Level:    h.Level,
			AnchorID: h.AnchorID,
			Depth:    depth,
			Number:   num,
		})
	}
	return entries
}

// numberingState tracks hierarchical numbering for TOC entries.
// The first selected heading sets depth 1, and jumps of more than one level
// are treated as a direct child.
type numberingState struct {
	counters     [MaxHeadingLevel]int
	minLevelSeen int
	lastDepth    int
}

func newNumberingState() *numberingState {
	return &numberingState{}
}

// next returns the dotted number ("1.2.") and the effective depth for a
// heading at level.
func (n *numberingState) next(level int) (string, int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	depth := level - n.minLevelSeen + 1
	if depth < 1 {
		depth = 1
	}
	// H1 -> H3 becomes depth 1 -> 2, not 1 -> 3.
	if n.lastDepth > 0 && depth > n.lastDepth+1 {
		depth = n.lastDepth + 1
	}

	for i := depth; i < MaxHeadingLevel; i++ {
		n.counters[i] = 0
	}
	n.counters[depth-1]++
	n.lastDepth = depth

	parts := make([]string, depth)
	for i := 0; i < depth; i++ {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}
