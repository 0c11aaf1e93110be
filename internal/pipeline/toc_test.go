package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2doc/internal/model"
)

func tocBlocks(t *testing.T, src string) []model.Block {
	t.Helper()
	blocks := ParseMarkdown(src)
	AssignAnchors(blocks, NewAnchorRegistry())
	return blocks
}

func TestBuildTOC(t *testing.T) {
	t.Parallel()

	src := "# One\n\n## Two\n\n### Three\n\n## Four\n"

	tests := []struct {
		name     string
		min, max int
		want     []model.TOCEntry
	}{
		{
			name: "levels one to two",
			min:  1, max: 2,
			want: []model.TOCEntry{
				{Text: "One", Level: 1, AnchorID: "one", Depth: 1, Number: "1."},
				{Text: "Two", Level: 2, AnchorID: "two", Depth: 2, Number: "1.1."},
				{Text: "Four", Level: 2, AnchorID: "four", Depth: 2, Number: "1.2."},
			},
		},
		{
			name: "all levels",
			min:  1, max: 6,
			want: []model.TOCEntry{
				{Text: "One", Level: 1, AnchorID: "one", Depth: 1, Number: "1."},
				{Text: "Two", Level: 2, AnchorID: "two", Depth: 2, Number: "1.1."},
				{Text: "Three", Level: 3, AnchorID: "three", Depth: 3, Number: "1.1.1."},
				{Text: "Four", Level: 2, AnchorID: "four", Depth: 2, Number: "1.2."},
			},
		},
		{
			name: "starting below the top level",
			min:  2, max: 3,
			want: []model.TOCEntry{
				{Text: "Two", Level: 2, AnchorID: "two", Depth: 1, Number: "1."},
				{Text: "Three", Level: 3, AnchorID: "three", Depth: 2, Number: "1.1."},
				{Text: "Four", Level: 2, AnchorID: "four", Depth: 1, Number: "2."},
			},
		},
		{
			name: "out of bounds levels are clamped",
			min:  0, max: 9,
			want: []model.TOCEntry{
				{Text: "One", Level: 1, AnchorID: "one", Depth: 1, Number: "1."},
				{Text: "Two", Level: 2, AnchorID: "two", Depth: 2, Number: "1.1."},
				{Text: "Three", Level: 3, AnchorID: "three", Depth: 3, Number: "1.1.1."},
				{Text: "Four", Level: 2, AnchorID: "four", Depth: 2, Number: "1.2."},
			},
		},
		{
			name: "inverted range",
			min:  3, max: 1,
			want: nil,
		},
		{
			name: "no heading in range",
			min:  4, max: 6,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BuildTOC(tocBlocks(t, src), tt.min, tt.max)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildTOC(%d, %d) mismatch (-want +got):\n%s", tt.min, tt.max, diff)
			}
		})
	}
}

func TestBuildTOC_SkippedLevels(t *testing.T) {
	t.Parallel()

	got := BuildTOC(tocBlocks(t, "# A\n\n### B\n\n#### C\n\n# D\n"), 1, 6)
	want := []model.TOCEntry{
		{Text: "A", Level: 1, AnchorID: "a", Depth: 1, Number: "1."},
		{Text: "B", Level: 3, AnchorID: "b", Depth: 2, Number: "1.1."},
		{Text: "C", Level: 4, AnchorID: "c", Depth: 3, Number: "1.1.1."},
		{Text: "D", Level: 1, AnchorID: "d", Depth: 1, Number: "2."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildTOC() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTOC_EntriesReferenceAnchors(t *testing.T) {
	t.Parallel()

	blocks := ParseMarkdown("# Same\n\n## Same\n\n## *Styled* Title\n")
	ids := AssignAnchors(blocks, NewAnchorRegistry())

	for _, e := range BuildTOC(blocks, 1, 6) {
		found := false
		for _, id := range ids {
			if id == e.AnchorID {
				found = true
			}
		}
		if !found {
			t.Errorf("TOC entry %q points to unknown anchor %q", e.Text, e.AnchorID)
		}
	}
}
