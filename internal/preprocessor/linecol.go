package preprocessor

import "sort"

// LineIndex maps byte offsets to 1-based (line, column) pairs. It holds
// the offset at which each source line begins; offset 0 (line 1) is
// always present.
type LineIndex struct {
	starts []int
}

func NewLineIndex() *LineIndex {
	return &LineIndex{starts: []int{0}}
}

// Add records the offset just past a line break as a new line start.
// Offsets that do not extend the index are ignored, so recorded starts
// stay strictly increasing.
func (ix *LineIndex) Add(off int) {
	if n := len(ix.starts); n > 0 && off <= ix.starts[n-1] {
		return
	}
	ix.starts = append(ix.starts, off)
}

// LineCol returns the line and column containing off, found by binary
// search for the greatest recorded line start not exceeding off.
func (ix *LineIndex) LineCol(off int) (line, col int) {
	i := sort.SearchInts(ix.starts, off+1) - 1
	return i + 1, off - ix.starts[i] + 1
}

// Lines reports the number of recorded line starts.
func (ix *LineIndex) Lines() int { return len(ix.starts) }
