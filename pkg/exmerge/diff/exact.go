package diff

import (
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// HasExactDiff scans ours against theirs coordinate by coordinate, ignoring
// any alignment. With includeBase, a difference from base on either side
// also counts.
func HasExactDiff(base, ours, theirs models.Grid, includeBase bool) bool {
	if gridsDiffer(ours, theirs) {
		return true
	}
	if includeBase && base != nil {
		return gridsDiffer(base, ours) || gridsDiffer(base, theirs)
	}
	return false
}

func gridsDiffer(a, b models.Grid) bool {
	rows := max(a.Rows(), b.Rows())
	cols := max(a.Cols(), b.Cols())
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			if !normalize.Equal(a.At(r, c), b.At(r, c)) {
				return true
			}
		}
	}
	return false
}
