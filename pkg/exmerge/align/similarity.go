package align

import (
	"math"

	"github.com/agnivade/levenshtein"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// TextSimilarity returns 1 - distance/longest, in [0, 1], where distance is
// the rune-level Levenshtein distance.
func TextSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are identical.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		if seen[s] {
			continue
		}
		seen[s] = true
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// TypeSimilarity returns 1 minus the total variation distance between two
// type distributions.
func TypeSimilarity(a, b models.TypeSignature) float64 {
	ta, tb := a.Total(), b.Total()
	if ta == 0 && tb == 0 {
		return 1
	}
	if ta == 0 || tb == 0 {
		return 0
	}
	frac := func(n, total int) float64 { return float64(n) / float64(total) }
	d := math.Abs(frac(a.Numeric, ta)-frac(b.Numeric, tb)) +
		math.Abs(frac(a.Text, ta)-frac(b.Text, tb)) +
		math.Abs(frac(a.Empty, ta)-frac(b.Empty, tb)) +
		math.Abs(frac(a.Other, ta)-frac(b.Other, tb))
	return 1 - d/2
}

// RowSimilarity is the fraction of columns non-empty on both rows that hold
// equal values. ignore is a 1-based aligned column left out of the
// comparison, 0 for none. Rows sharing no populated column score 0.
func RowSimilarity(a, b *models.RowRecord, ignore int) float64 {
	if a == nil || b == nil {
		return 0
	}
	compared, equal := 0, 0
	for _, c := range a.NonEmpty {
		if c+1 == ignore || c >= len(b.Keys) || b.Keys[c] == "" {
			continue
		}
		compared++
		if a.Keys[c] == b.Keys[c] {
			equal++
		}
	}
	if compared == 0 {
		return 0
	}
	return float64(equal) / float64(compared)
}
