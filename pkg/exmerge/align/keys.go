package align

import (
	"strings"
	"unicode"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// Primary-key detection thresholds.
const (
	// KeyCoverage is the share of rows a key column must fill.
	KeyCoverage = 0.8
	// KeyUniqueness is the share of filled values that must be distinct.
	KeyUniqueness = 0.9
	// RelaxedKeyCoverage applies when no column meets KeyCoverage.
	RelaxedKeyCoverage = 0.6

	hintKeyCoverage = 0.5
)

var keyWords = map[string]bool{
	"id": true, "key": true, "code": true, "no": true, "number": true,
	"sku": true, "uuid": true, "guid": true, "ref": true,
}

var keySuffixes = []string{"番号", "编号", "编码", "コード", "번호", "代码", "代碼"}

// looksLikeKey reports whether a header names an identifier column.
func looksLikeKey(header string) bool {
	words := strings.FieldsFunc(strings.ToLower(header), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if keyWords[w] {
			return true
		}
		for _, s := range keySuffixes {
			if strings.HasSuffix(w, s) {
				return true
			}
		}
	}
	return false
}

type keyStats struct {
	coverage   float64
	uniqueness float64
}

// columnStats returns the worst coverage and uniqueness of an aligned
// column over every side that has rows.
func columnStats(sides [][]models.RowRecord, col int) (keyStats, bool) {
	st := keyStats{coverage: 1, uniqueness: 1}
	found := false
	for _, rows := range sides {
		if len(rows) == 0 {
			continue
		}
		found = true
		seen := make(map[string]bool, len(rows))
		filled := 0
		for i := range rows {
			if col > len(rows[i].Keys) {
				continue
			}
			k := rows[i].Keys[col-1]
			if k == "" {
				continue
			}
			filled++
			seen[k] = true
		}
		cov := float64(filled) / float64(len(rows))
		uniq := 0.0
		if filled > 0 {
			uniq = float64(len(seen)) / float64(filled)
		}
		st.coverage = min(st.coverage, cov)
		st.uniqueness = min(st.uniqueness, uniq)
	}
	return st, found
}

// DetectKeyColumn picks a primary-key column for rows built without one.
// Strict coverage/uniqueness wins (header hints break ties, then the
// leftmost column), then a key-like header with unique values, then the
// relaxed thresholds. It returns 0 when no column qualifies.
func DetectKeyColumn(sides [][]models.RowRecord, headers []string) int {
	enough := false
	for _, rows := range sides {
		if len(rows) >= 2 {
			enough = true
		}
	}
	if !enough {
		return 0
	}

	stats := make([]keyStats, len(headers))
	valid := make([]bool, len(headers))
	for c := range headers {
		stats[c], valid[c] = columnStats(sides, c+1)
	}

	strict := func(c int) bool {
		return valid[c] && stats[c].coverage >= KeyCoverage && stats[c].uniqueness >= KeyUniqueness
	}
	first := 0
	for c := range headers {
		if !strict(c) {
			continue
		}
		if looksLikeKey(headers[c]) {
			return c + 1
		}
		if first == 0 {
			first = c + 1
		}
	}
	if first > 0 {
		return first
	}

	for c := range headers {
		if valid[c] && looksLikeKey(headers[c]) && stats[c].coverage >= hintKeyCoverage && stats[c].uniqueness >= KeyUniqueness {
			return c + 1
		}
	}
	for c := range headers {
		if valid[c] && stats[c].coverage >= RelaxedKeyCoverage && stats[c].uniqueness >= KeyUniqueness {
			return c + 1
		}
	}
	return 0
}
