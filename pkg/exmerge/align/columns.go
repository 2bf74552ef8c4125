package align

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// Column signature and matching parameters.
const (
	// SampleRows is how many data rows feed a column sample.
	SampleRows = 20
	// SampleValues caps the distinct values kept per sample.
	SampleValues = 12
	// MinColumnSim is the lowest score accepted as a column match.
	MinColumnSim = 0.55
	// MinHeaderSim is the lowest header similarity for two titled columns to match.
	MinHeaderSim = 0.8

	headerWeight  = 0.6
	blankHeaderWt = 0.2
	typeWeight    = 0.2
	sampleWeight  = 0.2
)

// BuildColumns computes a ColumnRecord for every physical column of g that
// has a header or holds data in any data row.
func BuildColumns(g models.Grid, headerRows int) []models.ColumnRecord {
	var records []models.ColumnRecord
	width := g.Cols()
	for col := 1; col <= width; col++ {
		rec := models.ColumnRecord{Physical: col}

		var parts []string
		for row := 1; row <= headerRows; row++ {
			if k := normalize.Key(g.At(row, col)); k != "" {
				parts = append(parts, strings.ToLower(k))
			}
		}
		rec.HeaderText = strings.Join(parts, " ")
		rec.HeaderKey = normalize.HeaderKey(rec.HeaderText)

		seen := make(map[string]bool)
		hasData := false
		for row := headerRows + 1; row <= g.Rows(); row++ {
			v := g.At(row, col)
			k := normalize.Key(v)
			if k != "" {
				hasData = true
			}
			if row > headerRows+SampleRows {
				if hasData {
					break
				}
				continue
			}
			classify(&rec.Types, v, k)
			lk := strings.ToLower(k)
			if k != "" && !seen[lk] && len(rec.Samples) < SampleValues {
				seen[lk] = true
				rec.Samples = append(rec.Samples, lk)
			}
		}

		if rec.HeaderText == "" && !hasData {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func classify(t *models.TypeSignature, v models.Scalar, key string) {
	switch {
	case key == "":
		t.Empty++
	case v.Kind == models.KindNumber || normalize.IsNumeric(key):
		t.Numeric++
	case isOtherText(key):
		t.Other++
	default:
		t.Text++
	}
}

// isOtherText matches booleans and ISO dates.
func isOtherText(s string) bool {
	if _, err := strconv.ParseBool(s); err == nil {
		return true
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	if _, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return true
	}
	return false
}

// ColumnSimilarity scores two columns in [0, 1]. ok is false when both
// headers are present but too far apart to be the same column.
func ColumnSimilarity(a, b models.ColumnRecord) (score float64, ok bool) {
	var hs, hw float64
	switch {
	case a.HeaderText != "" && b.HeaderText != "":
		hs = TextSimilarity(a.HeaderText, b.HeaderText)
		hw = headerWeight
		if hs < MinHeaderSim {
			return 0, false
		}
	case a.HeaderText == "" && b.HeaderText == "":
		hs, hw = 1, blankHeaderWt
	default:
		hs, hw = 0, blankHeaderWt
	}
	ts := TypeSimilarity(a.Types, b.Types)
	ss := Jaccard(a.Samples, b.Samples)
	score = (hs*hw + ts*typeWeight + ss*sampleWeight) / (hw + typeWeight + sampleWeight)
	return score, score >= MinColumnSim
}

// Columns aligns the column lists of the three sides. The reference list is
// base, falling back to ours and then theirs when a side has no columns.
func Columns(base, ours, theirs []models.ColumnRecord) []models.AlignedColumn {
	sides := [3][]models.ColumnRecord{base, ours, theirs}
	ref := 0
	for ref < 2 && len(sides[ref]) == 0 {
		ref++
	}
	others := make([]int, 0, 2)
	for s := 0; s < 3; s++ {
		if s != ref {
			others = append(others, s)
		}
	}

	matchOf := make(map[int][]int, 2)
	gaps := make(map[int]map[int][]int, 2)
	for _, s := range others {
		m := matchColumns(sides[ref], sides[s])
		matchOf[s] = m
		gaps[s] = columnGaps(m, len(sides[s]))
	}

	set := func(ac *models.AlignedColumn, side, physical int) {
		switch side {
		case 0:
			ac.Base = physical
		case 1:
			ac.Ours = physical
		default:
			ac.Theirs = physical
		}
	}

	var out []models.AlignedColumn
	emitGaps := func(slot int) {
		a, b := others[0], others[1]
		ga, gb := gaps[a][slot], gaps[b][slot]
		ta := gapTokens(sides[a], ga, "a")
		tb := gapTokens(sides[b], gb, "b")
		for _, p := range Interleave(ta, tb) {
			var ac models.AlignedColumn
			if p[0] >= 0 {
				set(&ac, a, sides[a][ga[p[0]]].Physical)
			}
			if p[1] >= 0 {
				set(&ac, b, sides[b][gb[p[1]]].Physical)
			}
			out = append(out, ac)
		}
	}

	emitGaps(-1)
	for i, rc := range sides[ref] {
		var ac models.AlignedColumn
		set(&ac, ref, rc.Physical)
		for _, s := range others {
			if j := matchOf[s][i]; j >= 0 {
				set(&ac, s, sides[s][j].Physical)
			}
		}
		out = append(out, ac)
		emitGaps(i)
	}
	return out
}

// columnGaps groups unmatched side columns by the reference column they
// follow: the reference partner of the nearest lower matched side column,
// or -1 when there is none.
func columnGaps(match []int, n int) map[int][]int {
	refOf := make([]int, n)
	for j := range refOf {
		refOf[j] = -1
	}
	for i, j := range match {
		if j >= 0 {
			refOf[j] = i
		}
	}
	gaps := make(map[int][]int)
	slot := -1
	for j := 0; j < n; j++ {
		if refOf[j] >= 0 {
			slot = refOf[j]
			continue
		}
		gaps[slot] = append(gaps[slot], j)
	}
	return gaps
}

func gapTokens(cols []models.ColumnRecord, idx []int, tag string) []string {
	tokens := make([]string, len(idx))
	for k, j := range idx {
		tokens[k] = columnToken(cols[j], tag, j)
	}
	return tokens
}

// columnToken is the header key, or a placeholder unique to the column so
// blank headers never match each other exactly.
func columnToken(c models.ColumnRecord, tag string, idx int) string {
	if c.HeaderKey != "" {
		return c.HeaderKey
	}
	return "\x00" + tag + strconv.Itoa(idx)
}

// matchColumns maps each reference column to a side column index or -1.
// Exact header-key matches along an LCS are anchors; the segments between
// anchors are matched greedily by similarity.
func matchColumns(ref, side []models.ColumnRecord) []int {
	match := make([]int, len(ref))
	for i := range match {
		match[i] = -1
	}
	if len(side) == 0 {
		return match
	}

	rt := make([]string, len(ref))
	for i, c := range ref {
		rt[i] = columnToken(c, "r", i)
	}
	st := make([]string, len(side))
	for j, c := range side {
		st[j] = columnToken(c, "s", j)
	}

	anchors := LCS(rt, st)
	used := make([]bool, len(side))
	for _, p := range anchors {
		match[p[0]] = p[1]
		used[p[1]] = true
	}

	// Moved columns keep their header: match remaining equal keys in order
	// even when they cross an anchor.
	for i := range ref {
		if match[i] >= 0 || ref[i].HeaderKey == "" {
			continue
		}
		for j := range side {
			if !used[j] && side[j].HeaderKey == ref[i].HeaderKey {
				match[i] = j
				used[j] = true
				break
			}
		}
	}

	prevR, prevS := -1, -1
	for k := 0; k <= len(anchors); k++ {
		nextR, nextS := len(ref), len(side)
		if k < len(anchors) {
			nextR, nextS = anchors[k][0], anchors[k][1]
		}
		matchSegment(ref, side, prevR+1, nextR, prevS+1, nextS, match, used)
		prevR, prevS = nextR, nextS
	}
	return match
}

type columnPair struct {
	r, s  int
	score float64
}

func matchSegment(ref, side []models.ColumnRecord, r0, r1, s0, s1 int, match []int, used []bool) {
	if r0 >= r1 || s0 >= s1 {
		return
	}
	var pairs []columnPair
	for r := r0; r < r1; r++ {
		if match[r] >= 0 {
			continue
		}
		for s := s0; s < s1; s++ {
			if used[s] {
				continue
			}
			if score, ok := ColumnSimilarity(ref[r], side[s]); ok {
				pairs = append(pairs, columnPair{r, s, score})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})
	for _, p := range pairs {
		if match[p.r] >= 0 || used[p.s] {
			continue
		}
		match[p.r] = p.s
		used[p.s] = true
	}
}
