package align

import (
	"strconv"
	"strings"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// Strategy names a row alignment strategy.
type Strategy string

const (
	// StrategyKey matches rows by primary-key value.
	StrategyKey Strategy = "key"
	// StrategySequence matches rows by a diff of row contents against base.
	StrategySequence Strategy = "sequence"
	// StrategyAnchor matches ours and theirs through unique rows when there is no base.
	StrategyAnchor Strategy = "anchor"
)

// Params holds the row matching thresholds.
type Params struct {
	// Threshold is the minimum similarity for a heuristic match.
	Threshold float64
	// KeyMargin is the lead over the runner-up needed inside a key group.
	KeyMargin float64
	// RekeyMargin is the lead needed to match a row whose key changed.
	RekeyMargin float64
	// Window is the search radius around the expected position.
	Window int
	// SequenceMargin is the lead needed for a windowed sequence match.
	SequenceMargin float64
}

// DefaultParams returns the default row matching thresholds.
func DefaultParams() Params {
	return Params{
		Threshold:      0.7,
		KeyMargin:      0.1,
		RekeyMargin:    0.05,
		Window:         3,
		SequenceMargin: 0.05,
	}
}

const tokenSep = "\x1f"

// BuildRows converts the data rows of one side into aligned-column space.
// Fully empty rows are skipped. keyCol is a 1-based aligned column or 0.
func BuildRows(g models.Grid, cols []models.AlignedColumn, side models.Side, headerRows, keyCol int) []models.RowRecord {
	var rows []models.RowRecord
	for r := headerRows + 1; r <= g.Rows(); r++ {
		rec := models.RowRecord{
			Physical: r,
			Values:   make([]models.Scalar, len(cols)),
			Keys:     make([]string, len(cols)),
		}
		for i, c := range cols {
			p := c.Get(side)
			if p == 0 {
				continue
			}
			v := g.At(r, p)
			rec.Values[i] = v
			rec.Keys[i] = normalize.Key(v)
			if rec.Keys[i] != "" {
				rec.NonEmpty = append(rec.NonEmpty, i)
			}
		}
		if len(rec.NonEmpty) == 0 {
			continue
		}
		if keyCol > 0 && keyCol <= len(cols) {
			rec.Key = rec.Keys[keyCol-1]
			rec.HasKey = rec.Key != ""
		}
		rec.Seq = len(rows)
		rows = append(rows, rec)
	}
	return rows
}

// Mask selects the aligned columns present on both of two sides.
func Mask(cols []models.AlignedColumn, a, b models.Side) []bool {
	mask := make([]bool, len(cols))
	for i, c := range cols {
		mask[i] = c.Get(a) != 0 && c.Get(b) != 0
	}
	return mask
}

// Tokens serializes each row over the masked columns.
func Tokens(rows []models.RowRecord, mask []bool) []string {
	out := make([]string, len(rows))
	var b strings.Builder
	for i := range rows {
		b.Reset()
		empty := true
		for c, k := range rows[i].Keys {
			if c < len(mask) && !mask[c] {
				continue
			}
			if k != "" {
				empty = false
			}
			b.WriteString(k)
			b.WriteString(tokenSep)
		}
		if !empty {
			out[i] = b.String()
		}
	}
	return out
}

// sideMatch records how the rows of one side map onto a reference list.
type sideMatch struct {
	// of maps a reference index to a side index, -1 when unmatched.
	of []int
	// refAmbiguous flags reference rows without a confident partner.
	refAmbiguous []bool
	// sideAmbiguous flags side rows that were competing candidates.
	sideAmbiguous []bool
	// used marks matched side rows.
	used []bool
}

func newSideMatch(nRef, nSide int) *sideMatch {
	m := &sideMatch{
		of:            make([]int, nRef),
		refAmbiguous:  make([]bool, nRef),
		sideAmbiguous: make([]bool, nSide),
		used:          make([]bool, nSide),
	}
	for i := range m.of {
		m.of[i] = -1
	}
	return m
}

func identityMatch(n int) *sideMatch {
	m := newSideMatch(n, n)
	for i := range m.of {
		m.of[i] = i
		m.used[i] = true
	}
	return m
}

func (m *sideMatch) link(r, s int) {
	m.of[r] = s
	m.used[s] = true
}

// Rows aligns the data rows of the three sides. A positive keyCol selects
// key-based alignment; otherwise sequence-based when base has rows and
// anchor-based when it does not.
func Rows(base, ours, theirs []models.RowRecord, cols []models.AlignedColumn, keyCol int, p Params) ([]models.AlignedRow, Strategy) {
	hasBase := len(base) > 0
	switch {
	case keyCol > 0:
		if hasBase {
			om := matchByKey(base, ours, keyCol, p)
			tm := matchByKey(base, theirs, keyCol, p)
			return assemble(base, true, ours, theirs, om, tm, keyTokens), StrategyKey
		}
		tm := matchByKey(ours, theirs, keyCol, p)
		return assemble(ours, false, ours, theirs, identityMatch(len(ours)), tm, keyTokens), StrategyKey
	case hasBase:
		om := matchBySequence(base, ours, Mask(cols, models.SideBase, models.SideOurs), p)
		tm := matchBySequence(base, theirs, Mask(cols, models.SideBase, models.SideTheirs), p)
		return assemble(base, true, ours, theirs, om, tm, rowTokens(cols)), StrategySequence
	default:
		tm := matchByAnchor(ours, theirs, Mask(cols, models.SideOurs, models.SideTheirs), p)
		return assemble(ours, false, ours, theirs, identityMatch(len(ours)), tm, rowTokens(cols)), StrategyAnchor
	}
}

// gapTokenFunc builds the fusion tokens of ours and theirs gap rows.
type gapTokenFunc func(ours, theirs []models.RowRecord) ([]string, []string)

func keyTokens(ours, theirs []models.RowRecord) ([]string, []string) {
	tok := func(rows []models.RowRecord, tag string) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			if r.HasKey {
				out[i] = r.Key
			} else {
				out[i] = "\x00" + tag + strconv.Itoa(i)
			}
		}
		return out
	}
	return tok(ours, "o"), tok(theirs, "t")
}

func rowTokens(cols []models.AlignedColumn) gapTokenFunc {
	mask := Mask(cols, models.SideOurs, models.SideTheirs)
	return func(ours, theirs []models.RowRecord) ([]string, []string) {
		ot, tt := Tokens(ours, mask), Tokens(theirs, mask)
		for i := range ot {
			if ot[i] == "" {
				ot[i] = "\x00o" + strconv.Itoa(i)
			}
		}
		for i := range tt {
			if tt[i] == "" {
				tt[i] = "\x00t" + strconv.Itoa(i)
			}
		}
		return ot, tt
	}
}

// rowGaps groups unmatched side rows by the reference row they follow.
func rowGaps(m *sideMatch, n int) map[int][]int {
	return columnGaps(m.of, n)
}

// assemble lays out the reference rows in order with each side's unmatched
// rows placed after the reference row matched to their nearest preceding
// side row. Gap rows of ours and theirs in the same slot are fused when
// their tokens match.
func assemble(ref []models.RowRecord, refIsBase bool, ours, theirs []models.RowRecord, om, tm *sideMatch, fuse gapTokenFunc) []models.AlignedRow {
	var og, tg map[int][]int
	if refIsBase {
		og = rowGaps(om, len(ours))
	} else {
		og = map[int][]int{}
	}
	tg = rowGaps(tm, len(theirs))

	out := make([]models.AlignedRow, 0, len(ref)+len(ours)+len(theirs))
	emitGaps := func(slot int) {
		oi, ti := og[slot], tg[slot]
		if len(oi) == 0 && len(ti) == 0 {
			return
		}
		orows := pick(ours, oi)
		trows := pick(theirs, ti)
		ot, tt := fuse(orows, trows)
		for _, p := range Interleave(ot, tt) {
			var ar models.AlignedRow
			if p[0] >= 0 {
				ar.Ours = &ours[oi[p[0]]]
				ar.AmbiguousOurs = om.sideAmbiguous[oi[p[0]]]
			}
			if p[1] >= 0 {
				ar.Theirs = &theirs[ti[p[1]]]
				ar.AmbiguousTheirs = tm.sideAmbiguous[ti[p[1]]]
			}
			ar.Key = rowKey(ar)
			out = append(out, ar)
		}
	}

	emitGaps(-1)
	for i := range ref {
		var ar models.AlignedRow
		if refIsBase {
			ar.Base = &ref[i]
			if j := om.of[i]; j >= 0 {
				ar.Ours = &ours[j]
			}
			ar.AmbiguousOurs = om.refAmbiguous[i]
		} else {
			ar.Ours = &ref[i]
		}
		if j := tm.of[i]; j >= 0 {
			ar.Theirs = &theirs[j]
		}
		ar.AmbiguousTheirs = tm.refAmbiguous[i]
		ar.Key = rowKey(ar)
		out = append(out, ar)
		emitGaps(i)
	}
	return out
}

func pick(rows []models.RowRecord, idx []int) []models.RowRecord {
	out := make([]models.RowRecord, len(idx))
	for k, i := range idx {
		out[k] = rows[i]
	}
	return out
}

func rowKey(ar models.AlignedRow) string {
	for _, r := range []*models.RowRecord{ar.Base, ar.Ours, ar.Theirs} {
		if r != nil && r.HasKey {
			return r.Key
		}
	}
	return ""
}
