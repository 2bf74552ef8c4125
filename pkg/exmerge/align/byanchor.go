package align

import "github.com/ukaji3/exmerge-go/pkg/exmerge/models"

// matchByAnchor pairs theirs rows with ours rows when there is no base.
// Rows whose token is unique on both sides anchor the alignment; crossing
// anchors are discarded by a longest increasing subsequence, and the
// ranges between anchors are aligned by sequence with ours as reference.
func matchByAnchor(ours, theirs []models.RowRecord, mask []bool, p Params) *sideMatch {
	ot, tt := Tokens(ours, mask), Tokens(theirs, mask)
	m := newSideMatch(len(ours), len(theirs))

	countO := make(map[string]int, len(ot))
	for _, t := range ot {
		countO[t]++
	}
	countT := make(map[string]int, len(tt))
	posT := make(map[string]int, len(tt))
	for j, t := range tt {
		countT[t]++
		posT[t] = j
	}

	var cands [][2]int
	for i, t := range ot {
		if t != "" && countO[t] == 1 && countT[t] == 1 {
			cands = append(cands, [2]int{i, posT[t]})
		}
	}
	anchors := LongestIncreasing(cands)

	prevO, prevT := -1, -1
	for k := 0; k <= len(anchors); k++ {
		nextO, nextT := len(ours), len(theirs)
		if k < len(anchors) {
			nextO, nextT = anchors[k][0], anchors[k][1]
		}
		o0, t0 := prevO+1, prevT+1
		if o0 < nextO && t0 < nextT {
			sub := matchBySequence(ours[o0:nextO], theirs[t0:nextT], mask, p)
			for i, j := range sub.of {
				if j >= 0 {
					m.link(o0+i, t0+j)
				}
				m.refAmbiguous[o0+i] = sub.refAmbiguous[i]
			}
			for j, amb := range sub.sideAmbiguous {
				m.sideAmbiguous[t0+j] = amb
			}
		}
		if k < len(anchors) {
			m.link(nextO, nextT)
		}
		prevO, prevT = nextO, nextT
	}
	return m
}
