package align

import "github.com/ukaji3/exmerge-go/pkg/exmerge/models"

// matchByKey pairs side rows with reference rows sharing a primary key.
// Rows without a key are always ambiguous.
func matchByKey(ref, side []models.RowRecord, keyCol int, p Params) *sideMatch {
	m := newSideMatch(len(ref), len(side))

	sideGroups := make(map[string][]int)
	for j := range side {
		if !side[j].HasKey {
			m.sideAmbiguous[j] = true
			continue
		}
		sideGroups[side[j].Key] = append(sideGroups[side[j].Key], j)
	}

	refGroups := make(map[string][]int)
	var order []string
	for i := range ref {
		if !ref[i].HasKey {
			m.refAmbiguous[i] = true
			continue
		}
		k := ref[i].Key
		if _, ok := refGroups[k]; !ok {
			order = append(order, k)
		}
		refGroups[k] = append(refGroups[k], i)
	}

	var orphans []int
	for _, k := range order {
		rl, sl := refGroups[k], sideGroups[k]
		switch {
		case len(sl) == 0:
			orphans = append(orphans, rl...)
		case len(sl) == len(rl):
			for n := range rl {
				m.link(rl[n], sl[n])
			}
		default:
			matchDuplicates(ref, side, rl, sl, keyCol, p, m)
		}
	}

	// A reference key missing from the side may have been edited: look for
	// the row among all unmatched keyed side rows.
	for _, i := range orphans {
		var cands []int
		for j := range side {
			if !m.used[j] && side[j].HasKey {
				cands = append(cands, j)
			}
		}
		best, score, second := bestCandidate(&ref[i], side, cands, keyCol)
		if best < 0 || score < p.Threshold {
			continue
		}
		if second >= 0 && score-second < p.RekeyMargin {
			m.refAmbiguous[i] = true
			continue
		}
		m.link(i, best)
	}
	return m
}

// matchDuplicates resolves a key group whose sizes differ between the
// reference and the side. Exact copies are taken first in occurrence order;
// the rest go to the most similar candidate when it is confident.
func matchDuplicates(ref, side []models.RowRecord, rl, sl []int, keyCol int, p Params, m *sideMatch) {
	var pending []int
	for _, i := range rl {
		found := false
		for _, j := range sl {
			if !m.used[j] && RowSimilarity(&ref[i], &side[j], keyCol) == 1 && sameShape(&ref[i], &side[j]) {
				m.link(i, j)
				found = true
				break
			}
		}
		if !found {
			pending = append(pending, i)
		}
	}

	for _, i := range pending {
		var cands []int
		for _, j := range sl {
			if !m.used[j] {
				cands = append(cands, j)
			}
		}
		if len(cands) == 0 {
			return
		}
		best, score, second := bestCandidate(&ref[i], side, cands, keyCol)
		if score >= p.Threshold && (second < 0 || score-second >= p.KeyMargin) {
			m.link(i, best)
			continue
		}
		m.refAmbiguous[i] = true
		for _, j := range cands {
			m.sideAmbiguous[j] = true
		}
	}
}

// bestCandidate returns the most similar candidate (lowest index on ties),
// its score and the runner-up score, -1 when there is no runner-up.
func bestCandidate(r *models.RowRecord, side []models.RowRecord, cands []int, ignore int) (best int, score, second float64) {
	best, score, second = -1, -1, -1
	for _, j := range cands {
		s := RowSimilarity(r, &side[j], ignore)
		switch {
		case s > score:
			second = score
			best, score = j, s
		case s > second:
			second = s
		}
	}
	if best < 0 {
		return -1, 0, -1
	}
	return best, score, second
}

// sameShape reports whether two rows populate the same columns.
func sameShape(a, b *models.RowRecord) bool {
	if len(a.NonEmpty) != len(b.NonEmpty) {
		return false
	}
	for k := range a.NonEmpty {
		if a.NonEmpty[k] != b.NonEmpty[k] {
			return false
		}
	}
	return true
}
