package align

import (
	"math"
	"sort"
	"strconv"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// matchBySequence pairs side rows with reference rows using a Myers diff of
// the row tokens, then recovers moved and edited rows among the leftover
// deletes and inserts.
func matchBySequence(ref, side []models.RowRecord, mask []bool, p Params) *sideMatch {
	rt := uniqueBlanks(Tokens(ref, mask), "r")
	st := uniqueBlanks(Tokens(side, mask), "s")
	m := newSideMatch(len(ref), len(side))

	var dels, ins []int
	var known pairList
	for _, e := range Myers(rt, st) {
		switch e.Op {
		case OpEqual:
			m.link(e.A, e.B)
			known = append(known, [2]int{e.A, e.B})
		case OpDelete:
			dels = append(dels, e.A)
		case OpInsert:
			ins = append(ins, e.B)
		}
	}
	if len(dels) == 0 || len(ins) == 0 {
		return m
	}

	// Moved rows: identical tokens, nearest the expected position wins.
	byToken := make(map[string][]int)
	for _, j := range ins {
		byToken[st[j]] = append(byToken[st[j]], j)
	}
	var rest []int
	for _, i := range dels {
		cands := byToken[rt[i]]
		best := -1
		bestDist := math.Inf(1)
		e := known.expect(i)
		for _, j := range cands {
			if m.used[j] {
				continue
			}
			if d := math.Abs(float64(j) - e); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 {
			rest = append(rest, i)
			continue
		}
		m.link(i, best)
		known = known.insert(i, best)
	}

	// Edited rows: look around the expected position.
	for _, i := range rest {
		centre := int(math.Round(known.expect(i)))
		var cands []int
		for _, j := range ins {
			if !m.used[j] && j >= centre-p.Window && j <= centre+p.Window {
				cands = append(cands, j)
			}
		}
		if len(cands) == 0 {
			continue
		}
		best, score, second := bestCandidate(&ref[i], side, cands, 0)
		if score >= p.Threshold && (second < 0 || score-second >= p.SequenceMargin) {
			m.link(i, best)
			known = known.insert(i, best)
			continue
		}
		m.refAmbiguous[i] = true
		for _, j := range cands {
			m.sideAmbiguous[j] = true
		}
	}
	return m
}

func uniqueBlanks(tokens []string, tag string) []string {
	for i, t := range tokens {
		if t == "" {
			tokens[i] = "\x00" + tag + strconv.Itoa(i)
		}
	}
	return tokens
}

// pairList holds matched (reference, side) pairs sorted by reference index.
type pairList [][2]int

func (l pairList) insert(r, s int) pairList {
	k := sort.Search(len(l), func(k int) bool { return l[k][0] >= r })
	l = append(l, [2]int{})
	copy(l[k+1:], l[k:])
	l[k] = [2]int{r, s}
	return l
}

// expect estimates the side position of reference row r by linear
// interpolation between the nearest matched pairs around it, or by
// extrapolation with unit slope at the ends.
func (l pairList) expect(r int) float64 {
	k := sort.Search(len(l), func(k int) bool { return l[k][0] >= r })
	hasPrev := k > 0
	hasNext := k < len(l)
	switch {
	case hasPrev && hasNext:
		prev, next := l[k-1], l[k]
		if next[0] == prev[0] {
			return float64(prev[1])
		}
		frac := float64(r-prev[0]) / float64(next[0]-prev[0])
		return float64(prev[1]) + frac*float64(next[1]-prev[1])
	case hasPrev:
		prev := l[k-1]
		return float64(prev[1] + r - prev[0])
	case hasNext:
		next := l[k]
		return float64(next[1] - (next[0] - r))
	default:
		return float64(r)
	}
}
