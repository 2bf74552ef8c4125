package align

// EditOp is one step of an edit script.
type EditOp int

const (
	// OpEqual keeps a[A] matched to b[B].
	OpEqual EditOp = iota
	// OpDelete removes a[A].
	OpDelete
	// OpInsert adds b[B].
	OpInsert
)

// Edit is one step of an edit script. A or B is -1 when not applicable.
type Edit struct {
	Op EditOp
	A  int
	B  int
}

// Myers computes a shortest edit script from a to b with the linear-space
// variant of Myers' O(ND) algorithm. Tokens that never occur on the other
// side are set aside first since they can only be deleted or inserted.
// Memory stays O(N+M) for any input.
func Myers(a, b []string) []Edit {
	pairs := myersMatches(a, b)
	edits := make([]Edit, 0, len(a)+len(b)-len(pairs))
	i, j := 0, 0
	flush := func(toA, toB int) {
		for ; i < toA; i++ {
			edits = append(edits, Edit{Op: OpDelete, A: i, B: -1})
		}
		for ; j < toB; j++ {
			edits = append(edits, Edit{Op: OpInsert, A: -1, B: j})
		}
	}
	for _, p := range pairs {
		flush(p[0], p[1])
		edits = append(edits, Edit{Op: OpEqual, A: p[0], B: p[1]})
		i, j = p[0]+1, p[1]+1
	}
	flush(len(a), len(b))
	return edits
}

// myersMatches returns the index pairs of a longest common subsequence of
// a and b, increasing on both sides.
func myersMatches(a, b []string) [][2]int {
	inA := make(map[string]bool, len(a))
	for _, t := range a {
		inA[t] = true
	}
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	var fa, fb []string
	var ia, ib []int
	for i, t := range a {
		if inB[t] {
			fa = append(fa, t)
			ia = append(ia, i)
		}
	}
	for j, t := range b {
		if inA[t] {
			fb = append(fb, t)
			ib = append(ib, j)
		}
	}
	if len(fa) == 0 || len(fb) == 0 {
		return nil
	}

	size := 2*((len(fa)+len(fb)+1)/2) + 3
	s := &snakeSearch{a: fa, b: fb, vf: make([]int, size), vb: make([]int, size)}
	s.compare(0, len(fa), 0, len(fb))

	for k, p := range s.pairs {
		s.pairs[k] = [2]int{ia[p[0]], ib[p[1]]}
	}
	return s.pairs
}

type snakeSearch struct {
	a, b   []string
	vf, vb []int
	pairs  [][2]int
}

// compare appends the matches of a[aLo:aHi] against b[bLo:bHi] in order.
func (s *snakeSearch) compare(aLo, aHi, bLo, bHi int) {
	for aLo < aHi && bLo < bHi && s.a[aLo] == s.b[bLo] {
		s.pairs = append(s.pairs, [2]int{aLo, bLo})
		aLo++
		bLo++
	}
	endA := aHi
	for aLo < aHi && bLo < bHi && s.a[aHi-1] == s.b[bHi-1] {
		aHi--
		bHi--
	}
	suffix := [2]int{aHi, bHi}

	if aLo < aHi && bLo < bHi {
		x, y, u, v := s.middleSnake(aLo, aHi, bLo, bHi)
		s.compare(aLo, x, bLo, y)
		for ; x < u; x, y = x+1, y+1 {
			s.pairs = append(s.pairs, [2]int{x, y})
		}
		s.compare(u, aHi, v, bHi)
	}

	for i, j := suffix[0], suffix[1]; i < endA; i, j = i+1, j+1 {
		s.pairs = append(s.pairs, [2]int{i, j})
	}
}

// middleSnake finds the snake (x,y)-(u,v) in the middle of a shortest edit
// path between a[aLo:aHi] and b[bLo:bHi]. Both ranges are non-empty and
// share neither first nor last element, so the edit distance is at least
// two and the snake splits the problem into two strictly smaller ones.
func (s *snakeSearch) middleSnake(aLo, aHi, bLo, bHi int) (x, y, u, v int) {
	n, m := aHi-aLo, bHi-bLo
	delta := n - m
	odd := delta&1 != 0
	limit := (n + m + 1) / 2
	off := limit + 1
	vf, vb := s.vf, s.vb
	vf[off+1], vb[off+1] = 0, 0

	for d := 0; d <= limit; d++ {
		for k := -d; k <= d; k += 2 {
			var fx int
			if k == -d || (k != d && vf[off+k-1] < vf[off+k+1]) {
				fx = vf[off+k+1]
			} else {
				fx = vf[off+k-1] + 1
			}
			fy := fx - k
			sx := fx
			for fx < n && fy < m && s.a[aLo+fx] == s.b[bLo+fy] {
				fx++
				fy++
			}
			vf[off+k] = fx
			if rk := delta - k; odd && rk >= -(d-1) && rk <= d-1 && fx+vb[off+rk] >= n {
				return aLo + sx, bLo + sx - k, aLo + fx, bLo + fy
			}
		}

		for k := -d; k <= d; k += 2 {
			var rx int
			if k == -d || (k != d && vb[off+k-1] < vb[off+k+1]) {
				rx = vb[off+k+1]
			} else {
				rx = vb[off+k-1] + 1
			}
			ry := rx - k
			sx, sy := rx, ry
			for rx < n && ry < m && s.a[aHi-rx-1] == s.b[bHi-ry-1] {
				rx++
				ry++
			}
			vb[off+k] = rx
			if fk := delta - k; !odd && fk >= -d && fk <= d && rx+vf[off+fk] >= n {
				return aHi - rx, bHi - ry, aHi - sx, bHi - sy
			}
		}
	}
	// Unreachable: the paths always meet by round limit.
	return aLo, bLo, aLo, bLo
}
