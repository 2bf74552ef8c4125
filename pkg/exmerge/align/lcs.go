// Package align matches columns and rows across the base, ours and theirs
// versions of a worksheet.
package align

import "sort"

// lcsTableLimit caps the size of the LCS length table. Larger inputs use
// the linear-space Myers matching instead.
const lcsTableLimit = 1 << 20

// LCS returns the index pairs of a longest common subsequence of a and b,
// in increasing order on both sides. Ties prefer earlier elements of a
// whenever n*m fits lcsTableLimit.
func LCS(a, b []string) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}
	if n*m > lcsTableLimit {
		return myersMatches(a, b)
	}
	// dp[i][j] is the LCS length of a[i:] and b[j:].
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				dp[i][j] = dp[i+1][j+1] + 1
			case dp[i+1][j] >= dp[i][j+1]:
				dp[i][j] = dp[i+1][j]
			default:
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	pairs := make([][2]int, 0, dp[0][0])
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}

// Interleave merges two sequences into one, fusing the elements of an LCS.
// Each entry holds an index into a and an index into b, -1 for absent.
// Unmatched elements of a come before unmatched elements of b.
func Interleave(a, b []string) [][2]int {
	pairs := LCS(a, b)
	out := make([][2]int, 0, len(a)+len(b)-len(pairs))
	i, j := 0, 0
	flush := func(toA, toB int) {
		for ; i < toA; i++ {
			out = append(out, [2]int{i, -1})
		}
		for ; j < toB; j++ {
			out = append(out, [2]int{-1, j})
		}
	}
	for _, p := range pairs {
		flush(p[0], p[1])
		out = append(out, p)
		i, j = p[0]+1, p[1]+1
	}
	flush(len(a), len(b))
	return out
}

// LongestIncreasing returns the pairs forming a longest subsequence that is
// strictly increasing in both components. Input must be sorted by the first
// component. Patience sorting with back-links.
func LongestIncreasing(pairs [][2]int) [][2]int {
	if len(pairs) == 0 {
		return nil
	}
	tails := make([]int, 0, len(pairs))
	prev := make([]int, len(pairs))
	for i, p := range pairs {
		k := sort.Search(len(tails), func(k int) bool {
			return pairs[tails[k]][1] >= p[1]
		})
		if k > 0 {
			prev[i] = tails[k-1]
		} else {
			prev[i] = -1
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}

	out := make([][2]int, len(tails))
	for k, i := len(tails)-1, tails[len(tails)-1]; k >= 0; k, i = k-1, prev[i] {
		out[k] = pairs[i]
	}
	return out
}
