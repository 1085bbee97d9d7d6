package ranking

import (
	"slices"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// GreedyMFAS builds a seed ordering with the greedy feedback-arc-set
// heuristic.
//
// Competitors are peeled off the remaining graph one at a time. A competitor
// with no remaining wins (a sink) goes to the bottom block; one with no
// remaining losses (a source) goes to the top block; otherwise the
// competitor whose remaining (out − in) weight is largest goes to the top
// block. The bottom block is collected in removal order, so it is reversed
// before being appended: the first sink removed ranks last, and the first
// competitor removed into the top block ranks first. Ties go to the lowest
// matrix index, which keeps the result deterministic.
//
// The bottom block exists only because sinks are peeled; a peel by largest
// (out − in) alone would fill the top block with every competitor.
//
// Weights are maintained incrementally, so the whole peel is O(N²).
func GreedyMFAS(m *outcome.Matrix) Ordering {
	n := m.Len()
	out := make([]float64, n)
	in := make([]float64, n)
	for i := range n {
		for j := range n {
			w := m.At(i, j)
			out[i] += w
			in[j] += w
		}
	}

	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}
	remove := func(r int) {
		remaining[r] = false
		for k := range n {
			if remaining[k] {
				out[k] -= m.At(k, r)
				in[k] -= m.At(r, k)
			}
		}
	}

	top := make(Ordering, 0, n)
	var bottom Ordering
	for left := n; left > 0; left-- {
		if s := firstWhere(remaining, func(i int) bool { return out[i] <= scoreEpsilon }); s >= 0 {
			bottom = append(bottom, s)
			remove(s)
			continue
		}
		if s := firstWhere(remaining, func(i int) bool { return in[i] <= scoreEpsilon }); s >= 0 {
			top = append(top, s)
			remove(s)
			continue
		}
		best := -1
		for i := range n {
			if remaining[i] && (best < 0 || out[i]-in[i] > out[best]-in[best]+scoreEpsilon) {
				best = i
			}
		}
		top = append(top, best)
		remove(best)
	}

	slices.Reverse(bottom)
	return append(top, bottom...)
}

func firstWhere(remaining []bool, pred func(int) bool) int {
	for i, ok := range remaining {
		if ok && pred(i) {
			return i
		}
	}
	return -1
}
