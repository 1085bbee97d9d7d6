package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// PageRankResult holds the PageRank seed and how the iteration ended.
type PageRankResult struct {
	Ordering   Ordering
	Scores     []float64 // stationary value per matrix index
	Iterations int
	Converged  bool
}

// PageRank orders competitors by a damped random walk over the outcome
// graph. Each competitor hands its rank mass to the competitors that beat
// it, in proportion to the evidence: column j of W is normalized to sum to
// one, and competitors with no losses keep their column at zero. Starting
// from the uniform vector, it iterates
//
//	v ← d·M·v + (1−d)/n
//
// until the L1 change drops below the tolerance or the iteration cap is
// hit. Competitors are ordered by descending value; ties keep matrix order.
// The result is deterministic for a given matrix and options.
func PageRank(m *outcome.Matrix, opts PageRankOptions) PageRankResult {
	n := m.Len()
	if n == 0 {
		return PageRankResult{Ordering: Ordering{}, Converged: true}
	}

	colSums := make([]float64, n)
	for i := range n {
		for j := range n {
			colSums[j] += m.At(i, j)
		}
	}

	teleport := (1 - opts.Damping) / float64(n)
	v := make([]float64, n)
	next := make([]float64, n)
	for i := range v {
		v[i] = 1 / float64(n)
	}

	res := PageRankResult{}
	for res.Iterations < opts.MaxIterations {
		res.Iterations++
		diff := 0.0
		for i := range n {
			sum := 0.0
			for j := range n {
				if colSums[j] > 0 {
					sum += m.At(i, j) / colSums[j] * v[j]
				}
			}
			next[i] = opts.Damping*sum + teleport
			diff += math.Abs(next[i] - v[i])
		}
		v, next = next, v
		if diff < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	order := Identity(n)
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(v[b], v[a])
	})
	res.Ordering = order
	res.Scores = v
	return res
}
