package ranking

import (
	"cmp"
	"slices"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// scoreEpsilon absorbs floating-point noise when comparing scores and deltas.
// Matrix weights are sums of small multiples of the evidence weights, so any
// real improvement is many orders of magnitude larger.
const scoreEpsilon = 1e-9

// Scorer evaluates orderings against an outcome matrix. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	m *outcome.Matrix
}

// NewScorer creates a Scorer for m.
func NewScorer(m *outcome.Matrix) Scorer {
	return Scorer{m: m}
}

// Matrix returns the matrix being scored against.
func (s Scorer) Matrix() *outcome.Matrix { return s.m }

// Score returns the total anomaly weight of order: for every pair where
// order[i] is ranked ahead of order[j], the weight of order[j] having beaten
// order[i]. It runs in O(N²) and is the reference every incremental
// computation is checked against.
func (s Scorer) Score(order Ordering) float64 {
	total := 0.0
	for i := 0; i < len(order); i++ {
		hi := order[i]
		for j := i + 1; j < len(order); j++ {
			total += s.m.At(order[j], hi)
		}
	}
	return total
}

// SwapDelta returns the exact change in [Scorer.Score] caused by swapping the
// competitors at positions i and j, in O(|j−i|).
//
// Let a = order[i] and b = order[j] with i < j. Competitors outside [i, j]
// keep their order relative to both a and b. For each competitor k strictly
// between them, the pair (a, k) flips to (k, a) and the pair (k, b) flips to
// (b, k); the pair (a, b) itself flips to (b, a).
func (s Scorer) SwapDelta(order Ordering, i, j int) float64 {
	if i == j {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	a, b := order[i], order[j]

	delta := s.m.At(a, b) - s.m.At(b, a)
	for p := i + 1; p < j; p++ {
		k := order[p]
		delta += s.m.At(k, b) + s.m.At(a, k) - s.m.At(k, a) - s.m.At(b, k)
	}
	return delta
}

// Anomaly is a pair ranked against the evidence: Lower holds Weight of
// evidence over Higher but is ranked below it.
type Anomaly struct {
	Higher     int     `json:"higher"`      // matrix index of the higher-ranked competitor
	Lower      int     `json:"lower"`       // matrix index of the lower-ranked competitor
	HigherRank int     `json:"higher_rank"` // 1-based
	LowerRank  int     `json:"lower_rank"`  // 1-based
	Weight     float64 `json:"weight"`
}

// Anomalies lists every backward pair in order, heaviest first. The weights
// sum to Score(order).
func (s Scorer) Anomalies(order Ordering) []Anomaly {
	var out []Anomaly
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if w := s.m.At(order[j], order[i]); w > 0 {
				out = append(out, Anomaly{
					Higher:     order[i],
					Lower:      order[j],
					HigherRank: i + 1,
					LowerRank:  j + 1,
					Weight:     w,
				})
			}
		}
	}
	slices.SortStableFunc(out, func(x, y Anomaly) int {
		return cmp.Compare(y.Weight, x.Weight)
	})
	return out
}
