package ranking

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

type edge struct {
	winner, loser int
	weight        float64
}

// buildMatrix creates a matrix over competitors c0..c{n-1}.
func buildMatrix(t testing.TB, n int, edges ...edge) *outcome.Matrix {
	t.Helper()
	comps := make([]outcome.Competitor, n)
	for i := range comps {
		comps[i] = outcome.Competitor{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Competitor %d", i)}
	}
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
	}
	for _, e := range edges {
		w[e.winner][e.loser] += e.weight
	}
	m, err := outcome.NewMatrix(comps, w)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

// randomMatrix fills roughly half the off-diagonal cells with weights drawn
// from the values resolution actually produces.
func randomMatrix(t testing.TB, n int, rng *rand.Rand) *outcome.Matrix {
	t.Helper()
	values := []float64{0.5, 1, 1.1, 1.5, 2, 3.2}
	var edges []edge
	for i := range n {
		for j := range n {
			if i != j && rng.IntN(2) == 0 {
				edges = append(edges, edge{i, j, values[rng.IntN(len(values))]})
			}
		}
	}
	return buildMatrix(t, n, edges...)
}

// chain is A>B>C with a weaker common-opponent edge A>C.
func chain(t testing.TB) *outcome.Matrix {
	return buildMatrix(t, 3, edge{0, 1, 1}, edge{1, 2, 1}, edge{0, 2, 0.5})
}

// cycle is A>B>C>A.
func cycle(t testing.TB) *outcome.Matrix {
	return buildMatrix(t, 3, edge{0, 1, 1}, edge{1, 2, 1}, edge{2, 0, 1})
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		m     *outcome.Matrix
		order Ordering
		want  float64
	}{
		{"chain in order", chain(t), Ordering{0, 1, 2}, 0},
		{"chain reversed", chain(t), Ordering{2, 1, 0}, 2.5},
		{"chain one swap", chain(t), Ordering{1, 0, 2}, 1},
		{"cycle rotation", cycle(t), Ordering{0, 1, 2}, 1},
		{"cycle against", cycle(t), Ordering{0, 2, 1}, 2},
		{"no evidence", buildMatrix(t, 4), Ordering{3, 1, 0, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewScorer(tt.m).Score(tt.order); got != tt.want {
				t.Errorf("Score(%v) = %v, want %v", tt.order, got, tt.want)
			}
		})
	}
}

func TestSwapDeltaMatchesRescore(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 40 {
		n := 2 + rng.IntN(11)
		m := randomMatrix(t, n, rng)
		s := NewScorer(m)
		order := RandomOrdering(n, rng)
		base := s.Score(order)

		for i := range n {
			for j := range n {
				delta := s.SwapDelta(order, i, j)
				swapped := order.Clone()
				swapped.Swap(i, j)
				if want := s.Score(swapped) - base; !approx(delta, want) {
					t.Fatalf("trial %d: SwapDelta(%v, %d, %d) = %v, want %v", trial, order, i, j, delta, want)
				}
			}
		}
	}
}

func TestSwapDeltaSamePosition(t *testing.T) {
	if d := NewScorer(cycle(t)).SwapDelta(Ordering{0, 1, 2}, 1, 1); d != 0 {
		t.Errorf("SwapDelta(i, i) = %v, want 0", d)
	}
}

func TestAnomaliesSumToScore(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	m := randomMatrix(t, 9, rng)
	s := NewScorer(m)
	order := RandomOrdering(9, rng)

	sum := 0.0
	anomalies := s.Anomalies(order)
	for k, a := range anomalies {
		sum += a.Weight
		if a.HigherRank >= a.LowerRank {
			t.Errorf("anomaly %d: higher rank %d not above lower rank %d", k, a.HigherRank, a.LowerRank)
		}
		if k > 0 && anomalies[k-1].Weight < a.Weight {
			t.Errorf("anomalies not sorted by weight at %d", k)
		}
	}
	if !approx(sum, s.Score(order)) {
		t.Errorf("anomaly weights sum to %v, Score is %v", sum, s.Score(order))
	}
}

func TestOrderingValidate(t *testing.T) {
	tests := []struct {
		name  string
		order Ordering
		ok    bool
	}{
		{"identity", Identity(4), true},
		{"permutation", Ordering{2, 0, 3, 1}, true},
		{"short", Ordering{0, 1, 2}, false},
		{"duplicate", Ordering{0, 1, 1, 3}, false},
		{"out of range", Ordering{0, 1, 2, 4}, false},
		{"negative", Ordering{0, -1, 2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate(4)
			if (err == nil) != tt.ok {
				t.Errorf("Validate(%v) = %v, want ok=%v", tt.order, err, tt.ok)
			}
		})
	}
}

func TestOrderingFromIDs(t *testing.T) {
	m := chain(t)
	o, err := OrderingFromIDs(m, []string{"c2", "c0", "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(o) != "[2 0 1]" {
		t.Errorf("OrderingFromIDs = %v", o)
	}
	if got := o.IDs(m); fmt.Sprint(got) != "[c2 c0 c1]" {
		t.Errorf("IDs = %v", got)
	}
	if _, err := OrderingFromIDs(m, []string{"c0", "c1"}); err == nil {
		t.Error("incomplete ordering should fail")
	}
	if _, err := OrderingFromIDs(m, []string{"c0", "c1", "zz"}); err == nil {
		t.Error("unknown id should fail")
	}
}

func TestRandomOrderingIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := range 20 {
		if err := RandomOrdering(n, rng).Validate(n); err != nil {
			t.Errorf("n=%d: %v", n, err)
		}
	}
}
