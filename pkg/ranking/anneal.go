package ranking

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// ctxCheckInterval is how many moves pass between cancellation checks.
const ctxCheckInterval = 1024

// AnnealResult is the outcome of one annealing run.
type AnnealResult struct {
	Ordering     Ordering
	Score        float64
	InitialScore float64
	Iterations   int
	Accepted     int
	Improved     int
	FinalTemp    float64
	Duration     time.Duration
}

// annealState is the private working set of one run. Nothing in it is shared
// with other runs.
type annealState struct {
	scorer Scorer
	rng    *rand.Rand

	current      Ordering
	currentScore float64
	best         Ordering
	bestScore    float64

	temperature float64
	iterations  int
	accepted    int
	improved    int
}

func newAnnealState(scorer Scorer, seed Ordering, rng *rand.Rand, temp float64) *annealState {
	score := scorer.Score(seed)
	return &annealState{
		scorer:       scorer,
		rng:          rng,
		current:      seed.Clone(),
		currentScore: score,
		best:         seed.Clone(),
		bestScore:    score,
		temperature:  temp,
	}
}

// step proposes one random transposition and applies the Metropolis rule:
// improvements and neutral moves are always taken, worsening moves with
// probability exp(−delta/T).
func (s *annealState) step() {
	n := len(s.current)
	i := s.rng.IntN(n)
	j := s.rng.IntN(n - 1)
	if j >= i {
		j++
	}
	delta := s.scorer.SwapDelta(s.current, i, j)
	if delta <= scoreEpsilon || s.rng.Float64() < math.Exp(-delta/s.temperature) {
		s.current.Swap(i, j)
		s.currentScore += delta
		s.accepted++
		if s.currentScore < s.bestScore-scoreEpsilon {
			copy(s.best, s.current)
			s.bestScore = s.currentScore
			s.improved++
		}
	}
	s.iterations++
}

// Anneal runs simulated annealing from seed and returns the best ordering
// encountered. The seed is not modified.
//
// Each move swaps two distinct random positions, scored with
// [Scorer.SwapDelta]. The temperature starts at opts.InitialTemperature and
// is multiplied by opts.CoolingRate after every move; the run ends when it
// reaches opts.MinTemperature, after opts.MaxIterations moves, or when ctx
// is cancelled. Identical inputs and rngSeed give identical results.
//
// The returned score is recomputed from scratch so accumulated rounding in
// the running total never leaks out.
func Anneal(ctx context.Context, scorer Scorer, seed Ordering, opts AnnealOptions, rngSeed uint64) (AnnealResult, error) {
	start := time.Now()
	s := newAnnealState(scorer, seed, newRNG(rngSeed), opts.InitialTemperature)
	initial := s.currentScore

	if len(seed) >= 2 {
		for s.temperature > opts.MinTemperature && s.iterations < opts.MaxIterations {
			if s.iterations%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return AnnealResult{}, err
				}
			}
			s.step()
			s.temperature *= opts.CoolingRate
		}
	}

	return AnnealResult{
		Ordering:     s.best,
		Score:        scorer.Score(s.best),
		InitialScore: initial,
		Iterations:   s.iterations,
		Accepted:     s.accepted,
		Improved:     s.improved,
		FinalTemp:    s.temperature,
		Duration:     time.Since(start),
	}, nil
}
