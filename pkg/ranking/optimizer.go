package ranking

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// annealFunc is the signature of [Anneal]; tests swap it to inject failures.
type annealFunc func(ctx context.Context, scorer Scorer, seed Ordering, opts AnnealOptions, rngSeed uint64) (AnnealResult, error)

// Optimizer runs the full ranking pipeline. It is safe for concurrent use;
// each call to Optimize owns all of its working state.
type Optimizer struct {
	opts   Options
	Logger *log.Logger

	anneal annealFunc
}

// NewOptimizer creates an optimizer. Zero-valued options are filled with
// defaults; the result is validated on each Optimize call. A nil logger
// discards output.
func NewOptimizer(opts Options, logger *log.Logger) *Optimizer {
	opts.SetDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Optimizer{opts: opts, Logger: logger, anneal: Anneal}
}

// Options returns the effective options.
func (o *Optimizer) Options() Options { return o.opts }

// Optimize computes the lowest-anomaly ordering it can find for m.
//
// An empty matrix fails with NO_DATA, which callers treat as "skip this
// group". A single competitor is returned at rank 1 with score 0 without
// running any stage. Otherwise the seed generators run, every annealing run
// executes on the worker pool, and the best run is polished by local search.
// Runs that fail or panic are dropped; only when all of them fail does
// Optimize return ALL_RUNS_FAILED.
func (o *Optimizer) Optimize(ctx context.Context, m *outcome.Matrix) (res *Result, err error) {
	start := time.Now()
	n := m.Len()
	hooks := observability.Optimizer()
	hooks.OnOptimizeStart(ctx, n, o.opts.Runs)
	defer func() {
		score := 0.0
		if res != nil {
			res.Duration = time.Since(start)
			score = res.Score
		}
		hooks.OnOptimizeComplete(ctx, n, score, time.Since(start), err)
	}()

	if err := o.opts.Validate(); err != nil {
		return nil, err
	}
	switch n {
	case 0:
		return nil, errors.New(errors.ErrCodeNoData, "no competitors to rank")
	case 1:
		order := Ordering{0}
		return &Result{Ordering: order, Rankings: NewRankings(m, order), BestRun: -1}, nil
	}

	scorer := NewScorer(m)
	res = &Result{BestRun: -1}

	// Stage 1: seeds
	stageStart := time.Now()
	pr := PageRank(m, o.opts.PageRank)
	if err := pr.Ordering.Validate(n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "pagerank seed")
	}
	res.PageRankIterations = pr.Iterations
	res.PageRankConverged = pr.Converged
	prStage := o.recordStage(ctx, res, StagePageRank, scorer.Score(pr.Ordering), stageStart)
	if !pr.Converged {
		o.Logger.Warn("pagerank did not converge", "iterations", pr.Iterations)
	}
	o.Logger.Debug("pagerank seed", "score", prStage.Score, "iterations", pr.Iterations, "duration", prStage.Duration)

	stageStart = time.Now()
	mfas := GreedyMFAS(m)
	if err := mfas.Validate(n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "mfas seed")
	}
	mfasStage := o.recordStage(ctx, res, StageMFAS, scorer.Score(mfas), stageStart)
	o.Logger.Debug("mfas seed", "score", mfasStage.Score, "duration", mfasStage.Duration)

	// Stage 2: annealing
	stageStart = time.Now()
	runs := o.planRuns(n, pr.Ordering, mfas)
	var g errgroup.Group
	g.SetLimit(o.opts.workers())
	for k := range runs {
		g.Go(func() error {
			runs[k] = o.run(ctx, scorer, runs[k])
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Runs = runs

	best, failures := selectBest(runs)
	if best < 0 {
		return nil, errors.Wrap(errors.ErrCodeAllRunsFailed, runs[0].Err, "all %d annealing runs failed", len(runs))
	}
	if failures > 0 {
		o.Logger.Warn("annealing runs failed", "failed", failures, "runs", len(runs))
	}
	res.BestRun = best
	annealStage := o.recordStage(ctx, res, StageAnnealing, runs[best].Score, stageStart)
	o.Logger.Debug("annealing", "score", annealStage.Score, "best_run", best, "seed", runs[best].Seed, "duration", annealStage.Duration)

	// Stage 3: local search. If both seed runs failed and the survivors ended
	// worse than a seed, polish the seed instead.
	stageStart = time.Now()
	start := runs[best].ordering
	if seed, seedScore := bestSeed(pr.Ordering, prStage.Score, mfas, mfasStage.Score); runs[best].Score > seedScore+scoreEpsilon {
		o.Logger.Debug("annealing ended above a seed, polishing the seed", "annealing", runs[best].Score, "seed", seedScore)
		start = seed
	}
	ls := LocalSearch(scorer, start, o.opts.LocalSearchIterations)
	if err := ls.Ordering.Validate(n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "local search")
	}
	res.LocalSearchSwaps = ls.Swaps
	lsStage := o.recordStage(ctx, res, StageLocalSearch, ls.Score, stageStart)
	o.Logger.Debug("local search", "score", lsStage.Score, "swaps", ls.Swaps, "duration", lsStage.Duration)

	res.Ordering = ls.Ordering
	res.Score = ls.Score
	res.Rankings = NewRankings(m, ls.Ordering)
	for i := range res.Runs {
		res.Runs[i].ordering = nil
	}
	return res, nil
}

func (o *Optimizer) recordStage(ctx context.Context, res *Result, name string, score float64, start time.Time) Stage {
	s := Stage{Name: name, Score: score, Duration: time.Since(start)}
	res.Stages = append(res.Stages, s)
	observability.Optimizer().OnStageComplete(ctx, name, score, s.Duration)
	return s
}

// planRuns assigns a seed ordering and a random stream to every run. Run k
// uses Seed+k; random permutations come from a stream of their own so the
// plan is fixed before any worker starts.
func (o *Optimizer) planRuns(n int, pr, mfas Ordering) []RunResult {
	runs := make([]RunResult, o.opts.Runs)
	shuffle := newRNG(^o.opts.Seed)
	for k := range runs {
		runs[k] = RunResult{Index: k, RNGSeed: o.opts.Seed + uint64(k)}
		switch k {
		case 0:
			runs[k].Seed, runs[k].ordering = SeedPageRank, pr.Clone()
		case 1:
			runs[k].Seed, runs[k].ordering = SeedMFAS, mfas.Clone()
		default:
			runs[k].Seed, runs[k].ordering = SeedRandom, RandomOrdering(n, shuffle)
		}
	}
	return runs
}

// run executes one planned annealing run. A panic inside the run is
// recovered and reported as a failed run.
func (o *Optimizer) run(ctx context.Context, scorer Scorer, plan RunResult) (rr RunResult) {
	rr = plan
	seed := plan.ordering
	rr.ordering = nil
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			rr.Err = errors.New(errors.ErrCodeInternal, "run %d panicked: %v", rr.Index, p)
			rr.ordering = nil
		}
		rr.Duration = time.Since(start)
		if rr.Err != nil {
			rr.Error = rr.Err.Error()
			o.Logger.Warn("annealing run failed", "run", rr.Index, "seed", rr.Seed, "err", rr.Err)
		}
		observability.Optimizer().OnRunComplete(ctx, rr.Seed, rr.Score, rr.Iterations, rr.Duration, rr.Err)
	}()

	ar, err := o.anneal(ctx, scorer, seed, o.opts.Anneal, rr.RNGSeed)
	if err != nil {
		rr.Err = err
		return rr
	}
	if err := ar.Ordering.Validate(len(seed)); err != nil {
		rr.Err = errors.Wrap(errors.ErrCodeInternal, err, "run %d returned an invalid ordering", rr.Index)
		return rr
	}
	rr.InitialScore = ar.InitialScore
	rr.Score = ar.Score
	rr.Iterations = ar.Iterations
	rr.Accepted = ar.Accepted
	rr.ordering = ar.Ordering
	return rr
}

func bestSeed(pr Ordering, prScore float64, mfas Ordering, mfasScore float64) (Ordering, float64) {
	if mfasScore < prScore {
		return mfas, mfasScore
	}
	return pr, prScore
}

// selectBest returns the index of the lowest-scoring successful run, ties
// going to the lowest index, and the number of failed runs. It returns -1
// when every run failed.
func selectBest(runs []RunResult) (best, failures int) {
	best = -1
	for k, r := range runs {
		if r.Failed() || r.ordering == nil {
			failures++
			continue
		}
		if best < 0 || r.Score < runs[best].Score-scoreEpsilon {
			best = k
		}
	}
	return best, failures
}
