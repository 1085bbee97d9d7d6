// Package ranking computes a total order of competitors that best respects a
// graph of recorded outcomes.
//
// # The Ranking Problem
//
// Given an outcome matrix W where W[i][j] is the evidence that competitor i
// beat competitor j, every ordering leaves some evidence pointing "backwards":
// a lower-ranked competitor holding a win over a higher-ranked one. Each such
// pair is an anomaly, and the anomaly score of an ordering is the total weight
// of all of them:
//
//	score(order) = Σ_{i<j} W[order[j]][order[i]]
//
// A score of zero is a perfect topological sort and exists only when the
// positive part of W is acyclic. Minimizing the score is the weighted Minimum
// Feedback Arc Set problem, which is NP-hard, so the engine combines
// heuristics with stochastic search.
//
// # Pipeline
//
// [Optimizer.Optimize] runs the stages in order:
//
//  1. Seed generators, both deterministic:
//     [PageRank] ranks by the stationary distribution of a damped random walk
//     in which losers endorse winners; [GreedyMFAS] peels sinks, sources, and
//     then the competitor with the largest (out − in) weight.
//  2. Simulated annealing ([Anneal]) from each seed plus random
//     permutations, one independent run per worker with its own random
//     stream and its own copy of the ordering.
//  3. The minimum-score run is polished by first-improvement hill climbing
//     ([LocalSearch]) until no single transposition helps.
//
// Every stage reports its score in [Result.Stages], which makes regressions in
// the heuristics visible.
//
// # Incremental Scoring
//
// [Scorer.Score] is the O(N²) ground truth. [Scorer.SwapDelta] computes the
// exact change caused by transposing positions i and j in O(|j−i|): pairs
// entirely outside [i, j] keep their relative order, so only pairs touching
// i, j, or the competitors between them are re-examined. This is what makes
// hundreds of thousands of annealing moves affordable.
//
// # Concurrency
//
// The [outcome.Matrix] is read-only and shared by every run without locking.
// Each annealing run owns its state object, so runs never alias each other's
// orderings. Runs execute on a fixed-size worker pool; with fewer workers
// than runs they simply queue, with identical results.
//
// # Usage
//
//	opt := ranking.NewOptimizer(ranking.DefaultOptions(), logger)
//	result, err := opt.Optimize(ctx, matrix)
//	if errors.Is(err, errors.ErrCodeNoData) {
//	    // nothing to rank in this group
//	}
//	for _, r := range result.Rankings {
//	    fmt.Println(r.Rank, r.Name, r.Team)
//	}
package ranking
