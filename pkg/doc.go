// Package pkg holds the libraries behind wrestlerank.
//
// # Overview
//
// wrestlerank orders the competitors of a comparison group so that as few
// recorded results as possible contradict the order. The pkg directory is
// organized by stage:
//
//  1. [outcome] - Groups, matches and evidence, resolved into a weighted
//     adjacency matrix
//  2. [ranking] - Scoring, seed generation (PageRank, greedy MFAS), parallel
//     simulated annealing and local search
//  3. [pipeline] - Orchestration (matrix → rank → save → render) with caching
//  4. [cache], [store] - Result caching (file, Redis) and ranking persistence
//     (file, MongoDB)
//  5. [render/dot] - Anomaly diagrams as DOT or SVG
//
// # Architecture
//
// The typical data flow:
//
//	group.json (competitors + matches)
//	         ↓
//	    [outcome] BuildEvidence → Resolve (weighted matrix)
//	         ↓
//	    [ranking] PageRank + GreedyMFAS seeds → Anneal × runs → LocalSearch
//	         ↓
//	    [store] Record, [render/dot] diagram
//
// # Quick Start
//
//	g, err := outcome.LoadGroup("groups/125.json")
//	if err != nil {
//	    return err
//	}
//	m, err := g.Matrix(outcome.DefaultWeights())
//	if err != nil {
//	    return err
//	}
//	res, err := ranking.NewOptimizer(ranking.DefaultOptions(), logger).Optimize(ctx, m)
//	if err != nil {
//	    return err
//	}
//	for _, r := range res.Rankings {
//	    fmt.Println(r.Rank, r.Name)
//	}
//
// Most callers should go through a [pipeline.Runner] instead, which adds
// caching, persistence and rendering.
//
// # Supporting Packages
//
// [config] loads the TOML configuration. [errors] defines the coded errors
// shared by the CLI and the HTTP API. [observability] exposes hooks that
// [observability/prom] implements with Prometheus collectors. [buildinfo]
// carries version information set at link time.
//
// [outcome]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome
// [ranking]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking
// [pipeline]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/cache
// [store]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/store
// [render/dot]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/render/dot
// [config]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/config
// [errors]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors
// [observability]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability/prom
// [buildinfo]: https://pkg.go.dev/github.com/gatorbacon/wrestledata-simple-sub000/pkg/buildinfo
package pkg
