package ranking

import (
	"time"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
)

// Stage names, in pipeline order.
const (
	StagePageRank    = "pagerank"
	StageMFAS        = "mfas"
	StageAnnealing   = "annealing"
	StageLocalSearch = "local_search"
)

// Seed kinds for annealing runs.
const (
	SeedPageRank = "pagerank"
	SeedMFAS     = "mfas"
	SeedRandom   = "random"
)

// Stage is the anomaly score an ordering had after one pipeline stage.
type Stage struct {
	Name     string        `json:"name"`
	Score    float64       `json:"score"`
	Duration time.Duration `json:"duration_ns"`
}

// RunResult describes one annealing run. A failed run has Err set and is
// excluded from selection.
type RunResult struct {
	Index        int           `json:"index"`
	Seed         string        `json:"seed"`
	RNGSeed      uint64        `json:"rng_seed"`
	InitialScore float64       `json:"initial_score"`
	Score        float64       `json:"score"`
	Iterations   int           `json:"iterations"`
	Accepted     int           `json:"accepted"`
	Duration     time.Duration `json:"duration_ns"`
	Error        string        `json:"error,omitempty"`

	Err      error    `json:"-"`
	ordering Ordering // nil for failed runs
}

// Failed reports whether the run produced no ordering.
func (r RunResult) Failed() bool { return r.Err != nil || r.Error != "" }

// Ranking is one row of the final order.
type Ranking struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Team   string `json:"team,omitempty"`
	Record string `json:"record,omitempty"`
}

// Result is the outcome of [Optimizer.Optimize].
type Result struct {
	// Ordering lists matrix indices from first to last.
	Ordering Ordering `json:"ordering"`
	// Rankings is Ordering resolved to competitors, rank 1 first.
	Rankings []Ranking `json:"rankings"`
	// Score is the anomaly score of Ordering.
	Score float64 `json:"score"`

	Stages []Stage     `json:"stages,omitempty"`
	Runs   []RunResult `json:"runs,omitempty"`

	// BestRun is the index of the annealing run that was polished, or -1
	// when no annealing ran.
	BestRun            int  `json:"best_run"`
	PageRankIterations int  `json:"pagerank_iterations,omitempty"`
	PageRankConverged  bool `json:"pagerank_converged,omitempty"`
	LocalSearchSwaps   int  `json:"local_search_swaps,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Stage returns the report for the named stage.
func (r *Result) Stage(name string) (Stage, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// IDs returns competitor IDs in ranked order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Rankings))
	for i, row := range r.Rankings {
		ids[i] = row.ID
	}
	return ids
}

// NewRankings resolves order against m's competitors.
func NewRankings(m *outcome.Matrix, order Ordering) []Ranking {
	out := make([]Ranking, len(order))
	for pos, idx := range order {
		c := m.Competitor(idx)
		out[pos] = Ranking{
			Rank:   pos + 1,
			ID:     c.ID,
			Name:   c.DisplayName(),
			Team:   c.Team,
			Record: c.Record(),
		}
	}
	return out
}
