package ranking

import (
	"math"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

// Engine defaults.
const (
	DefaultDamping            = 0.85
	DefaultPageRankTolerance  = 1e-6
	DefaultPageRankIterations = 100

	DefaultInitialTemperature = 10.0
	DefaultCoolingRate        = 0.9999
	DefaultMinTemperature     = 0.01
	DefaultAnnealIterations   = 100000

	DefaultLocalSearchIterations = 10000
	DefaultRuns                  = 4
	DefaultSeed           uint64 = 42

	// MinRuns is the PageRank seed, the MFAS seed, and at least one random
	// permutation.
	MinRuns = 3
)

// PageRankOptions configures the PageRank seed generator.
type PageRankOptions struct {
	Damping       float64 `json:"damping" toml:"damping"`
	Tolerance     float64 `json:"tolerance" toml:"tolerance"`
	MaxIterations int     `json:"max_iterations" toml:"max_iterations"`
}

// DefaultPageRankOptions returns damping 0.85, tolerance 1e-6, 100 iterations.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		Damping:       DefaultDamping,
		Tolerance:     DefaultPageRankTolerance,
		MaxIterations: DefaultPageRankIterations,
	}
}

// Validate checks that the options describe a convergent iteration.
func (o PageRankOptions) Validate() error {
	if !(o.Damping > 0 && o.Damping < 1) {
		return errors.New(errors.ErrCodeInvalidConfig, "pagerank damping must be in (0,1), got %v", o.Damping)
	}
	if !(o.Tolerance > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "pagerank tolerance must be positive, got %v", o.Tolerance)
	}
	if o.MaxIterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "pagerank max iterations must be positive, got %d", o.MaxIterations)
	}
	return nil
}

// AnnealOptions configures one simulated annealing run.
type AnnealOptions struct {
	InitialTemperature float64 `json:"initial_temperature" toml:"initial_temperature"`
	CoolingRate        float64 `json:"cooling_rate" toml:"cooling_rate"`
	MinTemperature     float64 `json:"min_temperature" toml:"min_temperature"`
	MaxIterations      int     `json:"max_iterations" toml:"max_iterations"`
}

// DefaultAnnealOptions returns the standard schedule: start at 10, multiply
// by 0.9999 per move, stop at 0.01 or after 100000 moves.
func DefaultAnnealOptions() AnnealOptions {
	return AnnealOptions{
		InitialTemperature: DefaultInitialTemperature,
		CoolingRate:        DefaultCoolingRate,
		MinTemperature:     DefaultMinTemperature,
		MaxIterations:      DefaultAnnealIterations,
	}
}

// Validate checks that the schedule is finite and actually cools.
func (o AnnealOptions) Validate() error {
	switch {
	case !(o.MinTemperature > 0) || math.IsInf(o.MinTemperature, 0):
		return errors.New(errors.ErrCodeInvalidConfig, "min temperature must be positive, got %v", o.MinTemperature)
	case !(o.InitialTemperature > o.MinTemperature) || math.IsInf(o.InitialTemperature, 0):
		return errors.New(errors.ErrCodeInvalidConfig, "initial temperature %v must exceed min temperature %v", o.InitialTemperature, o.MinTemperature)
	case !(o.CoolingRate > 0 && o.CoolingRate < 1):
		return errors.New(errors.ErrCodeInvalidConfig, "cooling rate must be in (0,1), got %v", o.CoolingRate)
	case o.MaxIterations <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "anneal max iterations must be positive, got %d", o.MaxIterations)
	}
	return nil
}

// Options configures an [Optimizer].
type Options struct {
	PageRank PageRankOptions `json:"pagerank" toml:"pagerank"`
	Anneal   AnnealOptions   `json:"anneal" toml:"anneal"`

	// LocalSearchIterations caps the number of improving swaps applied to
	// the best annealing result.
	LocalSearchIterations int `json:"local_search_iterations" toml:"local_search_iterations"`

	// Runs is the number of independent annealing runs: one from the
	// PageRank seed, one from the MFAS seed, the rest from random
	// permutations.
	Runs int `json:"runs" toml:"runs"`

	// Workers bounds how many runs execute at once. Zero means one worker
	// per run.
	Workers int `json:"workers" toml:"workers"`

	// Seed is the base random seed. Run k draws from seed+k, so a fixed
	// seed reproduces the whole result.
	Seed uint64 `json:"seed" toml:"seed"`
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		PageRank:              DefaultPageRankOptions(),
		Anneal:                DefaultAnnealOptions(),
		LocalSearchIterations: DefaultLocalSearchIterations,
		Runs:                  DefaultRuns,
		Seed:                  DefaultSeed,
	}
}

// SetDefaults fills zero-valued fields with defaults. Seed is left alone
// since zero is a legitimate seed.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.PageRank.Damping == 0 {
		o.PageRank.Damping = d.PageRank.Damping
	}
	if o.PageRank.Tolerance == 0 {
		o.PageRank.Tolerance = d.PageRank.Tolerance
	}
	if o.PageRank.MaxIterations == 0 {
		o.PageRank.MaxIterations = d.PageRank.MaxIterations
	}
	if o.Anneal.InitialTemperature == 0 {
		o.Anneal.InitialTemperature = d.Anneal.InitialTemperature
	}
	if o.Anneal.CoolingRate == 0 {
		o.Anneal.CoolingRate = d.Anneal.CoolingRate
	}
	if o.Anneal.MinTemperature == 0 {
		o.Anneal.MinTemperature = d.Anneal.MinTemperature
	}
	if o.Anneal.MaxIterations == 0 {
		o.Anneal.MaxIterations = d.Anneal.MaxIterations
	}
	if o.LocalSearchIterations == 0 {
		o.LocalSearchIterations = d.LocalSearchIterations
	}
	if o.Runs == 0 {
		o.Runs = d.Runs
	}
}

// Validate checks all engine options.
func (o Options) Validate() error {
	if err := o.PageRank.Validate(); err != nil {
		return err
	}
	if err := o.Anneal.Validate(); err != nil {
		return err
	}
	if o.LocalSearchIterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "local search iterations must not be negative, got %d", o.LocalSearchIterations)
	}
	if o.Runs < MinRuns {
		return errors.New(errors.ErrCodeInvalidConfig, "runs must be at least %d, got %d", MinRuns, o.Runs)
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// workers returns the effective pool size.
func (o Options) workers() int {
	if o.Workers == 0 || o.Workers > o.Runs {
		return o.Runs
	}
	return o.Workers
}
