// Package pipeline runs a comparison group through the ranking engine.
//
// The CLI and the HTTP API both go through a [Runner] so they share one
// sequence of steps and one caching policy:
//
//  1. Matrix: validate the group and resolve its evidence
//  2. Rank: optimize the matrix, or reuse a cached result for the same
//     matrix and engine options
//  3. Save: optionally persist the final ranking to a store
//  4. Render: optionally draw the anomaly diagram as DOT or SVG
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	opts := pipeline.Options{
//	    Engine:  ranking.DefaultOptions(),
//	    Formats: []string{"svg"},
//	    Save:    true,
//	}
//	result, err := runner.Execute(ctx, group, opts)
//	if errors.IsSkippable(err) {
//	    // empty group
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/render/dot"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for rendered artifacts.
const (
	FormatDOT = dot.FormatDOT
	FormatSVG = dot.FormatSVG
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Engine configures the optimizer. Zero fields take their defaults.
	Engine ranking.Options `json:"engine"`

	// Evidence weights used when resolving the group. The zero value
	// selects outcome.DefaultWeights.
	Evidence outcome.Weights `json:"evidence"`

	// Refresh bypasses cached rankings and artifacts. Fresh results are
	// still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Save persists the final ranking to the runner's store.
	Save bool `json:"save,omitempty"`

	// Formats lists the anomaly diagrams to render (dot, svg).
	Formats []string `json:"formats,omitempty"`

	// AnomalyLimit keeps only the heaviest anomalies in diagrams.
	AnomalyLimit int `json:"anomaly_limit,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs and API responses.
	RunID string `json:"run_id"`

	// Group is the comparison group name.
	Group string `json:"group"`

	// MatrixHash is the content hash of the resolved matrix.
	MatrixHash string `json:"matrix_hash"`

	// EngineHash is the hash of the engine options.
	EngineHash string `json:"engine_hash"`

	// Ranking is the optimizer result.
	Ranking *ranking.Result `json:"ranking"`

	// Anomalies lists the evidence the final order contradicts, heaviest
	// first.
	Anomalies []ranking.Anomaly `json:"anomalies,omitempty"`

	// Record is the stored ranking when Options.Save was set.
	Record *store.Record `json:"record,omitempty"`

	// Artifacts contains rendered diagrams keyed by format.
	Artifacts map[string][]byte `json:"-"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Competitors int           `json:"competitors"`
	Edges       int           `json:"edges"`
	MatrixTime  time.Duration `json:"matrix_ns"`
	RankTime    time.Duration `json:"rank_ns"`
	RenderTime  time.Duration `json:"render_ns"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RankingHit bool `json:"ranking_hit"` // Whether the ranking came from cache
	RenderHit  bool `json:"render_hit"`  // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults fills zero values with defaults and validates the
// result. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	o.Engine.SetDefaults()
	if err := o.Engine.Validate(); err != nil {
		return err
	}

	if o.Evidence == (outcome.Weights{}) {
		o.Evidence = outcome.DefaultWeights()
	}
	if err := o.Evidence.Validate(); err != nil {
		return err
	}

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = dedupe(o.Formats)

	if o.AnomalyLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "anomaly_limit must be >= 0, got %d", o.AnomalyLimit)
	}

	o.validated = true
	return nil
}

// Clone returns a deep copy that is validated afresh on next use.
func (o Options) Clone() Options {
	o.Formats = slices.Clone(o.Formats)
	o.validated = false
	return o
}

func dedupe(formats []string) []string {
	var out []string
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Cache helpers
// =============================================================================

// cachedRanking is the cached form of a ranking. The matrix hash is kept so
// a hash collision can never return a ranking for the wrong competitors.
type cachedRanking struct {
	MatrixHash string          `json:"matrix_hash"`
	Result     *ranking.Result `json:"result"`
}

func (c cachedRanking) valid(m *outcome.Matrix, matrixHash string) error {
	if c.Result == nil || c.MatrixHash != matrixHash {
		return fmt.Errorf("cached ranking does not match matrix")
	}
	return c.Result.Ordering.Validate(m.Len())
}
