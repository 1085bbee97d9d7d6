package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/cache"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/render/dot"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

// Cache key types reported to the observability hooks.
const (
	keyTypeRanking  = "ranking"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // nil disables Options.Save
	Logger *log.Logger

	// RankingTTL overrides cache.TTLRanking when non-zero.
	RankingTTL time.Duration
}

// NewRunner creates a runner with the given backends.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The store may be nil when rankings are never saved.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete matrix → rank → save → render pipeline for g.
// An empty group fails with NO_DATA.
func (r *Runner) Execute(ctx context.Context, g *outcome.Group, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Save && r.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "save requested but no store is configured")
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate run id")
	}
	logger := r.logger(opts).With("run", runID.String()[:8], "group", g.Name)
	opts.Logger = logger

	result := &Result{
		RunID:     runID.String(),
		Group:     g.Name,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Matrix
	matrixStart := time.Now()
	if len(g.Competitors) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "group %s has no competitors", g.Name)
	}
	m, err := g.Matrix(opts.Evidence)
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}
	result.MatrixHash = m.Hash()
	if result.EngineHash, err = engineHash(opts.Engine); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash engine options")
	}
	result.Stats.MatrixTime = time.Since(matrixStart)
	result.Stats.Competitors = m.Len()
	result.Stats.Edges = m.EdgeCount()

	logger.Debug("resolved matrix",
		"competitors", m.Len(),
		"edges", m.EdgeCount(),
		"weight", m.TotalWeight(),
		"duration", result.Stats.MatrixTime)

	// Stage 2: Rank
	rankStart := time.Now()
	res, hit, err := r.RankWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	result.Ranking = res
	result.Anomalies = ranking.NewScorer(m).Anomalies(res.Ordering)
	result.Stats.RankTime = time.Since(rankStart)
	result.CacheInfo.RankingHit = hit

	logger.Info("ranked group",
		"competitors", m.Len(),
		"score", res.Score,
		"anomalies", len(result.Anomalies),
		"cached", hit,
		"duration", result.Stats.RankTime)

	// Stage 3: Save
	if opts.Save {
		rec := store.NewRecord(g.Name, result.MatrixHash, result.EngineHash, res)
		if err := r.Store.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("save: %w", err)
		}
		result.Record = rec
		logger.Info("saved ranking", "id", rec.ID)
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, m, res, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit

		logger.Debug("rendered anomalies",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// ExecuteFile loads a group file and runs the pipeline on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	g, err := outcome.LoadGroup(path)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, g, opts)
}

// ExecuteDir runs the pipeline on every group file in dir, in name order.
// Groups with nothing to rank are logged and skipped. Any other failure
// stops the batch and is returned along with the results so far.
func (r *Runner) ExecuteDir(ctx context.Context, dir string, opts Options) ([]*Result, error) {
	paths, err := outcome.GroupFiles(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "list groups in %s", dir)
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no group files in %s", dir)
	}

	logger := r.logger(opts)
	var results []*Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.ExecuteFile(ctx, path, opts)
		if errors.IsSkippable(err) {
			logger.Warn("skipping group", "file", filepath.Base(path), "reason", errors.UserMessage(err))
			continue
		}
		if err != nil {
			return results, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		results = append(results, res)
	}
	return results, nil
}

// RankWithCacheInfo optimizes m with caching and returns cache hit info.
func (r *Runner) RankWithCacheInfo(ctx context.Context, m *outcome.Matrix, opts Options) (*ranking.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	matrixHash := m.Hash()
	engHash, err := engineHash(opts.Engine)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash engine options")
	}
	cacheKey := r.Keyer.RankingKey(matrixHash, cache.RankingKeyOpts{
		EngineHash: engHash,
		Seed:       opts.Engine.Seed,
	})
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedRanking
			if err := json.Unmarshal(data, &cached); err == nil {
				if err := cached.valid(m, matrixHash); err == nil {
					hooks.OnCacheHit(ctx, keyTypeRanking)
					return cached.Result, true, nil // Cache hit
				}
			}
			logger.Warn("discarding unreadable cached ranking", "key", cacheKey)
		} else if err != nil {
			logger.Warn("cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeRanking)
	}

	// Optimize
	res, err := ranking.NewOptimizer(opts.Engine, logger).Optimize(ctx, m)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(cachedRanking{MatrixHash: matrixHash, Result: res}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.rankingTTL()); err != nil {
			logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeRanking, len(data))
		}
	}

	return res, false, nil // Cache miss
}

// Rank is a convenience wrapper that calls RankWithCacheInfo and discards the cache hit info.
func (r *Runner) Rank(ctx context.Context, m *outcome.Matrix, opts Options) (*ranking.Result, error) {
	res, _, err := r.RankWithCacheInfo(ctx, m, opts)
	return res, err
}

// RenderWithCacheInfo draws the anomaly diagrams for res with caching and
// returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *outcome.Matrix, res *ranking.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := res.Ordering.Validate(m.Len()); err != nil {
		return nil, false, err
	}

	// The diagram depends only on the matrix and the final order.
	resultHash := cache.Hash(fmt.Appendf(nil, "%s:%v", m.Hash(), res.Ordering))
	hooks := observability.Cache()
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(resultHash, cache.ArtifactKeyOpts{Format: format, Limit: opts.AnomalyLimit})
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keyFor(format))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil // All artifacts from cache
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
	}

	// Render all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := dot.Render(ctx, m, res.Ordering, format, dot.Options{Limit: opts.AnomalyLimit})
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keyFor(format), data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (r *Runner) rankingTTL() time.Duration {
	if r.RankingTTL > 0 {
		return r.RankingTTL
	}
	return cache.TTLRanking
}

// engineHash hashes the options that affect an optimizer result. The worker
// count only changes scheduling, so it is left out.
func engineHash(opts ranking.Options) (string, error) {
	opts.Workers = 0
	return cache.HashJSON(opts)
}
