// Package cache stores computed rankings and rendered artifacts so repeated
// requests for an unchanged group skip the optimizer.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the HTTP server, shared between replicas
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer] and are derived from content hashes, so a cached
// ranking is only reused for an identical matrix and identical engine
// options. Entries never need explicit invalidation.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// TTLRanking is how long an optimizer result stays cached.
	TTLRanking = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered DOT or SVG stays cached.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer generates cache keys.
type Keyer interface {
	// RankingKey identifies an optimizer result for a matrix.
	RankingKey(matrixHash string, opts RankingKeyOpts) string

	// ArtifactKey identifies a rendering of a stored or computed ranking.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// RankingKeyOpts are the inputs besides the matrix that change a result.
type RankingKeyOpts struct {
	// EngineHash is the hash of the serialized engine options.
	EngineHash string
	Seed       uint64
}

// ArtifactKeyOpts selects a rendering.
type ArtifactKeyOpts struct {
	Format string
	Limit  int
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RankingKey hashes the matrix hash together with the engine options.
func (DefaultKeyer) RankingKey(matrixHash string, opts RankingKeyOpts) string {
	return hashKey("ranking", matrixHash, opts.EngineHash, opts.Seed)
}

// ArtifactKey hashes the result hash together with the rendering options.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts.Format, opts.Limit)
}
