// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about optimization runs, cache operations, ranking storage,
// and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The engine only ever talks to these interfaces. The Prometheus backend
// lives in the prom subpackage and is registered by main.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.NewMetrics()
//	    if err := m.Register(prometheus.DefaultRegisterer); err != nil {
//	        log.Fatal(err)
//	    }
//	    m.Install() // sets every hook
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Optimizer().OnStageComplete(ctx, "pagerank", score, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Optimizer Hooks
// =============================================================================

// OptimizerHooks receives events from the ranking engine.
type OptimizerHooks interface {
	// OnOptimizeStart fires once per request before any stage runs.
	OnOptimizeStart(ctx context.Context, competitors, runs int)

	// OnStageComplete reports the anomaly score after a pipeline stage.
	OnStageComplete(ctx context.Context, stage string, score float64, duration time.Duration)

	// OnRunComplete reports one annealing run. err is non-nil for a failed run.
	OnRunComplete(ctx context.Context, seed string, score float64, iterations int, duration time.Duration, err error)

	// OnOptimizeComplete fires once per request with the final score.
	OnOptimizeComplete(ctx context.Context, competitors int, score float64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from ranking persistence.
type StoreHooks interface {
	OnSave(ctx context.Context, backend, group string, duration time.Duration, err error)
	OnLoad(ctx context.Context, backend, group string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records a served request. route is the matched pattern, not
	// the raw path.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopOptimizerHooks is a no-op implementation of OptimizerHooks.
type NoopOptimizerHooks struct{}

func (NoopOptimizerHooks) OnOptimizeStart(context.Context, int, int)                              {}
func (NoopOptimizerHooks) OnStageComplete(context.Context, string, float64, time.Duration)        {}
func (NoopOptimizerHooks) OnOptimizeComplete(context.Context, int, float64, time.Duration, error) {}
func (NoopOptimizerHooks) OnRunComplete(context.Context, string, float64, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSave(context.Context, string, string, time.Duration, error) {}
func (NoopStoreHooks) OnLoad(context.Context, string, string, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	optimizerHooks OptimizerHooks = NoopOptimizerHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetOptimizerHooks registers custom optimizer hooks.
// This should be called once at application startup before any ranking runs.
func SetOptimizerHooks(h OptimizerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		optimizerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Optimizer returns the registered optimizer hooks.
func Optimizer() OptimizerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return optimizerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	optimizerHooks = NoopOptimizerHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
