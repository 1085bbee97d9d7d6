package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Optimizer hooks
	o := NoopOptimizerHooks{}
	o.OnOptimizeStart(ctx, 30, 4)
	o.OnStageComplete(ctx, "pagerank", 12.5, time.Millisecond)
	o.OnRunComplete(ctx, "random", 3, 100000, time.Second, nil)
	o.OnOptimizeComplete(ctx, 30, 2.5, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "ranking")
	c.OnCacheMiss(ctx, "ranking")
	c.OnCacheSet(ctx, "ranking", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSave(ctx, "file", "125", time.Millisecond, nil)
	s.OnLoad(ctx, "mongo", "125", time.Millisecond, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/rankings", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Optimizer().(NoopOptimizerHooks); !ok {
		t.Error("Optimizer() should return NoopOptimizerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customOptimizer := &testOptimizerHooks{}
	SetOptimizerHooks(customOptimizer)
	if Optimizer() != customOptimizer {
		t.Error("SetOptimizerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Optimizer().(NoopOptimizerHooks); !ok {
		t.Error("Reset() should restore NoopOptimizerHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testOptimizerHooks{}
	SetOptimizerHooks(custom)

	// Setting nil should be ignored
	SetOptimizerHooks(nil)

	if Optimizer() != custom {
		t.Error("SetOptimizerHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testOptimizerHooks struct{ NoopOptimizerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
