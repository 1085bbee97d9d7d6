package prom

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if got := len(m.Collectors()); got != 9 {
		t.Errorf("expected 9 collectors, got %d", got)
	}
}

func TestRegister(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		if err := NewMetrics().Register(reg); err != nil {
			t.Errorf("Register() returned error: %v", err)
		}
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		if err := NewMetrics().Register(reg); err != nil {
			t.Fatalf("first Register() returned error: %v", err)
		}
		if err := NewMetrics().Register(reg); err == nil {
			t.Error("second Register() should have returned an error")
		}
	})
}

func TestOptimizerHooks(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnStageComplete(ctx, "annealing", 3.5, time.Millisecond)
	m.OnRunComplete(ctx, "random", 3.5, 100, time.Millisecond, nil)
	m.OnRunComplete(ctx, "random", 0, 0, time.Millisecond, errors.New(errors.ErrCodeInternal, "boom"))
	m.OnOptimizeComplete(ctx, 10, 3.5, time.Second, nil)
	m.OnOptimizeComplete(ctx, 0, 0, time.Millisecond, errors.New(errors.ErrCodeNoData, "empty"))

	if got := testutil.ToFloat64(m.stageScore.WithLabelValues("annealing")); got != 3.5 {
		t.Errorf("stage score = %v, want 3.5", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("random", StatusFailure)); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.optimizeTotal.WithLabelValues("NO_DATA")); got != 1 {
		t.Errorf("NO_DATA count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.optimizeTotal.WithLabelValues("OK")); got != 1 {
		t.Errorf("OK count = %v, want 1", got)
	}
}

func TestStoreHooksTreatNotFoundAsSuccess(t *testing.T) {
	m := NewMetrics()
	m.OnLoad(context.Background(), "file", "125", time.Millisecond, errors.New(errors.ErrCodeNotFound, "none"))
	if got := testutil.ToFloat64(m.storeTotal.WithLabelValues("file", "load", StatusSuccess)); got != 1 {
		t.Errorf("load success = %v, want 1", got)
	}
}

func TestInstallAndHandler(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	m.Install()

	observability.Cache().OnCacheHit(context.Background(), "ranking")
	observability.HTTP().OnRequest(context.Background(), "GET", "/healthz", 200, time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{MetricCacheTotal, MetricHTTPRequests} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
