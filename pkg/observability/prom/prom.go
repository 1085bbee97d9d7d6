// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
)

// Metric names.
const (
	MetricOptimizeTotal    = "wrestlerank_optimize_total"
	MetricOptimizeDuration = "wrestlerank_optimize_duration_seconds"
	MetricStageScore       = "wrestlerank_stage_anomaly_score"
	MetricRunsTotal        = "wrestlerank_anneal_runs_total"
	MetricRunDuration      = "wrestlerank_anneal_run_duration_seconds"
	MetricCacheTotal       = "wrestlerank_cache_operations_total"
	MetricStoreTotal       = "wrestlerank_store_operations_total"
	MetricHTTPRequests     = "wrestlerank_http_requests_total"
	MetricHTTPDuration     = "wrestlerank_http_request_duration_seconds"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds every collector. All methods are safe for concurrent use.
type Metrics struct {
	optimizeTotal    *prometheus.CounterVec
	optimizeDuration prometheus.Histogram
	stageScore       *prometheus.GaugeVec
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	cacheTotal       *prometheus.CounterVec
	storeTotal       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		optimizeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOptimizeTotal,
				Help: "Ranking requests by outcome code",
			},
			[]string{"code"},
		),
		optimizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricOptimizeDuration,
				Help:    "End-to-end optimizer duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		stageScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricStageScore,
				Help: "Anomaly score after each pipeline stage of the most recent request",
			},
			[]string{"stage"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRunsTotal,
				Help: "Annealing runs by seed kind and status",
			},
			[]string{"seed", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRunDuration,
				Help:    "Annealing run duration in seconds by seed kind",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"seed"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCacheTotal,
				Help: "Cache operations by key type and result",
			},
			[]string{"key_type", "result"},
		),
		storeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricStoreTotal,
				Help: "Store operations by backend, operation, and status",
			},
			[]string{"backend", "op", "status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequests,
				Help: "HTTP requests by method, route, and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPDuration,
				Help:    "HTTP request duration in seconds by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Collectors returns all collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.optimizeTotal,
		m.optimizeDuration,
		m.stageScore,
		m.runsTotal,
		m.runDuration,
		m.cacheTotal,
		m.storeTotal,
		m.httpRequests,
		m.httpDuration,
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Install registers m as every observability hook.
func (m *Metrics) Install() {
	observability.SetOptimizerHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the metrics in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// OnOptimizeStart implements observability.OptimizerHooks.
func (m *Metrics) OnOptimizeStart(context.Context, int, int) {}

// OnStageComplete implements observability.OptimizerHooks.
func (m *Metrics) OnStageComplete(_ context.Context, stage string, score float64, _ time.Duration) {
	m.stageScore.WithLabelValues(stage).Set(score)
}

// OnRunComplete implements observability.OptimizerHooks.
func (m *Metrics) OnRunComplete(_ context.Context, seed string, _ float64, _ int, d time.Duration, err error) {
	m.runsTotal.WithLabelValues(seed, status(err)).Inc()
	m.runDuration.WithLabelValues(seed).Observe(d.Seconds())
}

// OnOptimizeComplete implements observability.OptimizerHooks.
func (m *Metrics) OnOptimizeComplete(_ context.Context, _ int, _ float64, d time.Duration, err error) {
	code := "OK"
	if err != nil {
		code = string(errors.GetCode(err))
		if code == "" {
			code = string(errors.ErrCodeInternal)
		}
	}
	m.optimizeTotal.WithLabelValues(code).Inc()
	m.optimizeDuration.Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

// OnSave implements observability.StoreHooks.
func (m *Metrics) OnSave(_ context.Context, backend, _ string, _ time.Duration, err error) {
	m.storeTotal.WithLabelValues(backend, "save", status(err)).Inc()
}

// OnLoad implements observability.StoreHooks.
func (m *Metrics) OnLoad(_ context.Context, backend, _ string, _ time.Duration, err error) {
	// a missing ranking is a normal answer, not a backend failure
	if errors.Is(err, errors.ErrCodeNotFound) {
		err = nil
	}
	m.storeTotal.WithLabelValues(backend, "load", status(err)).Inc()
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

var (
	_ observability.OptimizerHooks = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
	_ observability.StoreHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks      = (*Metrics)(nil)
)
