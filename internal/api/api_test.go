package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/config"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability/prom"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

const triangleBody = `{
  "name": "125",
  "competitors": [
    {"id": "c", "name": "Cole"},
    {"id": "b", "name": "Boyd"},
    {"id": "a", "name": "Ames"}
  ],
  "matches": [
    {"winner": "a", "loser": "b"},
    {"winner": "a", "loser": "b"},
    {"winner": "b", "loser": "c"},
    {"winner": "b", "loser": "c"},
    {"winner": "c", "loser": "a"}
  ],
  "options": {"engine": {"anneal": {"max_iterations": 2000}}}
}`

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return fmt.Errorf("connection refused") }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// routeRecorder captures HTTP hook calls.
type routeRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *routeRecorder) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Store, logger)
	}
	srv := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newFileStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func post(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/v1/rankings", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return er.Error.Code
}

func TestRank(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := post(t, srv, triangleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var got struct {
		Group   string `json:"group"`
		Ranking struct {
			Score    float64 `json:"score"`
			Rankings []struct {
				ID string `json:"id"`
			} `json:"rankings"`
		} `json:"ranking"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range got.Ranking.Rankings {
		ids = append(ids, r.ID)
	}
	if got.Group != "125" || strings.Join(ids, ",") != "a,b,c" || got.Ranking.Score != 1 {
		t.Errorf("unexpected result: %s", body)
	}
}

func TestRankErrors(t *testing.T) {
	srv := newTestServer(t, Config{})
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty group", `{"name": "285", "competitors": []}`, http.StatusUnprocessableEntity, "NO_DATA"},
		{"malformed", `{"name":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"name": "125", "wrestlers": []}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"trailing data", `{"name": "125"} {}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"duplicate id", `{"name": "125", "competitors": [{"id": "a"}, {"id": "a"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad group", `{"name": "../etc", "competitors": [{"id": "a"}]}`, http.StatusBadRequest, "INVALID_GROUP"},
		{"bad runs", `{"name": "125", "competitors": [{"id": "a"}], "options": {"engine": {"runs": 2}}}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"bad format", `{"name": "125", "competitors": [{"id": "a"}], "options": {"formats": ["png"]}}`, http.StatusBadRequest, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if code := errorCode(t, body); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestRankEngineLimits(t *testing.T) {
	srv := newTestServer(t, Config{Server: config.ServerConfig{MaxRuns: 8, MaxIterations: 5000}})
	tests := []struct {
		name   string
		engine string
	}{
		{"runs", `{"runs": 50000000}`},
		{"workers with runs", `{"runs": 9, "workers": 9}`},
		{"anneal", `{"anneal": {"max_iterations": 5001}}`},
		{"local search", `{"local_search_iterations": 100000000}`},
		{"pagerank", `{"pagerank": {"max_iterations": 10000}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"name": "125", "competitors": [{"id": "a"}, {"id": "b"}], "options": {"engine": ` + tt.engine + `}}`
			resp, data := post(t, srv, body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", resp.StatusCode, data)
			}
			if code := errorCode(t, data); code != "INVALID_CONFIG" {
				t.Errorf("code = %q, want INVALID_CONFIG", code)
			}
		})
	}

	resp, data := post(t, srv, `{"name": "125", "competitors": [{"id": "a"}, {"id": "b"}],
  "matches": [{"winner": "a", "loser": "b"}],
  "options": {"engine": {"runs": 8, "local_search_iterations": 5000, "anneal": {"max_iterations": 5000}}}}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("request at the limits: status = %d: %s", resp.StatusCode, data)
	}
}

func TestServerLimitsCoverDefaults(t *testing.T) {
	defaults := pipeline.Options{}
	defaults.Engine.Runs = 200
	defaults.Engine.Anneal.MaxIterations = 2_000_000
	s := New(Config{Defaults: defaults, Logger: log.New(io.Discard)})
	if s.cfg.MaxRuns != 200 || s.cfg.MaxIterations != 2_000_000 {
		t.Errorf("limits = %d runs, %d iterations; want the server defaults to fit", s.cfg.MaxRuns, s.cfg.MaxIterations)
	}
}

func TestRankBodyLimit(t *testing.T) {
	srv := newTestServer(t, Config{Server: config.ServerConfig{MaxBodyBytes: 32}})
	resp, body := post(t, srv, triangleBody)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d: %s", resp.StatusCode, body)
	}
}

func TestRankArtifacts(t *testing.T) {
	srv := newTestServer(t, Config{})
	body := strings.Replace(triangleBody, `"options": {`, `"options": {"formats": ["dot"], `, 1)
	resp, data := post(t, srv, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var got RankResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.Artifacts["dot"], "digraph") {
		t.Errorf("artifacts = %v", got.Artifacts)
	}
}

func TestStoredRankings(t *testing.T) {
	st := newFileStore(t)
	srv := newTestServer(t, Config{Store: st})

	if resp, body := get(t, srv, "/v1/rankings/125"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("before save: status = %d: %s", resp.StatusCode, body)
	}

	saving := strings.Replace(triangleBody, `"options": {`, `"options": {"save": true, `, 1)
	for range 2 {
		if resp, body := post(t, srv, saving); resp.StatusCode != http.StatusOK {
			t.Fatalf("save: status = %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := get(t, srv, "/v1/rankings/125")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest: status = %d: %s", resp.StatusCode, body)
	}
	var rec store.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Group != "125" || len(rec.Rankings) != 3 || rec.Rankings[0].ID != "a" {
		t.Errorf("record = %+v", rec)
	}

	resp, body = get(t, srv, "/v1/rankings/125/history?limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: status = %d: %s", resp.StatusCode, body)
	}
	var recs []store.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("history = %d records, want 2", len(recs))
	}
	if recs[0].ID != rec.ID {
		t.Errorf("newest = %q, want %q", recs[0].ID, rec.ID)
	}

	if resp, _ := get(t, srv, "/v1/rankings/125/history?limit=0"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d", resp.StatusCode)
	}
	if resp, body := get(t, srv, "/v1/rankings/x..y"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad group: status = %d: %s", resp.StatusCode, body)
	}
}

func TestStoredRankingsWithoutStore(t *testing.T) {
	srv := newTestServer(t, Config{})
	if resp, _ := get(t, srv, "/v1/rankings/125"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	saving := strings.Replace(triangleBody, `"options": {`, `"options": {"save": true, `, 1)
	if resp, body := post(t, srv, saving); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("save without store: status = %d: %s", resp.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{Checks: map[string]Pinger{"cache": okPinger{}}})
	if resp, body := get(t, srv, "/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthy: status = %d: %s", resp.StatusCode, body)
	}

	srv = newTestServer(t, Config{Checks: map[string]Pinger{"cache": okPinger{}, "store": failingPinger{}}})
	resp, body := get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("degraded: status = %d", resp.StatusCode)
	}
	var hr HealthResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		t.Fatal(err)
	}
	if hr.Status != "degraded" || hr.Checks["cache"] != "ok" || hr.Checks["store"] == "ok" {
		t.Errorf("health = %+v", hr)
	}
}

func TestNotFoundRoute(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := get(t, srv, "/v2/nothing")
	if resp.StatusCode != http.StatusNotFound || errorCode(t, body) != "NOT_FOUND" {
		t.Errorf("status = %d: %s", resp.StatusCode, body)
	}
}

func TestMetricsAndRouteLabels(t *testing.T) {
	defer observability.Reset()
	rec := &routeRecorder{}
	observability.SetHTTPHooks(rec)

	reg := prometheus.NewRegistry()
	m := prom.NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, Config{Metrics: prom.Handler(reg), Store: newFileStore(t)})

	get(t, srv, "/v1/rankings/125")
	get(t, srv, "/v1/rankings/133")
	resp, body := get(t, srv, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: status = %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte(prom.MetricOptimizeDuration)) {
		t.Errorf("unexpected metrics body: %.200s", body)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{
		"GET /v1/rankings/{group} 404",
		"GET /v1/rankings/{group} 404",
		"GET /metrics 200",
	}
	if strings.Join(rec.routes, "|") != strings.Join(want, "|") {
		t.Errorf("routes = %v, want %v", rec.routes, want)
	}
}
