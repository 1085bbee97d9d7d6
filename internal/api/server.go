// Package api serves the ranking pipeline over HTTP.
//
// Routes:
//
//	POST /v1/rankings                   rank a group posted as JSON
//	GET  /v1/rankings/{group}           latest stored ranking
//	GET  /v1/rankings/{group}/history   stored rankings, newest first
//	GET  /healthz                       liveness and backend checks
//	GET  /metrics                       Prometheus metrics
package api

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/config"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/store"
)

// Pinger is a backend that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the server to its backends.
type Config struct {
	Runner   *pipeline.Runner
	Store    store.Store // optional; without it the read routes answer 404
	Defaults pipeline.Options
	Server   config.ServerConfig
	Metrics  http.Handler // optional; mounted at /metrics
	Checks   map[string]Pinger
	Logger   *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	defaults pipeline.Options
	cfg      config.ServerConfig
	metrics  http.Handler
	checks   map[string]Pinger
	logger   *log.Logger
}

// New creates a server. Zero server settings take the config defaults.
func New(cfg Config) *Server {
	d := config.Default().Server
	sc := cfg.Server
	if sc.Addr == "" {
		sc.Addr = d.Addr
	}
	if sc.RequestTimeout.Duration <= 0 {
		sc.RequestTimeout = d.RequestTimeout
	}
	if sc.MaxBodyBytes <= 0 {
		sc.MaxBodyBytes = d.MaxBodyBytes
	}
	if sc.ShutdownTimeout.Duration <= 0 {
		sc.ShutdownTimeout = d.ShutdownTimeout
	}
	if sc.MaxRuns <= 0 {
		sc.MaxRuns = d.MaxRuns
	}
	if sc.MaxIterations <= 0 {
		sc.MaxIterations = d.MaxIterations
	}
	// Server defaults are always within limits.
	eng := cfg.Defaults.Engine
	sc.MaxRuns = max(sc.MaxRuns, eng.Runs)
	sc.MaxIterations = max(sc.MaxIterations, eng.Anneal.MaxIterations, eng.LocalSearchIterations, eng.PageRank.MaxIterations)
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, cfg.Store, logger)
	}
	return &Server{
		runner:   runner,
		store:    cfg.Store,
		defaults: cfg.Defaults,
		cfg:      sc,
		metrics:  cfg.Metrics,
		checks:   cfg.Checks,
		logger:   logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1/rankings", func(r chi.Router) {
		r.Post("/", s.handleRank)
		r.Get("/{group}", s.handleLatest)
		r.Get("/{group}/history", s.handleHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed here")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout.Duration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
