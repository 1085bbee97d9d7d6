package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/pipeline"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// maxHistory caps the history route.
const maxHistory = 100

// RankRequest is a group plus optional pipeline options. Options not sent
// keep the server defaults.
type RankRequest struct {
	outcome.Group
	Options *pipeline.Options `json:"options,omitempty"`
}

// RankResponse is the pipeline result with artifacts inlined as text.
type RankResponse struct {
	*pipeline.Result
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	opts := s.defaults.Clone()
	req := RankRequest{Options: &opts}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "decode request: "+err.Error())
		return
	}
	if _, err := dec.Token(); err != io.EOF {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "request body must hold a single JSON object")
		return
	}
	if req.Options == nil {
		req.Options = &opts
	}
	req.Options.Logger = nil
	if err := s.checkLimits(req.Options.Engine); err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout.Duration)
	defer cancel()

	res, err := s.runner.Execute(ctx, &req.Group, *req.Options)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			writeError(w, http.StatusServiceUnavailable, "TIMEOUT", "ranking did not finish within "+s.cfg.RequestTimeout.String())
			return
		}
		if StatusFor(err) == http.StatusInternalServerError {
			s.logger.Error("rank failed", "group", req.Name, "error", err)
		}
		writeErr(w, err)
		return
	}

	resp := RankResponse{Result: res}
	if len(res.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(res.Artifacts))
		for format, data := range res.Artifacts {
			resp.Artifacts[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// checkLimits rejects engine options above the server caps.
func (s *Server) checkLimits(eng ranking.Options) error {
	if eng.Runs > s.cfg.MaxRuns {
		return errors.New(errors.ErrCodeInvalidConfig, "runs %d exceeds the server limit of %d", eng.Runs, s.cfg.MaxRuns)
	}
	limit := s.cfg.MaxIterations
	for _, it := range []struct {
		name string
		n    int
	}{
		{"anneal max_iterations", eng.Anneal.MaxIterations},
		{"local_search_iterations", eng.LocalSearchIterations},
		{"pagerank max_iterations", eng.PageRank.MaxIterations},
	} {
		if it.n > limit {
			return errors.New(errors.ErrCodeInvalidConfig, "%s %d exceeds the server limit of %d", it.name, it.n, limit)
		}
	}
	return nil
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if err := errors.ValidateGroupName(group); err != nil {
		writeErr(w, err)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "no ranking store is configured")
		return
	}
	rec, err := s.store.Latest(r.Context(), group)
	if err != nil {
		s.logStoreError(group, err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	if err := errors.ValidateGroupName(group); err != nil {
		writeErr(w, err)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistory)
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "no ranking store is configured")
		return
	}
	recs, err := s.store.List(r.Context(), group, limit)
	if err != nil {
		s.logStoreError(group, err)
		writeErr(w, err)
		return
	}
	if len(recs) == 0 {
		writeErr(w, errors.New(errors.ErrCodeNotFound, "no stored ranking for group %q", group))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
		for name, p := range s.checks {
			if err := p.Ping(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) logStoreError(group string, err error) {
	if !errors.Is(err, errors.ErrCodeNotFound) {
		s.logger.Error("store read failed", "group", group, "error", err)
	}
}
