package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/observability"
)

// unmatchedRoute labels requests no route matched, keeping metric label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// observe logs each request and reports it to the HTTP hooks, labelled by
// route pattern rather than raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			d := time.Since(start)
			observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)

			fields := []any{
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d,
				"request_id", middleware.GetReqID(r.Context()),
			}
			switch {
			case status >= 500:
				s.logger.Error("request", fields...)
			case status >= 400:
				s.logger.Warn("request", fields...)
			default:
				s.logger.Debug("request", fields...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
