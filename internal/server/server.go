// Package server exposes the Bernoulli solver over HTTP.
//
//	GET  /         HTML form
//	POST /solve    solve one equation
//	GET  /schema   request/response description
//	GET  /healthz  liveness check
package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/qiniu/x/log"

	bernoulli "github.com/njchilds90/gobernoulli"
	"github.com/njchilds90/gobernoulli/internal/config"
	"github.com/njchilds90/gobernoulli/internal/trace"
)

// RequestIDHeader carries the trace ID in both directions.
const RequestIDHeader = "X-Request-Id"

//go:embed index.html
var indexHTML []byte

type Server struct {
	router chi.Router
	solver *bernoulli.Solver
	cfg    config.Config
}

func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		solver: bernoulli.New(bernoulli.WithRoundDigits(cfg.Solver.RoundDigits)),
		cfg:    *cfg,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(withTrace, recoverPanic)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/solve", s.handleSolve)
	s.router.Get("/schema", s.handleSchema)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// withTrace attaches a request logger keyed by X-Request-Id (generated when
// absent) and logs one access line per request.
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := trace.TraceID(r.Header.Get(RequestIDHeader))
		if traceID == "" {
			traceID = trace.NewTraceID(trace.HTTPPrefix)
		}
		ctx := trace.NewContext(r.Context(), traceID)
		w.Header().Set(RequestIDHeader, string(traceID))

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		trace.Debug(ctx, "request method=%s path=%s dur=%s remote=%s", r.Method, r.URL.Path, time.Since(start), r.RemoteAddr)
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic in %s %s: %v\n%s", r.Method, r.URL.Path, rec, string(debug.Stack()))
				writeError(w, r, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		trace.Error(r.Context(), "request failed status=%d error=%v", status, err)
	} else {
		trace.Warn(r.Context(), "request failed status=%d error=%v", status, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
