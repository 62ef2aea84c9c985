// Package api serves the tables of a completed ingestion run over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ingest"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/metrics"
	"github.com/Sternrassler/f1-results-pipeline/pkg/pagination"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
)

// Server is a read-only view over one ingestion run.
type Server struct {
	router   chi.Router
	run      *ingest.Run
	views    ingest.Views
	source   *ergast.Source
	pageSize int
	limiter  ratelimit.Limiter
	logger   zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLapSource enables /v1/laps, which fetches lap timings on demand.
func WithLapSource(src *ergast.Source, pageSize int) Option {
	return func(s *Server) {
		s.source = src
		if pageSize > 0 {
			s.pageSize = pageSize
		}
	}
}

// WithRequestDelay spaces the upstream requests of /v1/laps. One limiter is
// shared by all HTTP requests, so concurrent callers queue behind each other.
func WithRequestDelay(d time.Duration) Option {
	return func(s *Server) { s.limiter = ratelimit.NewIntervalLimiter(d) }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds the router over run. Views are derived once here; the
// run must not be collected into again afterwards.
func NewServer(run *ingest.Run, opts ...Option) (*Server, error) {
	if run == nil {
		return nil, fmt.Errorf("run is required")
	}
	srv := &Server{
		router:   chi.NewRouter(),
		run:      run,
		views:    run.Views(),
		pageSize: pagination.DefaultLimit,
		logger:   logging.NewLogger("api"),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.routes()
	srv.logger.Info().
		Str("run_id", run.ID.String()).
		Int("rows", run.Tables.Rows()).
		Bool("laps_enabled", srv.source != nil).
		Msg("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			s.logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	})

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/champions", s.handleChampions)
		r.Get("/champions/youngest", s.handleYoungest)
		r.Get("/champions/oldest", s.handleOldest)
		r.Get("/rollups/nationality", s.handleNationalityRollup)
		r.Get("/rollups/constructors", s.handleConstructorRollup)
		r.Get("/rollups/drivers", s.handleDriverRollup)
		r.Get("/wins/heatmap", s.handleHeatmap)
		r.Get("/winners", s.handleWinners)
		r.Get("/standings", s.handleStandings)
		r.Get("/qualifying", s.handleQualifying)
		r.Get("/circuits", s.handleCircuits)
		r.Get("/laps", s.handleLaps)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		s.logger.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
