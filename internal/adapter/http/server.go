package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CycleRunner executes one alert cycle and returns its result text.
type CycleRunner interface {
	Run(ctx context.Context, ref domain.Point, radiusKm float64) (string, error)
}

// AlertLogReader exposes the read-only alert log query surface.
type AlertLogReader interface {
	QueryByDay(ctx context.Context, day time.Time) ([]domain.AlertRecord, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Defaults are the reference point and radius used when a trigger request
// omits them.
type Defaults struct {
	Reference domain.Point
	RadiusKm  float64
}

// Server exposes health, readiness, metrics, the on-demand trigger, and the
// alert log query endpoints.
type Server struct {
	httpServer *http.Server
	runner     CycleRunner
	alertLog   AlertLogReader
	defaults   Defaults
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /check, and /alerts/today routes.
func NewServer(addr string, runner CycleRunner, alertLog AlertLogReader, ready ReadinessChecker, defaults Defaults, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second, // a cycle waits on feed, model, and push calls
			IdleTimeout:  60 * time.Second,
		},
		runner:   runner,
		alertLog: alertLog,
		defaults: defaults,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /check", s.handleCheck)
	mux.HandleFunc("GET /alerts/today", s.handleAlertsToday)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleCheck runs one cycle on demand. The caller always gets a plain text
// result: a summary or one of the fixed messages, never a raw error.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ref := s.defaults.Reference
	radius := s.defaults.RadiusKm

	var parseErr error
	if v := r.URL.Query().Get("lat"); v != "" {
		ref.Latitude, parseErr = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("lng"); v != "" && parseErr == nil {
		ref.Longitude, parseErr = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("radius"); v != "" && parseErr == nil {
		radius, parseErr = strconv.ParseFloat(v, 64)
	}
	if parseErr != nil {
		writeText(w, http.StatusBadRequest, "lat, lng, and radius must be numbers")
		return
	}

	result, err := s.runner.Run(r.Context(), ref, radius)
	if err != nil {
		s.logger.Error("check cycle failed", "error", err)
		writeText(w, http.StatusOK, pipeline.ResultError)
		return
	}
	writeText(w, http.StatusOK, result)
}

// handleAlertsToday returns today's alert log entries, newest first, as
// formatted text.
func (s *Server) handleAlertsToday(w http.ResponseWriter, r *http.Request) {
	records, err := s.alertLog.QueryByDay(r.Context(), time.Now().UTC())
	if err != nil {
		s.logger.Error("alert log query failed", "error", err)
		writeText(w, http.StatusInternalServerError, "alert log unavailable")
		return
	}

	if len(records) == 0 {
		writeText(w, http.StatusOK, "No alerts today.")
		return
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%s [%s] %s\n",
			rec.Timestamp.UTC().Format("15:04"),
			strings.ToUpper(rec.Priority.String()),
			rec.Message,
		)
	}
	writeText(w, http.StatusOK, b.String())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
