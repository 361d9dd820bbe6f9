package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/frontend"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/usecase"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router      chi.Router
	reportUC    usecase.Report
	dashboardUC usecase.Dashboard
	pages       *PageRenderer
	slackCmd    http.Handler
}

// ServerOption configures optional routes of Server
type ServerOption func(*Server)

// WithSlackCommand mounts the slash command endpoint
func WithSlackCommand(h http.Handler) ServerOption {
	return func(s *Server) {
		s.slackCmd = h
	}
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	addr string,
	reportUC usecase.Report,
	dashboardUC usecase.Dashboard,
	pages *PageRenderer,
	opts ...ServerOption,
) (*Server, error) {
	if reportUC == nil {
		return nil, goerr.New("report usecase is required")
	}

	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(SecurityHeaders)
	router.Use(middleware.Recoverer)

	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:      router,
		reportUC:    reportUC,
		dashboardUC: dashboardUC,
		pages:       pages,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Health check
	router.Get("/health", handleHealth)

	// API routes
	router.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Get("/months", s.handleMonths)
	})

	// Slack slash command
	if s.slackCmd != nil {
		router.Post("/hooks/slack/command", s.slackCmd.ServeHTTP)
	}

	// Dashboard page
	if dashboardUC != nil && pages != nil {
		router.Get("/", s.handleDashboard)
	}

	// Static assets
	fs, err := frontend.GetHTTPFS()
	if err != nil {
		ctxlog.From(ctx).Warn("Embedded static assets are not available", "error", err)
	} else {
		router.Handle("/static/*", http.StripPrefix("/static", NewStaticHandler(fs)))
	}

	return s, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rapor",
	})
}

// statusFromError maps domain errors to HTTP status codes and the message
// shown to clients. Unexpected failures never expose their details.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidMonth):
		return http.StatusBadRequest, "invalid month"
	case errors.Is(err, model.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown data type"
	case errors.Is(err, model.ErrMonthNotFound):
		return http.StatusNotFound, "month data not found"
	case errors.Is(err, model.ErrCategoryNotFound):
		return http.StatusNotFound, "category data not found"
	default:
		return http.StatusInternalServerError, "failed to load data"
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode JSON response", "error", err)
	}
}

// writeError logs err and writes a JSON error response
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)

	logger := ctxlog.From(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Info("Request rejected", "status", status, "error", err)
	}

	writeJSON(w, r, status, map[string]string{
		"error": message,
	})
}
