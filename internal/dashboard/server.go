// Package dashboard serves the latest analysis results as a read-only JSON
// API for reporting collaborators. It renders no UI; charts and widgets live
// in a separate frontend that consumes these endpoints.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/wheelhouse/internal/models"
	"github.com/eddiefleurent/wheelhouse/internal/storage"
)

// Server exposes snapshots from storage over HTTP.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	storage   storage.Interface
	logger    *logrus.Logger
	port      int
	authToken string
}

// Config holds the server settings.
type Config struct {
	Port      int
	AuthToken string
}

// NewServer creates the reporting API server.
func NewServer(cfg Config, store storage.Interface, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		storage:   store,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.authToken != "" {
		s.router.Use(s.authMiddleware)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/summary", s.handleSummary)
	s.router.Get("/api/positions", s.handlePositions)
	s.router.Get("/api/positions/{symbol}", s.handlePosition)
	s.router.Get("/api/cycles", s.handleCycles)
	s.router.Get("/api/legs", s.handleLegs)
	s.router.Get("/api/warnings", s.handleWarnings)
	s.router.Get("/api/history", s.handleHistory)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until Shutdown or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting dashboard server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// snapshot fetches the latest snapshot or writes 503 when no run has
// completed yet.
func (s *Server) snapshot(w http.ResponseWriter) *storage.Snapshot {
	snap := s.storage.Latest()
	if snap == nil {
		http.Error(w, "No analysis available yet", http.StatusServiceUnavailable)
		return nil
	}
	return snap
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		s.writeJSON(w, snap.Summary)
	}
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		s.writeJSON(w, snap.Positions)
	}
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	symbol := chi.URLParam(r, "symbol")
	pos, ok := snap.Positions[symbol]
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, pos)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	switch r.URL.Query().Get("status") {
	case "active":
		s.writeJSON(w, snap.ActiveCycles)
	case "completed":
		s.writeJSON(w, snap.CompletedCycles)
	case "":
		all := make([]models.WheelCycle, 0, len(snap.ActiveCycles)+len(snap.CompletedCycles))
		all = append(all, snap.ActiveCycles...)
		all = append(all, snap.CompletedCycles...)
		s.writeJSON(w, all)
	default:
		http.Error(w, "status must be active or completed", http.StatusBadRequest)
	}
}

func (s *Server) handleLegs(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		s.writeJSON(w, snap.OpenLegs)
	}
}

func (s *Server) handleWarnings(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		s.writeJSON(w, snap.Warnings)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.storage.RunHistory())
}
