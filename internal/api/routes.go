package api

import (
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/metatool-io/metatool/internal/api/middleware"
)

type (
	// VersionResponse is the payload of GET /api/v1/version.
	VersionResponse struct {
		Version     string `json:"version"`
		ServiceName string `json:"serviceName"`
	}

	// HealthResponse is the payload of GET /api/v1/health.
	HealthResponse struct {
		Status      string `json:"status"`
		ServiceName string `json:"serviceName"`
		Version     string `json:"version"`
		Uptime      string `json:"uptime,omitempty"`
	}
)

// setupRoutes registers all HTTP routes for the API server.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/version", s.handleVersion)
	mux.HandleFunc("POST /api/v1/validate", s.handleValidate)
	mux.HandleFunc("/", s.handleNotFound)
}

// handlePing responds to ping requests for basic liveness probing.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		s.logger.Error("Failed to write ping response")
	}
}

// handleHealth reports service status and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, HealthResponse{
		Status:      "ok",
		ServiceName: "metatool",
		Version:     s.version,
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleVersion reports the service version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, VersionResponse{
		Version:     s.version,
		ServiceName: "metatool",
	})
}

// handleNotFound is the catch-all for unregistered paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("no such endpoint"))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response",
			slog.String("path", r.URL.Path),
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
		)
	}
}
