package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"quickpoll/internal/live"
	"quickpoll/internal/poll"
	"quickpoll/internal/store"
)

// Server exposes the operational HTTP surface next to the WebSocket
// endpoint. Everything a teacher or student does goes over the socket; this
// only answers health probes.
type Server struct {
	suite    *poll.Suite
	registry *live.Registry
	store    *store.Manager
}

// NewServer creates the API server.
func NewServer(suite *poll.Suite, registry *live.Registry, manager *store.Manager) *Server {
	return &Server{suite: suite, registry: registry, store: manager}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/health" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.handleHealth(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	if err := s.store.HealthCheck(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      status,
		"rooms":       len(s.suite.Rooms()),
		"connections": s.registry.SessionCount(),
	})
}
