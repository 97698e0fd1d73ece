package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/cache"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/formats"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/hub"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/scoring"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store   db.Store
	scores  *scoring.Manager
	cache   *cache.SnapshotWriter
	hub     *hub.Hub
	formats *formats.Registry

	// webhookSecret signs billing webhook payloads.
	webhookSecret string

	// ctx outlives individual requests; websocket pumps run on it.
	ctx context.Context
}

// NewHandler creates a new handler with dependencies
func NewHandler(ctx context.Context, store db.Store, scores *scoring.Manager, snapshots *cache.SnapshotWriter, h *hub.Hub, reg *formats.Registry, webhookSecret string) *Handler {
	return &Handler{
		store:         store,
		scores:        scores,
		cache:         snapshots,
		hub:           h,
		formats:       reg,
		webhookSecret: webhookSecret,
		ctx:           ctx,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"service":        "cricket-hub-live",
		"active_clients": h.hub.GetClientCount(),
	})
}

// Metrics returns hub metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.hub.GetMetrics())
}

// Formats lists the configured match formats
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"formats": h.formats.Names(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Warn(message, zap.Error(err))
	}
	respondJSON(w, status, map[string]string{"error": message})
}
