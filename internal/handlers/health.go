package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hmnguyen-dev/tutien-engine/internal/services"
	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	store    storage.Storage
	narrator services.NarratorService
	logger   *slog.Logger
}

func NewHealthHandler(store storage.Storage, narrator services.NarratorService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:    store,
		narrator: narrator,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if err := h.narrator.Ping(ctx); err != nil {
		h.logger.Warn("Narrator health check failed", "error", err)
		components["narrator"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["narrator"] = "healthy"
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, status, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "tutien-engine",
		Components: components,
	})
}
