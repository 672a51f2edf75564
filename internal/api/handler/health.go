package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/chinquiz/internal/api/apierr"
	"github.com/mcoot/chinquiz/internal/api/response"
)

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks
type HealthHandler struct {
	storage Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		logger:  logger,
	}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		WriteError(w, apierr.NewUnavailableError())
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
