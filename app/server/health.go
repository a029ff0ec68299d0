package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairway-collective/links-backend/app/shared/httputils"
)

const healthCheckTimeout = 2 * time.Second

// DatabasePinger is the slice of bun.DB the health check needs.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

// BusChecker is the slice of the event bus the health check needs.
type BusChecker interface {
	IsConnected() bool
}

// HealthHandler answers liveness probes with the state of the two backing
// services.
type HealthHandler struct {
	db     DatabasePinger
	bus    BusChecker
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DatabasePinger, bus BusChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		bus:    bus,
		logger: logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	NATS     string `json:"nats"`
}

// Handle serves GET /api/v1/healthz. Responds 200 when both Postgres and NATS
// are reachable, 503 otherwise.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := healthResponse{Status: "ok", Database: "ok", NATS: "ok"}
	status := http.StatusOK

	if h.db == nil {
		response.Database = "not configured"
	} else if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check: database unreachable", slog.Any("error", err))
		response.Database = "unreachable"
	}

	if h.bus == nil {
		response.NATS = "not configured"
	} else if !h.bus.IsConnected() {
		h.logger.WarnContext(ctx, "Health check: NATS disconnected")
		response.NATS = "disconnected"
	}

	if response.Database != "ok" || response.NATS != "ok" {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	httputils.RespondJSON(w, status, response)
}
