package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports dependency health.
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler creates a health handler. redis may be nil.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check pings the database and, when configured, Redis. The database is
// required; Redis only degrades.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthResponse{Database: "ok"}
	status := fiber.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		resp.Database = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			slog.Warn("health check: redis unreachable", "error", err)
			resp.Redis = "unreachable"
		}
	}

	if status != fiber.StatusOK {
		return c.Status(status).JSON(fiber.Map{
			"status": "error",
			"error":  "database unreachable",
			"data":   resp,
		})
	}
	return jsonSuccess(c, resp)
}
