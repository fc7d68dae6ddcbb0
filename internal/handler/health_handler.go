package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness checks. The code store is the only
// dependency worth probing; everything else in the service is stateless.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check handles GET /health. Returns 200 {"status": "healthy"} when the
// database answers a ping, 503 otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
