package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
)

// PoolServiceInterface defines the interface for pool allocation logic.
type PoolServiceInterface interface {
	Claim(ctx context.Context, req *model.PoolClaimRequest) (*model.PoolEntry, error)
	BulkAdd(ctx context.Context, req *model.PoolAddRequest) (int, error)
	Stats(ctx context.Context) (*model.PoolStatsResponse, error)
}

// PoolHandler handles HTTP requests for the Roblox gift-code pool.
type PoolHandler struct {
	service   PoolServiceInterface
	validator *validator.Validate
}

// NewPoolHandler creates a new PoolHandler with the given service and validator.
func NewPoolHandler(svc PoolServiceInterface, v *validator.Validate) *PoolHandler {
	return &PoolHandler{service: svc, validator: v}
}

// AddCodes handles POST /api/roblox-pool requests to bulk-load inventory.
func (h *PoolHandler) AddCodes(c *fiber.Ctx) error {
	var req model.PoolAddRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	added, err := h.service.BulkAdd(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("tier", req.RewardTier).Msg("failed to add pool codes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().Str("tier", req.RewardTier).Int("added", added).Msg("pool codes added")
	return c.Status(fiber.StatusCreated).JSON(model.PoolAddResponse{Added: added})
}

// Claim handles POST /api/roblox-pool/claim requests.
func (h *PoolHandler) Claim(c *fiber.Ctx) error {
	var req model.PoolClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	entry, err := h.service.Claim(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoInventory) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no available codes for this tier"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("tier", req.RewardTier).
			Msg("failed to claim pool code")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.PoolClaimResponse{
		RawCode:      entry.RawCode,
		RewardAmount: entry.RewardAmount,
	})
}

// Stats handles GET /api/roblox-pool/stats requests.
func (h *PoolHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to read pool stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(stats)
}
