package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
)

// HelperServiceInterface defines the interface for reseller management logic.
type HelperServiceInterface interface {
	Create(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error)
	List(ctx context.Context) ([]model.Helper, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateHelperRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) ([]model.HelperStats, error)
}

// HelperHandler handles HTTP requests for reseller administration.
type HelperHandler struct {
	service   HelperServiceInterface
	validator *validator.Validate
}

// NewHelperHandler creates a new HelperHandler with the given service and validator.
func NewHelperHandler(svc HelperServiceInterface, v *validator.Validate) *HelperHandler {
	return &HelperHandler{service: svc, validator: v}
}

// CreateHelper handles POST /api/helpers requests.
func (h *HelperHandler) CreateHelper(c *fiber.Ctx) error {
	var req model.CreateHelperRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	helper, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("helper_name", req.Name).Msg("failed to create helper")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"helper": helper})
}

// ListHelpers handles GET /api/helpers requests.
func (h *HelperHandler) ListHelpers(c *fiber.Ctx) error {
	helpers, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list helpers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"helpers": helpers})
}

// UpdateHelper handles PATCH /api/helpers/:id requests.
func (h *HelperHandler) UpdateHelper(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a valid uuid"})
	}

	var req model.UpdateHelperRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Update(c.Context(), id, &req); err != nil {
		if errors.Is(err, service.ErrHelperNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "helper not found"})
		}
		log.Error().Err(err).Str("helper_id", id.String()).Msg("failed to update helper")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteHelper handles DELETE /api/helpers/:id requests.
func (h *HelperHandler) DeleteHelper(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a valid uuid"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrHelperNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "helper not found"})
		}
		log.Error().Err(err).Str("helper_id", id.String()).Msg("failed to delete helper")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// HelperStats handles GET /api/helpers/stats requests.
func (h *HelperHandler) HelperStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute helper stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"stats": stats})
}
