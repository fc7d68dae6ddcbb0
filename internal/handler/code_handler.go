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

// CodeServiceInterface defines the interface for code issuance logic.
type CodeServiceInterface interface {
	Generate(ctx context.Context, req *model.GenerateCodeRequest) (*model.Code, error)
	MarkSold(ctx context.Context, codeID uuid.UUID, price *float64) error
	SetActive(ctx context.Context, codeID uuid.UUID, active bool) error
}

// CodeHandler handles HTTP requests for code issuance and administration.
type CodeHandler struct {
	service   CodeServiceInterface
	validator *validator.Validate
}

// NewCodeHandler creates a new CodeHandler with the given service and validator.
func NewCodeHandler(svc CodeServiceInterface, v *validator.Validate) *CodeHandler {
	return &CodeHandler{service: svc, validator: v}
}

// GenerateCode handles POST /api/codes requests to issue a single code.
func (h *CodeHandler) GenerateCode(c *fiber.Ctx) error {
	var req model.GenerateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	code, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, service.ErrCodeExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "code already exists"})
		}
		log.Error().Err(err).Str("product_type", req.ProductType).Msg("failed to generate code")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("code_id", code.ID.String()).
		Str("product_type", string(code.ProductType)).
		Int("max_uses", code.MaxUses).
		Msg("code generated")

	return c.Status(fiber.StatusCreated).JSON(model.GenerateCodeResponse{Code: code.RawString})
}

// MarkSold handles POST /api/codes/:id/sold requests.
func (h *CodeHandler) MarkSold(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a valid uuid"})
	}

	var req model.MarkSoldRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := h.validator.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
		}
	}

	if err := h.service.MarkSold(c.Context(), id, req.SoldPrice); err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "code not found"})
		}
		log.Error().Err(err).Str("code_id", id.String()).Msg("failed to mark code sold")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// SetActive handles POST /api/codes/:id/active requests to flip the
// kill-switch on a code.
func (h *CodeHandler) SetActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a valid uuid"})
	}

	var req model.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.SetActive(c.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "code not found"})
		}
		log.Error().Err(err).Str("code_id", id.String()).Msg("failed to set code active flag")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"success": true})
}
