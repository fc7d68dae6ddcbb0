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

// RedeemServiceInterface defines the interface for redemption logic.
type RedeemServiceInterface interface {
	Redeem(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error)
}

// RedeemHandler handles HTTP requests for code redemption.
type RedeemHandler struct {
	service   RedeemServiceInterface
	validator *validator.Validate
}

// NewRedeemHandler creates a new RedeemHandler with the given service and validator.
func NewRedeemHandler(svc RedeemServiceInterface, v *validator.Validate) *RedeemHandler {
	return &RedeemHandler{service: svc, validator: v}
}

// Redeem handles POST /api/redeem requests. Every failure maps to exactly
// one taxonomy entry; the handler never retries and never leaks more than
// the coarse category.
func (h *RedeemHandler) Redeem(c *fiber.Ctx) error {
	var req model.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	result, err := h.service.Redeem(c.Context(), req.Code, req.RequesterIdentity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed code"})
		case errors.Is(err, service.ErrCodeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "code not found"})
		case errors.Is(err, service.ErrCodeInactive):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is inactive"})
		case errors.Is(err, service.ErrCodeExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code has expired"})
		case errors.Is(err, service.ErrCodeExhausted):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code has reached maximum uses"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to redeem code")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("code_id", result.Record.CodeID.String()).
		Msg("code redeemed")

	return c.JSON(model.RedeemResponse{
		Success:        true,
		FulfillmentURL: result.FulfillmentURL,
	})
}
