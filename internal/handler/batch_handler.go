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

// BatchServiceInterface defines the interface for batch issuance logic.
type BatchServiceInterface interface {
	Generate(ctx context.Context, req *model.BatchIssueRequest) (*model.Batch, []string, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]model.Batch, error)
	Codes(ctx context.Context, batchID uuid.UUID) ([]model.Code, error)
}

// BatchHandler handles HTTP requests for batch issuance.
type BatchHandler struct {
	service   BatchServiceInterface
	validator *validator.Validate
}

// NewBatchHandler creates a new BatchHandler with the given service and validator.
func NewBatchHandler(svc BatchServiceInterface, v *validator.Validate) *BatchHandler {
	return &BatchHandler{service: svc, validator: v}
}

// CreateBatch handles POST /api/batches requests.
func (h *BatchHandler) CreateBatch(c *fiber.Ctx) error {
	var req model.BatchIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	batch, codes, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("batch_name", req.BatchName).Msg("failed to issue batch")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(model.BatchIssueResponse{
		BatchID: batch.ID,
		Codes:   codes,
	})
}

// ListBatches handles GET /api/batches requests, optionally filtered by
// ?owner_id=.
func (h *BatchHandler) ListBatches(c *fiber.Ctx) error {
	var ownerID *uuid.UUID
	if raw := c.Query("owner_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: owner_id must be a valid uuid"})
		}
		ownerID = &id
	}

	batches, err := h.service.List(c.Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list batches")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"batches": batches})
}

// BatchCodes handles GET /api/batches/:id/codes requests.
func (h *BatchHandler) BatchCodes(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a valid uuid"})
	}

	codes, err := h.service.Codes(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "batch not found"})
		}
		log.Error().Err(err).Str("batch_id", id.String()).Msg("failed to list batch codes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(fiber.Map{"codes": codes})
}
