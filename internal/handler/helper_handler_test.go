package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
	appvalidator "github.com/upgraderly/redemption-code-service/internal/validator"
)

// mockHelperService is a mock implementation of HelperServiceInterface.
type mockHelperService struct {
	createFn func(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error)
	listFn   func(ctx context.Context) ([]model.Helper, error)
	updateFn func(ctx context.Context, id uuid.UUID, req *model.UpdateHelperRequest) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
	statsFn  func(ctx context.Context) ([]model.HelperStats, error)
}

func (m *mockHelperService) Create(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Helper{}, nil
}

func (m *mockHelperService) List(ctx context.Context) ([]model.Helper, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Helper{}, nil
}

func (m *mockHelperService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateHelperRequest) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil
}

func (m *mockHelperService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockHelperService) Stats(ctx context.Context) ([]model.HelperStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return []model.HelperStats{}, nil
}

func setupHelperTestApp(mockSvc *mockHelperService) *fiber.App {
	app := fiber.New()
	h := NewHelperHandler(mockSvc, appvalidator.New())
	app.Post("/api/helpers", h.CreateHelper)
	app.Get("/api/helpers", h.ListHelpers)
	app.Get("/api/helpers/stats", h.HelperStats)
	app.Patch("/api/helpers/:id", h.UpdateHelper)
	app.Delete("/api/helpers/:id", h.DeleteHelper)
	return app
}

func TestCreateHelper_Success(t *testing.T) {
	mockSvc := &mockHelperService{
		createFn: func(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error) {
			assert.Equal(t, "Alex", req.Name)
			return &model.Helper{ID: uuid.New(), Name: req.Name, Code: "H-ABC123", IsActive: true}, nil
		},
	}
	app := setupHelperTestApp(mockSvc)

	body := `{"name": "Alex", "password": "hunter2hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/helpers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result struct {
		Helper model.Helper `json:"helper"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Alex", result.Helper.Name)
	assert.Equal(t, "H-ABC123", result.Helper.Code)
}

func TestCreateHelper_ShortPassword(t *testing.T) {
	called := false
	mockSvc := &mockHelperService{
		createFn: func(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error) {
			called = true
			return nil, nil
		},
	}
	app := setupHelperTestApp(mockSvc)

	body := `{"name": "Alex", "password": "short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/helpers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, called)
}

func TestUpdateHelper_NotFound(t *testing.T) {
	mockSvc := &mockHelperService{
		updateFn: func(ctx context.Context, id uuid.UUID, req *model.UpdateHelperRequest) error {
			return service.ErrHelperNotFound
		},
	}
	app := setupHelperTestApp(mockSvc)

	body := `{"is_active": false}`
	req := httptest.NewRequest(http.MethodPatch, "/api/helpers/"+uuid.NewString(), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateHelper_InvalidID(t *testing.T) {
	app := setupHelperTestApp(&mockHelperService{})

	body := `{"is_active": false}`
	req := httptest.NewRequest(http.MethodPatch, "/api/helpers/nope", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteHelper_Success(t *testing.T) {
	id := uuid.New()
	var captured uuid.UUID
	mockSvc := &mockHelperService{
		deleteFn: func(ctx context.Context, deleteID uuid.UUID) error {
			captured = deleteID
			return nil
		},
	}
	app := setupHelperTestApp(mockSvc)

	req := httptest.NewRequest(http.MethodDelete, "/api/helpers/"+id.String(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, id, captured)
}

func TestHelperStats(t *testing.T) {
	mockSvc := &mockHelperService{
		statsFn: func(ctx context.Context) ([]model.HelperStats, error) {
			return []model.HelperStats{
				{Helper: model.Helper{Name: "Alex"}, TotalCodes: 4, UsedCodes: 1, SoldCodes: 3, TotalRevenue: 14.5},
			}, nil
		},
	}
	app := setupHelperTestApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/helpers/stats", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Stats []model.HelperStats `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Stats, 1)
	assert.Equal(t, 4, result.Stats[0].TotalCodes)
	assert.InDelta(t, 14.5, result.Stats[0].TotalRevenue, 0.001)
}
