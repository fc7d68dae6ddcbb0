package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
	appvalidator "github.com/upgraderly/redemption-code-service/internal/validator"
)

// mockRedeemService is a mock implementation of RedeemServiceInterface.
type mockRedeemService struct {
	redeemFn func(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error)
}

func (m *mockRedeemService) Redeem(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, rawCode, requesterIdentity)
	}
	return &service.RedemptionResult{Record: &model.RedemptionRecord{}}, nil
}

func setupRedeemTestApp(mockSvc *mockRedeemService) *fiber.App {
	app := fiber.New()
	h := NewRedeemHandler(mockSvc, appvalidator.New())
	app.Post("/api/redeem", h.Redeem)
	return app
}

func TestRedeem_Success(t *testing.T) {
	mockSvc := &mockRedeemService{
		redeemFn: func(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error) {
			assert.Equal(t, "0627005AAAABBBBMCD", rawCode)
			assert.Equal(t, "player-42", requesterIdentity)
			return &service.RedemptionResult{
				Record:         &model.RedemptionRecord{},
				FulfillmentURL: "https://downloads.example.com/mcd",
			}, nil
		},
	}
	app := setupRedeemTestApp(mockSvc)

	body := `{"code": "0627005AAAABBBBMCD", "requester_identity": "player-42"}`
	req := httptest.NewRequest(http.MethodPost, "/api/redeem", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result model.RedeemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "https://downloads.example.com/mcd", result.FulfillmentURL)
}

func TestRedeem_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "malformed",
			serviceErr:     service.ErrMalformedCode,
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "malformed code",
		},
		{
			name:           "not_found",
			serviceErr:     service.ErrCodeNotFound,
			expectedStatus: fiber.StatusNotFound,
			expectedError:  "code not found",
		},
		{
			name:           "inactive",
			serviceErr:     service.ErrCodeInactive,
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "code is inactive",
		},
		{
			name:           "expired",
			serviceErr:     service.ErrCodeExpired,
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "code has expired",
		},
		{
			name:           "exhausted",
			serviceErr:     service.ErrCodeExhausted,
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "code has reached maximum uses",
		},
		{
			name:           "internal",
			serviceErr:     errors.New("connection refused"),
			expectedStatus: fiber.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockRedeemService{
				redeemFn: func(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error) {
					return nil, tt.serviceErr
				},
			}
			app := setupRedeemTestApp(mockSvc)

			body := `{"code": "0627005AAAABBBBMCD", "requester_identity": "player-42"}`
			req := httptest.NewRequest(http.MethodPost, "/api/redeem", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var result map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
			assert.Equal(t, tt.expectedError, result["error"])
		})
	}
}

func TestRedeem_MissingFields(t *testing.T) {
	called := false
	mockSvc := &mockRedeemService{
		redeemFn: func(ctx context.Context, rawCode, requesterIdentity string) (*service.RedemptionResult, error) {
			called = true
			return nil, nil
		},
	}
	app := setupRedeemTestApp(mockSvc)

	tests := []struct {
		name string
		body string
	}{
		{name: "no_code", body: `{"requester_identity": "player-42"}`},
		{name: "blank_code", body: `{"code": "   ", "requester_identity": "player-42"}`},
		{name: "no_identity", body: `{"code": "0627005AAAABBBBMCD"}`},
		{name: "not_json", body: `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/redeem", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.False(t, called, "service must not be reached on invalid input")
		})
	}
}
