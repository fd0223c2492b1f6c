package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/salesdesk/crm-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "not found",
			err:        domain.NewNotFoundError("client", 42),
			wantStatus: 404,
			wantError:  "not_found",
		},
		{
			name:       "validation",
			err:        domain.NewValidationError("Contact name is required"),
			wantStatus: 400,
			wantError:  "bad_request",
		},
		{
			name:       "unauthorized",
			err:        domain.ErrInvalidCredentials,
			wantStatus: 401,
			wantError:  "unauthorized",
		},
		{
			name:       "forbidden",
			err:        domain.ErrInactiveUser,
			wantStatus: 403,
			wantError:  "forbidden",
		},
		{
			name:       "conflict",
			err:        domain.NewDomainError(domain.ErrorTypeConflict, "duplicate phone", nil),
			wantStatus: 409,
			wantError:  "conflict",
		},
		{
			name:       "internal",
			err:        domain.WrapInternal("query failed", errors.New("db down")),
			wantStatus: 500,
			wantError:  "internal_error",
		},
		{
			name:       "unknown errors fall through to 500",
			err:        errors.New("plain error"),
			wantStatus: 500,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantError, response.Error)
		})
	}

	t.Run("internal error details never reach the client", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, domain.WrapInternal("query failed", errors.New("password=hunter2")), logger)

		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "An internal error occurred", response.Message)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("validation details are echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := domain.NewValidationError("A client with this phone number already exists").
			WithDetail("phone", "+584121234567")
		HandleServiceError(w, err, logger)

		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "+584121234567", response.Details["phone"])
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, nil, logger)

		assert.Equal(t, 200, w.Code)
		assert.Empty(t, w.Body.String())
	})
}
