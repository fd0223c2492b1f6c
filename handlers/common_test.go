package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requestWithIDParam(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/clients/"+value, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestParseIDParam(t *testing.T) {
	t.Run("parses a numeric id", func(t *testing.T) {
		id, err := parseIDParam(requestWithIDParam("42"), "id")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-3"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			_, err := parseIDParam(requestWithIDParam(tt.value), "id")
			assert.Error(t, err)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", defaultPageLimit, 0},
		{"explicit values", "limit=20&offset=40", 20, 40},
		{"limit is capped", "limit=10000", maxPageLimit, 0},
		{"garbage falls back to defaults", "limit=abc&offset=-5", defaultPageLimit, 0},
		{"zero limit falls back to the default", "limit=0", defaultPageLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/clients?"+tt.query, nil)
			limit, offset := parsePagination(req)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestCreateClientRequestValidation(t *testing.T) {
	t.Run("invalid JSON body is a bad request", func(t *testing.T) {
		handler := NewClientHandler(nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/clients", nil)
		w := httptest.NewRecorder()

		handler.HandleCreateClient(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
