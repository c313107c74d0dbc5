package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/api/handlers"
)

// setChiURLParam injects a chi route parameter for handler-level tests.
func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// fakeBankHealth is a canned banking session check
type fakeBankHealth struct {
	healthy bool
}

func (f *fakeBankHealth) HealthCheck() bool {
	return f.healthy
}

func TestHealthHandler(t *testing.T) {
	t.Run("reports store and banking state", func(t *testing.T) {
		repo := seededRepo(t)
		handler := handlers.NewHealthHandler(repo, &fakeBankHealth{healthy: true})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.HealthResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "ok", response.Status)
		assert.NotEmpty(t, response.Timestamp)
		assert.Equal(t, 2, response.Receivables)
		assert.True(t, response.Banking)
	})

	t.Run("tolerates absent collaborators", func(t *testing.T) {
		handler := handlers.NewHealthHandler(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.HealthResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "ok", response.Status)
		assert.False(t, response.Banking)
	})
}
