package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efix-securitizadora/recon-backend/internal/adapters/banking"
	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/api/handlers"
	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/config"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// stubFeed is a canned statement source
type stubFeed struct {
	statements []banking.RawStatement
}

func (s *stubFeed) Statements(ctx context.Context, from, to time.Time) ([]banking.RawStatement, error) {
	return s.statements, nil
}

func newReconcileHandler(t *testing.T, feed []banking.RawStatement) (*handlers.ReconcileHandler, *storage.MockRepository) {
	t.Helper()

	repo := seededRepo(t)
	service := recon.NewService(repo, &stubFeed{statements: feed}, config.ReconConfig{LookbackDays: 30}, nil)
	return handlers.NewReconcileHandler(repo, service), repo
}

func TestReconcileHandler_Run(t *testing.T) {
	feed := []banking.RawStatement{
		{ID: "tx-1", Amount: "1000.00", Description: "PIX RECEBIDO", Date: "2026-08-29"},
	}

	t.Run("applies matches by default", func(t *testing.T) {
		handler, repo := newReconcileHandler(t, feed)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result recon.Result
		err := json.NewDecoder(rec.Body).Decode(&result)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Matched)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, recon.SourceFresh, result.Source)

		r, err := repo.GetReceivable("REC-1")
		require.NoError(t, err)
		assert.Equal(t, storage.StatusSettled, r.Status)
	})

	t.Run("empty body means apply", func(t *testing.T) {
		handler, repo := newReconcileHandler(t, feed)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", nil)
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, repo.SettleCalled)
	})

	t.Run("dry pass settles nothing", func(t *testing.T) {
		handler, repo := newReconcileHandler(t, feed)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(`{"apply":false}`))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result recon.Result
		err := json.NewDecoder(rec.Body).Decode(&result)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Matched)
		assert.Equal(t, 0, result.Applied)
		assert.False(t, repo.SettleCalled)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler, _ := newReconcileHandler(t, feed)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReconcileHandler_LastRun(t *testing.T) {
	handler, _ := newReconcileHandler(t, nil)

	t.Run("returns 404 before any run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reconcile/last", nil)
		rec := httptest.NewRecorder()

		handler.LastRun(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns the most recent result", func(t *testing.T) {
		runReq := httptest.NewRequest(http.MethodPost, "/api/reconcile", nil)
		handler.Run(httptest.NewRecorder(), runReq)

		req := httptest.NewRequest(http.MethodGet, "/api/reconcile/last", nil)
		rec := httptest.NewRecorder()

		handler.LastRun(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestReconcileHandler_Runs(t *testing.T) {
	handler, repo := newReconcileHandler(t, nil)

	runID, err := repo.StartReconRun(30, true)
	require.NoError(t, err)
	require.NoError(t, repo.CompleteReconRun(runID, 5, 2, 2, recon.SourceFresh, "ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/reconcile/runs", nil)
	rec := httptest.NewRecorder()

	handler.Runs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ReconRunListResponse
	err = json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Runs, 1)
	assert.Equal(t, 2, response.Runs[0].Applied)
}

func TestReconcileHandler_Settle(t *testing.T) {
	t.Run("settles the named receivables", func(t *testing.T) {
		handler, repo := newReconcileHandler(t, nil)

		body := `{"ids":["REC-1","REC-2"],"dataLiquidacao":"2026-08-30"}`
		req := httptest.NewRequest(http.MethodPost, "/api/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Settle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.SettleResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, 2, response.Settled)

		r, err := repo.GetReceivable("REC-1")
		require.NoError(t, err)
		assert.Equal(t, storage.SettledByManual, r.SettledBy)
		assert.Equal(t, "2026-08-30", r.SettledAt)
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		handler, _ := newReconcileHandler(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/settle", strings.NewReader(`{"ids":[]}`))
		rec := httptest.NewRecorder()

		handler.Settle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var response dto.APIError
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, dto.ErrCodeValidation, response.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler, _ := newReconcileHandler(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/settle", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()

		handler.Settle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
