package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// ReconcileHandler handles reconciliation HTTP requests.
type ReconcileHandler struct {
	*Base
	service *recon.Service
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(repo storage.Repository, service *recon.Service) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    NewBase(repo),
		service: service,
	}
}

// Run handles POST /api/reconcile - executes one reconciliation pass.
// An empty body is allowed and means apply with the default lookback.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	result, err := h.service.Run(r.Context(), recon.Options{
		Apply:        req.ApplyOrDefault(),
		LookbackDays: req.LookbackDays,
	})
	if err != nil {
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// LastRun handles GET /api/reconcile/last - returns the most recent result.
func (h *ReconcileHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	result := h.service.LastRun()
	if result == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("reconciliation run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Runs handles GET /api/reconcile/runs - lists run history, newest first.
func (h *ReconcileHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListReconRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ReconRunListResponse{
		Runs:  runs,
		Count: len(runs),
	})
}

// Settle handles POST /api/settle - settles receivables manually.
func (h *ReconcileHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	settled, err := h.service.ManualSettle(req.IDs, req.PaidAmount, req.SettledAt)
	if err != nil {
		if errors.Is(err, recon.ErrNoIDs) {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError("ids is required"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.SettleResponse{Settled: settled})
}
