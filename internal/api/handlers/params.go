package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// ParamsHandler handles operation parameter requests.
type ParamsHandler struct {
	*Base
}

// NewParamsHandler creates a new params handler.
func NewParamsHandler(repo storage.Repository) *ParamsHandler {
	return &ParamsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/params - returns the operation parameters.
func (h *ParamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	params, err := h.repo.GetParams()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, params)
}

// Update handles PUT /api/params - replaces the operation parameters.
func (h *ParamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params storage.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if params.DiscountRate < 0 || params.Royalty < 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("rates must not be negative"))
		return
	}

	if err := h.repo.UpdateParams(&params); err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, params)
}
