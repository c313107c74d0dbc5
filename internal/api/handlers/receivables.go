package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// ReceivablesHandler handles receivable-related HTTP requests.
type ReceivablesHandler struct {
	*Base
}

// NewReceivablesHandler creates a new receivables handler.
func NewReceivablesHandler(repo storage.Repository) *ReceivablesHandler {
	return &ReceivablesHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/receivables - returns all receivables in store order.
func (h *ReceivablesHandler) List(w http.ResponseWriter, r *http.Request) {
	receivables, err := h.repo.ListReceivables()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ReceivableListResponse{
		Receivables: receivables,
		Count:       len(receivables),
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/receivables/{id} - returns a single receivable.
func (h *ReceivablesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("receivable ID is required"))
		return
	}

	receivable, err := h.repo.GetReceivable(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("receivable"))
		return
	}

	h.WriteJSON(w, http.StatusOK, receivable)
}

// Create handles POST /api/receivables - registers a new receivable.
func (h *ReceivablesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var receivable storage.Receivable
	if err := json.NewDecoder(r.Body).Decode(&receivable); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if !receivable.FaceValue.IsPositive() {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("valor must be positive"))
		return
	}
	if receivable.ID == "" {
		receivable.ID = uuid.NewString()
	}
	receivable.Status = storage.StatusActive
	receivable.PaidAmount = nil
	receivable.SettledAt = ""
	receivable.SettledBy = ""
	receivable.StatementID = ""

	if err := h.repo.CreateReceivable(&receivable); err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, receivable)
}

// Seed handles POST /api/receivables/seed - bulk-loads receivables into an
// empty store. A store that already holds receivables is left untouched.
func (h *ReceivablesHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var receivables []storage.Receivable
	if err := json.NewDecoder(r.Body).Decode(&receivables); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if len(receivables) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("at least one receivable is required"))
		return
	}

	for i := range receivables {
		if !receivables[i].FaceValue.IsPositive() {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError("valor must be positive"))
			return
		}
		if receivables[i].ID == "" {
			receivables[i].ID = uuid.NewString()
		}
	}

	inserted, err := h.repo.SeedReceivables(receivables)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	total, err := h.repo.CountReceivables()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.SeedResponse{
		Inserted: inserted,
		Total:    total,
	})
}
