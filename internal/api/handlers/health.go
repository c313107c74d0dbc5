package handlers

import (
	"net/http"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// BankHealth reports whether the banking session is currently usable.
type BankHealth interface {
	HealthCheck() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
	bank BankHealth
}

// NewHealthHandler creates a new health handler. Both collaborators are
// optional; absent ones simply leave their field at its zero value.
func NewHealthHandler(repo storage.Repository, bank BankHealth) *HealthHandler {
	return &HealthHandler{
		Base: &Base{repo: repo},
		bank: bank,
	}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := dto.NewHealthResponse()

	if h.repo != nil {
		if count, err := h.repo.CountReceivables(); err == nil {
			response.Receivables = count
		}
	}
	if h.bank != nil {
		response.Banking = h.bank.HealthCheck()
	}

	h.WriteJSON(w, http.StatusOK, response)
}
