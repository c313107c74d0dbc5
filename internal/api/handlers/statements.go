package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/efix-securitizadora/recon-backend/internal/api/dto"
	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
)

// BalanceSource fetches the account balance from the bank.
type BalanceSource interface {
	Balance(ctx context.Context) (json.RawMessage, error)
}

// StatementsHandler proxies the bank's statement feed and balance to the
// dashboard, with the same cached fallback reconciliation uses.
type StatementsHandler struct {
	*Base
	service *recon.Service
	balance BalanceSource

	mu            sync.Mutex
	cachedBalance json.RawMessage
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(service *recon.Service, balance BalanceSource) *StatementsHandler {
	return &StatementsHandler{
		Base:    &Base{},
		service: service,
		balance: balance,
	}
}

// List handles GET /api/statements?from=&to= - returns the normalized feed.
// The window defaults to the last 30 days.
func (h *StatementsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	to := ParseDateParam(r, "to", now)
	from := ParseDateParam(r, "from", to.AddDate(0, 0, -30))

	statements, source, err := h.service.Statements(r.Context(), from, to)
	if err != nil {
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatementListResponse{
		Statements: statements,
		Source:     source,
		Count:      len(statements),
	})
}

// GetBalance handles GET /api/balance - proxies the bank balance payload,
// falling back to the last successful response when the bank is down.
func (h *StatementsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	payload, err := h.balance.Balance(r.Context())

	h.mu.Lock()
	if err == nil {
		h.cachedBalance = payload
	} else if h.cachedBalance != nil {
		payload = h.cachedBalance
	}
	cached := err != nil && payload != nil
	h.mu.Unlock()

	if payload == nil {
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	source := recon.SourceFresh
	if cached {
		source = recon.SourceCached
	}

	h.WriteJSON(w, http.StatusOK, dto.BalanceResponse{
		Balance: payload,
		Source:  source,
	})
}
