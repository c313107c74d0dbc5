package dto

import (
	"encoding/json"
	"time"

	"github.com/efix-securitizadora/recon-backend/internal/adapters/banking"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
// Banking reflects whether the bank session currently holds a usable token.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Receivables int    `json:"recebiveis"`
	Banking     bool   `json:"banking"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ReceivableListResponse is returned when listing receivables.
type ReceivableListResponse struct {
	Receivables []storage.Receivable `json:"recebiveis"`
	Count       int                  `json:"count"`
}

// SeedResponse reports the outcome of a seed request.
// Inserted is zero when the store already held receivables.
type SeedResponse struct {
	Inserted int `json:"inseridos"`
	Total    int `json:"total"`
}

// SettleResponse reports how many receivables a manual settlement touched.
type SettleResponse struct {
	Settled int `json:"liquidados"`
}

// ReconRunListResponse is returned when listing reconciliation runs.
type ReconRunListResponse struct {
	Runs  []storage.ReconRun `json:"runs"`
	Count int                `json:"count"`
}

// StatementListResponse is returned by the statement feed passthrough.
// Source tells whether the feed came from the bank or the local cache.
type StatementListResponse struct {
	Statements []banking.Statement `json:"statements"`
	Source     string              `json:"fonte"`
	Count      int                 `json:"count"`
}

// BalanceResponse wraps the bank's balance payload as-is.
type BalanceResponse struct {
	Balance json.RawMessage `json:"saldo"`
	Source  string          `json:"fonte"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
