package recon

import (
	"github.com/shopspring/decimal"
)

// Confidence tags how a match was made
type Confidence string

const (
	// ConfidenceExact means the statement amount matched the face value
	// within the amount tolerance.
	ConfidenceExact Confidence = "exact"

	// ConfidenceCNPJ means the debtor's tax ID was found inside the
	// statement description.
	ConfidenceCNPJ Confidence = "cnpj"
)

// Config holds engine configuration
type Config struct {
	AmountTolerance decimal.Decimal // absolute, default 0.01 (one centavo)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		AmountTolerance: decimal.NewFromFloat(0.01),
	}
}

// Match pairs one statement entry with one receivable.
// Matches are ephemeral: they are computed fresh on every reconciliation
// pass and only their effect (the settlement) is persisted.
type Match struct {
	ReceivableID string          `json:"recId"`
	Duplicata    string          `json:"dupl,omitempty"`
	FaceValue    decimal.Decimal `json:"valorFace"`
	PaidAmount   decimal.Decimal `json:"valorPago"`
	Debtor       string          `json:"sacado,omitempty"`
	StatementID  string          `json:"stmtId"`
	Description  string          `json:"desc,omitempty"`
	Date         string          `json:"date"`
	Confidence   Confidence      `json:"conf"`
}
