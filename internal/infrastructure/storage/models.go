package storage

import (
	"github.com/shopspring/decimal"
)

// Receivable lifecycle states. A receivable transitions ativo -> liquidado
// at most once; liquidado is terminal.
const (
	StatusActive  = "ativo"
	StatusSettled = "liquidado"
)

// Settlement markers recorded in ConciliadoPor.
const (
	SettledByAuto   = "auto-ihold"
	SettledByManual = "manual"
)

// Receivable is a credit right (duplicata) tracked by the securitizer.
// JSON tags keep the wire names used by the dashboard and the seed files.
type Receivable struct {
	ID             string          `json:"id"`
	Duplicata      string          `json:"dupl"`
	Originator     string          `json:"cedente"`
	Debtor         string          `json:"sacado"`
	OriginatorCNPJ string          `json:"cnpjCedente"`
	DebtorCNPJ     string          `json:"cnpjSacado"`
	FaceValue      decimal.Decimal `json:"valor"`
	DueDate        string          `json:"vencto,omitempty"`
	Operation      string          `json:"op,omitempty"`
	AcquiredAt     string          `json:"dataAquisicao,omitempty"`
	Status         string          `json:"status"`

	// Settlement fields, populated only on the ativo -> liquidado transition.
	PaidAmount  *decimal.Decimal `json:"valorPago,omitempty"`
	SettledAt   string           `json:"dataLiquidacao,omitempty"`
	SettledBy   string           `json:"conciliadoPor,omitempty"`
	StatementID string           `json:"statementId,omitempty"`
}

// IsActive reports whether the receivable is still eligible for matching.
func (r *Receivable) IsActive() bool {
	return r.Status == StatusActive
}

// ReconRun is a historical record of one reconciliation pass.
type ReconRun struct {
	ID           int64  `json:"id"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
	LookbackDays int    `json:"lookback_days"`
	Apply        bool   `json:"apply"`
	Analyzed     int    `json:"analyzed"`
	Matched      int    `json:"matched"`
	Applied      int    `json:"applied"`
	Source       string `json:"source,omitempty"` // "fresh" or "cached"
	Status       string `json:"status"`
}

// Params holds the securitizer's operation parameters.
type Params struct {
	DiscountRate   float64   `json:"txDesconto"`
	Royalty        float64   `json:"royalty"`
	SiderTermDays  int       `json:"prazoSider"`
	MarketTermDays int       `json:"prazoMercado"`
	RegressiveIR   []float64 `json:"irRegressivo"`
	IssuerName     string    `json:"nomeSecuritizadora"`
	IssuerCNPJ     string    `json:"cnpjSecuritizadora"`
	BankAccount    string    `json:"contaBanco"`
}

// DefaultParams returns the parameters a fresh installation starts with.
func DefaultParams() Params {
	return Params{
		DiscountRate:   2.50,
		Royalty:        1.00,
		SiderTermDays:  30,
		MarketTermDays: 3,
		RegressiveIR:   []float64{22.5, 20, 17.5, 15},
		IssuerName:     "EFIX Securitizadora S.A.",
		IssuerCNPJ:     "60.756.859/0001-57",
		BankAccount:    "Bco 332 · Ag 0001 · Conta Segregada",
	}
}
