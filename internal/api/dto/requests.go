package dto

import "github.com/shopspring/decimal"

// ReconcileRequest starts a reconciliation pass.
// Apply defaults to true when omitted; send false for a dry pass.
type ReconcileRequest struct {
	Apply        *bool `json:"apply"`
	LookbackDays int   `json:"lookback_days"`
}

// ApplyOrDefault resolves the optional apply flag.
func (r *ReconcileRequest) ApplyOrDefault() bool {
	if r.Apply == nil {
		return true
	}
	return *r.Apply
}

// SettleRequest settles receivables manually, outside a reconciliation
// pass. PaidAmount and SettledAt are optional overrides; when omitted each
// receivable settles at its own face value, dated today.
type SettleRequest struct {
	IDs        []string         `json:"ids"`
	PaidAmount *decimal.Decimal `json:"valorPago"`
	SettledAt  string           `json:"dataLiquidacao"`
}
