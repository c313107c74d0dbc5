package banking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Normalize maps raw statement entries into canonical ones.
//
// All the tolerance for the feed's loose encoding lives here so the
// reconciliation engine's contract stays typed and total:
//   - id falls back to txid, then to a fresh random token
//   - amount falls back to value; an unparseable amount drops the entry
//   - description falls back to complement
//   - the value date falls back to created_at, then to now
//
// Randomness (the synthesized ID) happens only at this boundary, never in
// the engine. Returns the canonical entries and the number dropped.
func Normalize(raw []RawStatement, now time.Time) ([]Statement, int) {
	out := make([]Statement, 0, len(raw))
	dropped := 0

	for _, st := range raw {
		amount, ok := parseAmount(st)
		if !ok {
			dropped++
			continue
		}

		out = append(out, Statement{
			ID:          statementID(st),
			Amount:      amount,
			Description: statementDescription(st),
			Date:        statementDate(st, now),
		})
	}

	return out, dropped
}

// parseAmount resolves amount || value into a decimal
func parseAmount(st RawStatement) (decimal.Decimal, bool) {
	s := string(st.Amount)
	if strings.TrimSpace(s) == "" {
		s = string(st.Value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// statementID resolves id || txid, synthesizing a unique token when absent
func statementID(st RawStatement) string {
	if st.ID != "" {
		return st.ID
	}
	if st.TxID != "" {
		return st.TxID
	}
	return uuid.NewString()
}

// statementDescription resolves description || complement
func statementDescription(st RawStatement) string {
	if st.Description != "" {
		return st.Description
	}
	return st.Complement
}

// statementDate resolves created_at || date to YYYY-MM-DD, falling back to now
func statementDate(st RawStatement, now time.Time) string {
	raw := st.CreatedAt
	if raw == "" {
		raw = st.Date
	}
	if raw == "" {
		return now.Format("2006-01-02")
	}

	// Timestamps arrive as "2026-08-30T14:22:01Z" or already as a plain date
	if idx := strings.Index(raw, "T"); idx > 0 {
		raw = raw[:idx]
	}
	return raw
}
