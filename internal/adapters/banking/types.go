// Package banking talks to the iHold Banking API and normalizes its
// statement payloads into the canonical shape the reconciliation engine
// consumes.
package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FlexString decodes a JSON value that may arrive as a string or a number.
// The statement feed is not consistent about amount encoding.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// RawStatement is one entry of the statement feed as the API returns it.
// Field pairs (id/txid, amount/value, description/complement, date/created_at)
// exist because different transaction types populate different fields.
type RawStatement struct {
	ID          string     `json:"id"`
	TxID        string     `json:"txid"`
	Amount      FlexString `json:"amount"`
	Value       FlexString `json:"value"`
	Description string     `json:"description"`
	Complement  string     `json:"complement"`
	Date        string     `json:"date"`
	CreatedAt   string     `json:"created_at"`
}

// Statement is the canonical statement entry. Every field is total: the ID is
// always non-empty (synthesized when the payload carries none), the amount is
// always a parsed decimal, the date always has a value.
type Statement struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // value date, YYYY-MM-DD
}

// StatementSource supplies statement entries for a date window.
// Implementations may fetch fresh data or serve a cached snapshot.
type StatementSource interface {
	Statements(ctx context.Context, from, to time.Time) ([]RawStatement, error)
}
