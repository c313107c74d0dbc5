// Package recon implements the reconciliation engine that pairs bank
// statement entries with outstanding receivables.
//
// Matching is two-tier, first-match-wins, in statement order:
//   - exact tier: statement amount within AmountTolerance of the face value
//   - cnpj tier: debtor tax ID (digits only) found in the upper-cased
//     statement description
//
// The engine is pure: no I/O, no randomness, no mutation of its inputs.
// Given the same receivables and statements in the same order it always
// produces the same match list.
//
// Example usage:
//
//	engine := recon.NewEngine(recon.DefaultConfig())
//	matches := engine.Reconcile(receivables, statements)
package recon

import (
	"strings"

	"github.com/efix-securitizadora/recon-backend/internal/adapters/banking"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// Engine matches statement entries against active receivables
type Engine struct {
	config Config
}

// NewEngine creates a new engine with the given config
func NewEngine(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// Reconcile pairs statement entries with receivables.
//
// Only receivables with status ativo are candidates; their input order is
// preserved and the first eligible candidate wins, so callers control the
// tie-break by controlling store order. Each receivable is used at most
// once per call and each statement entry produces at most one match.
// Entries with a non-positive amount are skipped, and entries that match
// nothing are silently dropped.
func (e *Engine) Reconcile(receivables []storage.Receivable, statements []banking.Statement) []Match {
	active := make([]*storage.Receivable, 0, len(receivables))
	for i := range receivables {
		if receivables[i].IsActive() {
			active = append(active, &receivables[i])
		}
	}

	used := make(map[string]bool, len(active))
	var matches []Match

	for _, st := range statements {
		if !st.Amount.IsPositive() {
			continue
		}

		desc := strings.ToUpper(st.Description)

		if m, ok := e.matchExact(active, used, st, desc); ok {
			matches = append(matches, m)
			continue
		}
		if m, ok := e.matchCNPJ(active, used, st, desc); ok {
			matches = append(matches, m)
		}
	}

	return matches
}

// matchExact finds the first unused candidate whose face value is within
// the amount tolerance of the statement amount.
func (e *Engine) matchExact(active []*storage.Receivable, used map[string]bool, st banking.Statement, desc string) (Match, bool) {
	for _, r := range active {
		if used[r.ID] {
			continue
		}
		diff := r.FaceValue.Sub(st.Amount).Abs()
		if diff.LessThanOrEqual(e.config.AmountTolerance) {
			used[r.ID] = true
			return newMatch(r, st, desc, ConfidenceExact), true
		}
	}
	return Match{}, false
}

// matchCNPJ finds the first unused candidate whose digits-only debtor tax
// ID appears in the statement description. An empty tax ID never matches.
func (e *Engine) matchCNPJ(active []*storage.Receivable, used map[string]bool, st banking.Statement, desc string) (Match, bool) {
	for _, r := range active {
		if used[r.ID] {
			continue
		}
		cnpj := DigitsOnly(r.DebtorCNPJ)
		if cnpj != "" && strings.Contains(desc, cnpj) {
			used[r.ID] = true
			return newMatch(r, st, desc, ConfidenceCNPJ), true
		}
	}
	return Match{}, false
}

// newMatch records the pairing of a statement entry and a receivable
func newMatch(r *storage.Receivable, st banking.Statement, desc string, conf Confidence) Match {
	return Match{
		ReceivableID: r.ID,
		Duplicata:    r.Duplicata,
		FaceValue:    r.FaceValue,
		PaidAmount:   st.Amount,
		Debtor:       r.Debtor,
		StatementID:  st.ID,
		Description:  desc,
		Date:         st.Date,
		Confidence:   conf,
	}
}

// DigitsOnly strips everything but decimal digits from a tax identifier,
// so "12.345.678/0001-90" compares as "12345678000190".
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
