package storage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It keeps receivables in a slice so insertion order is preserved, matching
// the SQLite implementation.
type MockRepository struct {
	receivables []Receivable
	runs        []ReconRun
	params      Params
	nextRunID   int64

	// Hooks for test assertions
	SettleCalled      bool
	LastSettledID     string
	StartReconCalled  bool

	// Error injection for testing error paths
	ListErr   error
	SettleErr error
	CreateErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		params:    DefaultParams(),
		nextRunID: 1,
	}
}

// CreateReceivable inserts a new receivable
func (m *MockRepository) CreateReceivable(r *Receivable) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	m.receivables = append(m.receivables, *r)
	return nil
}

// SeedReceivables bulk-inserts receivables only if the store is empty
func (m *MockRepository) SeedReceivables(rs []Receivable) (int, error) {
	if len(m.receivables) > 0 {
		return 0, nil
	}
	for i := range rs {
		if rs[i].Status == "" {
			rs[i].Status = StatusActive
		}
	}
	m.receivables = append(m.receivables, rs...)
	return len(rs), nil
}

// GetReceivable retrieves a receivable by ID
func (m *MockRepository) GetReceivable(id string) (*Receivable, error) {
	for i := range m.receivables {
		if m.receivables[i].ID == id {
			r := m.receivables[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("receivable not found: %s", id)
}

// ListReceivables returns all receivables in insertion order
func (m *MockRepository) ListReceivables() ([]Receivable, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]Receivable, len(m.receivables))
	copy(out, m.receivables)
	return out, nil
}

// CountReceivables returns the total number of receivables
func (m *MockRepository) CountReceivables() (int, error) {
	return len(m.receivables), nil
}

// SettleReceivable transitions a receivable to liquidado if it is still ativo
func (m *MockRepository) SettleReceivable(id string, paid decimal.Decimal, date, settledBy, statementID string) (bool, error) {
	m.SettleCalled = true
	m.LastSettledID = id

	if m.SettleErr != nil {
		return false, m.SettleErr
	}

	for i := range m.receivables {
		if m.receivables[i].ID != id {
			continue
		}
		if m.receivables[i].Status != StatusActive {
			return false, nil
		}
		m.receivables[i].Status = StatusSettled
		m.receivables[i].PaidAmount = &paid
		m.receivables[i].SettledAt = date
		m.receivables[i].SettledBy = settledBy
		m.receivables[i].StatementID = statementID
		return true, nil
	}

	return false, nil
}

// StartReconRun records the start of a reconciliation run
func (m *MockRepository) StartReconRun(lookbackDays int, apply bool) (int64, error) {
	m.StartReconCalled = true
	id := m.nextRunID
	m.nextRunID++
	m.runs = append(m.runs, ReconRun{
		ID:           id,
		LookbackDays: lookbackDays,
		Apply:        apply,
		Status:       "running",
	})
	return id, nil
}

// CompleteReconRun records the outcome of a reconciliation run
func (m *MockRepository) CompleteReconRun(runID int64, analyzed, matched, applied int, source, status string) error {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			m.runs[i].Analyzed = analyzed
			m.runs[i].Matched = matched
			m.runs[i].Applied = applied
			m.runs[i].Source = source
			m.runs[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("run not found: %d", runID)
}

// ListReconRuns returns recent runs, newest first
func (m *MockRepository) ListReconRuns(limit int) ([]ReconRun, error) {
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]ReconRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// GetParams returns the current operation parameters
func (m *MockRepository) GetParams() (*Params, error) {
	p := m.params
	return &p, nil
}

// UpdateParams replaces the operation parameters
func (m *MockRepository) UpdateParams(p *Params) error {
	m.params = *p
	return nil
}

// Close is a no-op for the mock
func (m *MockRepository) Close() error {
	return nil
}
