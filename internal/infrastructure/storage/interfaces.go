package storage

import "github.com/shopspring/decimal"

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	ReceivableRepository
	ReconRunRepository
	ParamsRepository
	Close() error
}

// ReceivableRepository handles receivable operations.
//
// The store owns the collection: the engine and applier never touch a
// process-wide variable, they go through these methods. ListReceivables
// returns rows in insertion order, which is the candidate order the
// reconciliation engine relies on for its first-match-wins tie-break.
type ReceivableRepository interface {
	// CreateReceivable inserts a new receivable
	CreateReceivable(r *Receivable) error

	// SeedReceivables bulk-inserts receivables only if the store is empty.
	// Returns the number inserted (0 when already seeded).
	SeedReceivables(rs []Receivable) (int, error)

	// GetReceivable retrieves a receivable by ID
	GetReceivable(id string) (*Receivable, error)

	// ListReceivables returns all receivables in insertion order
	ListReceivables() ([]Receivable, error)

	// CountReceivables returns the total number of receivables
	CountReceivables() (int, error)

	// SettleReceivable transitions a receivable to liquidado if and only if
	// it is still ativo, stamping the paid amount, settlement date, settler
	// marker and originating statement ID in the same write. Returns whether
	// the transition applied; an unknown or already-settled ID is (false, nil).
	SettleReceivable(id string, paid decimal.Decimal, date, settledBy, statementID string) (bool, error)
}

// ReconRunRepository handles reconciliation run tracking
type ReconRunRepository interface {
	// StartReconRun records the start of a run and returns the run ID
	StartReconRun(lookbackDays int, apply bool) (int64, error)

	// CompleteReconRun records the outcome of a run
	CompleteReconRun(runID int64, analyzed, matched, applied int, source, status string) error

	// ListReconRuns returns recent runs, newest first
	ListReconRuns(limit int) ([]ReconRun, error)
}

// ParamsRepository handles the operation parameters document
type ParamsRepository interface {
	// GetParams returns the current operation parameters
	GetParams() (*Params, error)

	// UpdateParams replaces the operation parameters
	UpdateParams(p *Params) error
}
