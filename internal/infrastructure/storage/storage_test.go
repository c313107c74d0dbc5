package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStorage creates a Storage backed by a temp-file SQLite database
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func makeReceivable(id string, valor string) Receivable {
	v, _ := decimal.NewFromString(valor)
	return Receivable{
		ID:         id,
		Duplicata:  "DUP-" + id,
		Originator: "Siderurgica ABC Ltda",
		Debtor:     "Metalurgica XYZ SA",
		DebtorCNPJ: "12.345.678/0001-90",
		FaceValue:  v,
		Status:     StatusActive,
		AcquiredAt: "2026-08-01",
	}
}

func TestStorage_CreateAndGetReceivable(t *testing.T) {
	s := newTestStorage(t)

	r := makeReceivable("REC-001", "1000.00")
	require.NoError(t, s.CreateReceivable(&r))

	got, err := s.GetReceivable("REC-001")
	require.NoError(t, err)

	assert.Equal(t, "REC-001", got.ID)
	assert.Equal(t, "DUP-REC-001", got.Duplicata)
	assert.Equal(t, "12.345.678/0001-90", got.DebtorCNPJ)
	assert.True(t, got.FaceValue.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, StatusActive, got.Status)
	assert.Nil(t, got.PaidAmount)
	assert.Empty(t, got.SettledBy)
}

func TestStorage_CreateReceivable_DefaultsStatus(t *testing.T) {
	s := newTestStorage(t)

	r := makeReceivable("REC-001", "500.00")
	r.Status = ""
	require.NoError(t, s.CreateReceivable(&r))

	got, err := s.GetReceivable("REC-001")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
}

func TestStorage_ListReceivables_InsertionOrder(t *testing.T) {
	s := newTestStorage(t)

	for _, id := range []string{"REC-003", "REC-001", "REC-002"} {
		r := makeReceivable(id, "100.00")
		require.NoError(t, s.CreateReceivable(&r))
	}

	list, err := s.ListReceivables()
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Insertion order, not lexical order
	assert.Equal(t, "REC-003", list[0].ID)
	assert.Equal(t, "REC-001", list[1].ID)
	assert.Equal(t, "REC-002", list[2].ID)
}

func TestStorage_SettleReceivable(t *testing.T) {
	s := newTestStorage(t)

	r := makeReceivable("REC-001", "1000.00")
	require.NoError(t, s.CreateReceivable(&r))

	paid := decimal.RequireFromString("1000.00")
	applied, err := s.SettleReceivable("REC-001", paid, "2026-08-30", SettledByAuto, "stmt-42")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := s.GetReceivable("REC-001")
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, got.Status)
	require.NotNil(t, got.PaidAmount)
	assert.True(t, got.PaidAmount.Equal(paid))
	assert.Equal(t, "2026-08-30", got.SettledAt)
	assert.Equal(t, SettledByAuto, got.SettledBy)
	assert.Equal(t, "stmt-42", got.StatementID)
}

func TestStorage_SettleReceivable_SecondSettleIsNoOp(t *testing.T) {
	s := newTestStorage(t)

	r := makeReceivable("REC-001", "1000.00")
	require.NoError(t, s.CreateReceivable(&r))

	paid := decimal.RequireFromString("1000.00")
	applied, err := s.SettleReceivable("REC-001", paid, "2026-08-30", SettledByAuto, "stmt-1")
	require.NoError(t, err)
	require.True(t, applied)

	// Second attempt must not mutate anything
	other := decimal.RequireFromString("999.99")
	applied, err = s.SettleReceivable("REC-001", other, "2026-08-31", SettledByManual, "stmt-2")
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := s.GetReceivable("REC-001")
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(paid))
	assert.Equal(t, "stmt-1", got.StatementID)
	assert.Equal(t, SettledByAuto, got.SettledBy)
}

func TestStorage_SettleReceivable_UnknownID(t *testing.T) {
	s := newTestStorage(t)

	applied, err := s.SettleReceivable("REC-999", decimal.NewFromInt(10), "2026-08-30", SettledByManual, "")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestStorage_SeedReceivables(t *testing.T) {
	s := newTestStorage(t)

	seed := []Receivable{
		makeReceivable("REC-001", "100.00"),
		makeReceivable("REC-002", "200.00"),
	}

	inserted, err := s.SeedReceivables(seed)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Second seed is a no-op
	inserted, err = s.SeedReceivables([]Receivable{makeReceivable("REC-003", "300.00")})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := s.CountReceivables()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStorage_ReconRuns(t *testing.T) {
	s := newTestStorage(t)

	runID, err := s.StartReconRun(30, true)
	require.NoError(t, err)
	require.NoError(t, s.CompleteReconRun(runID, 12, 3, 3, "fresh", "completed"))

	runs, err := s.ListReconRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 12, runs[0].Analyzed)
	assert.Equal(t, 3, runs[0].Matched)
	assert.Equal(t, 3, runs[0].Applied)
	assert.Equal(t, "fresh", runs[0].Source)
	assert.Equal(t, "completed", runs[0].Status)
	assert.NotEmpty(t, runs[0].CompletedAt)
}

func TestStorage_Params(t *testing.T) {
	s := newTestStorage(t)

	// Migration seeds the defaults
	p, err := s.GetParams()
	require.NoError(t, err)
	assert.Equal(t, 2.50, p.DiscountRate)
	assert.Equal(t, []float64{22.5, 20, 17.5, 15}, p.RegressiveIR)
	assert.Equal(t, "EFIX Securitizadora S.A.", p.IssuerName)

	p.DiscountRate = 3.10
	p.RegressiveIR = []float64{20, 15}
	require.NoError(t, s.UpdateParams(p))

	got, err := s.GetParams()
	require.NoError(t, err)
	assert.Equal(t, 3.10, got.DiscountRate)
	assert.Equal(t, []float64{20, 15}, got.RegressiveIR)
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := NewStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening must not re-run migrations
	s2, err := NewStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	applied, err := s2.getAppliedMigrations()
	require.NoError(t, err)
	assert.Len(t, applied, len(allMigrations))
}
