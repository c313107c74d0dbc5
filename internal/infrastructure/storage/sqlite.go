package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Storage provides SQLite database access for receivables, reconciliation
// runs and operation params. It implements the Repository interface.
//
// Every settlement is a single conditional UPDATE inside SQLite, so the
// "only mutate if still ativo" check-then-act is atomic and a settlement is
// never reported as applied unless it is already durable.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Serialize writers; the service layer is single-writer but the API
	// reads concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// CreateReceivable inserts a new receivable
func (s *Storage) CreateReceivable(r *Receivable) error {
	if r.Status == "" {
		r.Status = StatusActive
	}

	query := `
	INSERT INTO receivables
	(id, dupl, cedente, sacado, cnpj_cedente, cnpj_sacado, valor, vencto, op,
	 data_aquisicao, status, valor_pago, data_liquidacao, conciliado_por, statement_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var paidAmount interface{}
	if r.PaidAmount != nil {
		paidAmount = r.PaidAmount.String()
	}

	_, err := s.db.Exec(query,
		r.ID,
		r.Duplicata,
		r.Originator,
		r.Debtor,
		r.OriginatorCNPJ,
		r.DebtorCNPJ,
		r.FaceValue.String(),
		r.DueDate,
		r.Operation,
		r.AcquiredAt,
		r.Status,
		paidAmount,
		nullIfEmpty(r.SettledAt),
		nullIfEmpty(r.SettledBy),
		nullIfEmpty(r.StatementID),
	)

	return err
}

// SeedReceivables bulk-inserts receivables only if the store is empty
func (s *Storage) SeedReceivables(rs []Receivable) (int, error) {
	count, err := s.CountReceivables()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for i := range rs {
		r := rs[i]
		if r.Status == "" {
			r.Status = StatusActive
		}
		var paidAmount interface{}
		if r.PaidAmount != nil {
			paidAmount = r.PaidAmount.String()
		}
		_, err := tx.Exec(`
			INSERT INTO receivables
			(id, dupl, cedente, sacado, cnpj_cedente, cnpj_sacado, valor, vencto, op,
			 data_aquisicao, status, valor_pago, data_liquidacao, conciliado_por, statement_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.Duplicata, r.Originator, r.Debtor, r.OriginatorCNPJ, r.DebtorCNPJ,
			r.FaceValue.String(), r.DueDate, r.Operation, r.AcquiredAt, r.Status,
			paidAmount, nullIfEmpty(r.SettledAt), nullIfEmpty(r.SettledBy), nullIfEmpty(r.StatementID))
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to seed receivable %s: %w", r.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetReceivable retrieves a receivable by ID
func (s *Storage) GetReceivable(id string) (*Receivable, error) {
	row := s.db.QueryRow(receivableSelect+` WHERE id = ?`, id)
	return scanReceivable(row)
}

// ListReceivables returns all receivables in insertion order
func (s *Storage) ListReceivables() ([]Receivable, error) {
	rows, err := s.db.Query(receivableSelect + ` ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receivables []Receivable
	for rows.Next() {
		r, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		receivables = append(receivables, *r)
	}

	return receivables, rows.Err()
}

// CountReceivables returns the total number of receivables
func (s *Storage) CountReceivables() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM receivables`).Scan(&count)
	return count, err
}

// SettleReceivable transitions a receivable to liquidado if it is still ativo.
// Returns whether the transition applied.
func (s *Storage) SettleReceivable(id string, paid decimal.Decimal, date, settledBy, statementID string) (bool, error) {
	query := `
	UPDATE receivables
	SET status = ?, valor_pago = ?, data_liquidacao = ?, conciliado_por = ?, statement_id = ?
	WHERE id = ? AND status = ?
	`

	result, err := s.db.Exec(query,
		StatusSettled,
		paid.String(),
		date,
		settledBy,
		nullIfEmpty(statementID),
		id,
		StatusActive,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// StartReconRun records the start of a reconciliation run
func (s *Storage) StartReconRun(lookbackDays int, apply bool) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO recon_runs (lookback_days, apply, status)
		VALUES (?, ?, 'running')
	`, lookbackDays, apply)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CompleteReconRun records the outcome of a reconciliation run
func (s *Storage) CompleteReconRun(runID int64, analyzed, matched, applied int, source, status string) error {
	_, err := s.db.Exec(`
		UPDATE recon_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    analyzed = ?,
		    matched = ?,
		    applied = ?,
		    source = ?,
		    status = ?
		WHERE id = ?
	`, analyzed, matched, applied, source, status, runID)
	return err
}

// ListReconRuns returns recent runs, newest first
func (s *Storage) ListReconRuns(limit int) ([]ReconRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, COALESCE(completed_at, ''), lookback_days, apply,
		       analyzed, matched, applied, COALESCE(source, ''), status
		FROM recon_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ReconRun
	for rows.Next() {
		var run ReconRun
		err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.CompletedAt,
			&run.LookbackDays,
			&run.Apply,
			&run.Analyzed,
			&run.Matched,
			&run.Applied,
			&run.Source,
			&run.Status,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetParams returns the current operation parameters
func (s *Storage) GetParams() (*Params, error) {
	var p Params
	var irJSON string

	err := s.db.QueryRow(`
		SELECT tx_desconto, royalty, prazo_sider, prazo_mercado, ir_regressivo,
		       nome_securitizadora, cnpj_securitizadora, conta_banco
		FROM params WHERE id = 1
	`).Scan(
		&p.DiscountRate,
		&p.Royalty,
		&p.SiderTermDays,
		&p.MarketTermDays,
		&irJSON,
		&p.IssuerName,
		&p.IssuerCNPJ,
		&p.BankAccount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(irJSON), &p.RegressiveIR); err != nil {
		return nil, fmt.Errorf("failed to decode IR brackets: %w", err)
	}

	return &p, nil
}

// UpdateParams replaces the operation parameters
func (s *Storage) UpdateParams(p *Params) error {
	irJSON, err := json.Marshal(p.RegressiveIR)
	if err != nil {
		return fmt.Errorf("failed to encode IR brackets: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE params
		SET tx_desconto = ?, royalty = ?, prazo_sider = ?, prazo_mercado = ?,
		    ir_regressivo = ?, nome_securitizadora = ?, cnpj_securitizadora = ?,
		    conta_banco = ?
		WHERE id = 1
	`, p.DiscountRate, p.Royalty, p.SiderTermDays, p.MarketTermDays,
		string(irJSON), p.IssuerName, p.IssuerCNPJ, p.BankAccount)
	return err
}

const receivableSelect = `
	SELECT id, dupl, cedente, sacado, cnpj_cedente, cnpj_sacado, valor, vencto,
	       op, data_aquisicao, status, valor_pago, data_liquidacao,
	       conciliado_por, statement_id
	FROM receivables`

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReceivable scans one receivable row, converting TEXT amounts back to decimals
func scanReceivable(row scanner) (*Receivable, error) {
	var r Receivable
	var valor string
	var dupl, cedente, sacado, cnpjCedente, cnpjSacado sql.NullString
	var vencto, op, dataAquisicao sql.NullString
	var valorPago, dataLiquidacao, conciliadoPor, statementID sql.NullString

	err := row.Scan(
		&r.ID,
		&dupl,
		&cedente,
		&sacado,
		&cnpjCedente,
		&cnpjSacado,
		&valor,
		&vencto,
		&op,
		&dataAquisicao,
		&r.Status,
		&valorPago,
		&dataLiquidacao,
		&conciliadoPor,
		&statementID,
	)
	if err != nil {
		return nil, err
	}

	r.Duplicata = dupl.String
	r.Originator = cedente.String
	r.Debtor = sacado.String
	r.OriginatorCNPJ = cnpjCedente.String
	r.DebtorCNPJ = cnpjSacado.String
	r.DueDate = vencto.String
	r.Operation = op.String
	r.AcquiredAt = dataAquisicao.String
	r.SettledAt = dataLiquidacao.String
	r.SettledBy = conciliadoPor.String
	r.StatementID = statementID.String

	r.FaceValue, err = decimal.NewFromString(valor)
	if err != nil {
		return nil, fmt.Errorf("corrupt valor for receivable %s: %w", r.ID, err)
	}

	if valorPago.Valid && valorPago.String != "" {
		paid, err := decimal.NewFromString(valorPago.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt valor_pago for receivable %s: %w", r.ID, err)
		}
		r.PaidAmount = &paid
	}

	return &r, nil
}

// nullIfEmpty maps "" to NULL so absent settlement fields stay NULL in the DB
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
