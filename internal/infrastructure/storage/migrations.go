package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_recon_runs_table",
		Up:      migration002AddReconRunsTable,
	},
	{
		Version: 3,
		Name:    "add_params_table",
		Up:      migration003AddParamsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

// migration001InitialSchema creates the receivables table.
//
// seq (rowid alias) preserves insertion order; ListReceivables orders by it
// so the reconciliation engine sees candidates in the order they entered the
// store. Amounts are stored as TEXT to keep decimal values exact.
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS receivables (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			dupl TEXT,
			cedente TEXT,
			sacado TEXT,
			cnpj_cedente TEXT,
			cnpj_sacado TEXT,
			valor TEXT NOT NULL,
			vencto TEXT,
			op TEXT,
			data_aquisicao TEXT,
			status TEXT NOT NULL DEFAULT 'ativo',
			valor_pago TEXT,
			data_liquidacao TEXT,
			conciliado_por TEXT,
			statement_id TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_receivables_status
		 ON receivables(status)`,

		`CREATE INDEX IF NOT EXISTS idx_receivables_cnpj_sacado
		 ON receivables(cnpj_sacado)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddReconRunsTable creates the recon_runs table
func migration002AddReconRunsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS recon_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			lookback_days INTEGER,
			apply BOOLEAN DEFAULT 1,
			analyzed INTEGER DEFAULT 0,
			matched INTEGER DEFAULT 0,
			applied INTEGER DEFAULT 0,
			source TEXT,
			status TEXT DEFAULT 'running'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recon_runs_started
		 ON recon_runs(started_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// migration003AddParamsTable creates the single-row params table and seeds it
func migration003AddParamsTable(db *sql.Tx) error {
	query := `CREATE TABLE IF NOT EXISTS params (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		tx_desconto REAL NOT NULL,
		royalty REAL NOT NULL,
		prazo_sider INTEGER NOT NULL,
		prazo_mercado INTEGER NOT NULL,
		ir_regressivo TEXT NOT NULL,
		nome_securitizadora TEXT NOT NULL,
		cnpj_securitizadora TEXT NOT NULL,
		conta_banco TEXT NOT NULL
	)`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create params table: %w", err)
	}

	p := DefaultParams()
	irJSON, err := json.Marshal(p.RegressiveIR)
	if err != nil {
		return fmt.Errorf("failed to marshal default IR brackets: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO params
		(id, tx_desconto, royalty, prazo_sider, prazo_mercado, ir_regressivo,
		 nome_securitizadora, cnpj_securitizadora, conta_banco)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.DiscountRate, p.Royalty, p.SiderTermDays, p.MarketTermDays,
		string(irJSON), p.IssuerName, p.IssuerCNPJ, p.BankAccount)
	if err != nil {
		return fmt.Errorf("failed to seed params: %w", err)
	}

	return nil
}
