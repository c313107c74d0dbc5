// Package recon orchestrates reconciliation passes: it pulls the statement
// feed, runs the matching engine against the active receivables and applies
// the resulting settlements through the repository.
package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efix-securitizadora/recon-backend/internal/adapters/banking"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/config"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"

	engine "github.com/efix-securitizadora/recon-backend/internal/domain/recon"
)

// ErrNoIDs is returned when a manual settlement request names no receivables
var ErrNoIDs = errors.New("no receivable ids given")

// Service runs reconciliation passes and manual settlements.
//
// Runs are serialized: the mutex guarantees a single writer, so two
// concurrent reconcile requests cannot settle the same receivable twice.
// The repository's conditional settle is the second line of defense.
type Service struct {
	repo         storage.Repository
	source       banking.StatementSource
	engine       *engine.Engine
	logger       *slog.Logger
	lookbackDays int

	mu      sync.Mutex
	cached  []banking.RawStatement
	lastRun *Result
}

// NewService creates a reconciliation service
func NewService(repo storage.Repository, source banking.StatementSource, cfg config.ReconConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	engineCfg := engine.DefaultConfig()
	if cfg.AmountTolerance > 0 {
		engineCfg.AmountTolerance = decimal.NewFromFloat(cfg.AmountTolerance)
	}

	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 30
	}

	return &Service{
		repo:         repo,
		source:       source,
		engine:       engine.NewEngine(engineCfg),
		logger:       logger,
		lookbackDays: lookback,
	}
}

// Run executes one reconciliation pass.
//
// The pass fetches the statement feed for the lookback window, matches it
// against active receivables and, when opts.Apply is set, settles every
// match. A failed feed fetch falls back to the last successfully fetched
// feed; the result's Source field tells callers which one was used.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = s.lookbackDays
	}

	now := time.Now()
	from := now.AddDate(0, 0, -lookback)

	runID, err := s.repo.StartReconRun(lookback, opts.Apply)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	raw, source, err := s.fetchStatements(ctx, from, now)
	if err != nil {
		s.completeRun(runID, 0, 0, 0, "", "error")
		return nil, err
	}

	statements, dropped := banking.Normalize(raw, now)
	if dropped > 0 {
		s.logger.Warn("dropped statement entries without a parseable amount", "count", dropped)
	}

	receivables, err := s.repo.ListReceivables()
	if err != nil {
		s.completeRun(runID, len(statements), 0, 0, source, "error")
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}

	matches := s.engine.Reconcile(receivables, statements)

	applied := 0
	if opts.Apply {
		for _, m := range matches {
			ok, err := s.repo.SettleReceivable(m.ReceivableID, m.PaidAmount, m.Date, storage.SettledByAuto, m.StatementID)
			if err != nil {
				s.logger.Error("settlement failed", "receivable", m.ReceivableID, "error", err)
				continue
			}
			if ok {
				applied++
			}
		}
	}

	s.completeRun(runID, len(statements), len(matches), applied, source, "ok")

	result := &Result{
		RunID:      runID,
		From:       from.Format("2006-01-02"),
		To:         now.Format("2006-01-02"),
		Apply:      opts.Apply,
		Analyzed:   len(statements),
		Matched:    len(matches),
		Applied:    applied,
		Source:     source,
		FinishedAt: now.Format(time.RFC3339),
		Matches:    matches,
	}
	s.lastRun = result

	s.logger.Info("reconciliation pass finished",
		"run_id", runID,
		"analyzed", result.Analyzed,
		"matched", result.Matched,
		"applied", result.Applied,
		"source", source,
	)

	return result, nil
}

// LastRun returns the most recent in-process result, or nil before any run
func (s *Service) LastRun() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Statements fetches and normalizes the statement feed for a window,
// with the same cached fallback the reconciliation pass uses. The second
// return value is the feed source, fresh or cached.
func (s *Service) Statements(ctx context.Context, from, to time.Time) ([]banking.Statement, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, source, err := s.fetchStatements(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	statements, _ := banking.Normalize(raw, to)
	return statements, source, nil
}

// ManualSettle settles the named receivables out of band.
//
// Each receivable is settled with paid (or its own face value when paid is
// nil) and date (or today when empty). Unknown and already settled IDs are
// skipped; the return value counts the receivables actually settled.
func (s *Service) ManualSettle(ids []string, paid *decimal.Decimal, date string) (int, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	settled := 0
	for _, id := range ids {
		r, err := s.repo.GetReceivable(id)
		if err != nil {
			continue
		}

		amount := r.FaceValue
		if paid != nil {
			amount = *paid
		}

		ok, err := s.repo.SettleReceivable(id, amount, date, storage.SettledByManual, "")
		if err != nil {
			return settled, fmt.Errorf("failed to settle %s: %w", id, err)
		}
		if ok {
			settled++
		}
	}

	s.logger.Info("manual settlement", "requested", len(ids), "settled", settled)

	return settled, nil
}

// fetchStatements pulls the feed, caching the last good response so a
// provider outage degrades to stale data instead of a failed run.
// Caller holds s.mu.
func (s *Service) fetchStatements(ctx context.Context, from, to time.Time) ([]banking.RawStatement, string, error) {
	raw, err := s.source.Statements(ctx, from, to)
	if err == nil {
		s.cached = raw
		return raw, SourceFresh, nil
	}

	if s.cached != nil {
		s.logger.Warn("statement fetch failed, using cached feed", "error", err)
		return s.cached, SourceCached, nil
	}

	return nil, "", fmt.Errorf("failed to fetch statements: %w", err)
}

// completeRun records the run outcome, logging instead of failing the pass
func (s *Service) completeRun(runID int64, analyzed, matched, applied int, source, status string) {
	if err := s.repo.CompleteReconRun(runID, analyzed, matched, applied, source, status); err != nil {
		s.logger.Warn("failed to record run outcome", "run_id", runID, "error", err)
	}
}
