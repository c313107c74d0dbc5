package recon

import (
	engine "github.com/efix-securitizadora/recon-backend/internal/domain/recon"
)

// Statement feed provenance for a run
const (
	SourceFresh  = "fresh"
	SourceCached = "cached"
)

// Options controls one reconciliation pass
type Options struct {
	// Apply settles the matched receivables. When false the run is a dry
	// pass: matches are reported but nothing changes.
	Apply bool

	// LookbackDays bounds the statement window. Zero or negative uses the
	// configured default.
	LookbackDays int
}

// Result summarizes one reconciliation pass
type Result struct {
	RunID      int64          `json:"runId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Apply      bool           `json:"apply"`
	Analyzed   int            `json:"analisados"`
	Matched    int            `json:"conciliados"`
	Applied    int            `json:"aplicados"`
	Source     string         `json:"fonte"`
	FinishedAt string         `json:"finishedAt"`
	Matches    []engine.Match `json:"detalhes"`
}
