package cli

import (
	"flag"

	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
)

// ReconFlags are the flags for the one-shot reconcile command
type ReconFlags struct {
	DryRun       bool
	LookbackDays int
	Verbose      bool
}

// ParseReconFlags parses reconcile flags from the command line
func ParseReconFlags() ReconFlags {
	var flags ReconFlags
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Match without settling anything")
	flag.IntVar(&flags.LookbackDays, "days", 0, "Statement lookback in days (0 = configured default)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ToOptions converts ReconFlags to recon.Options
func (f ReconFlags) ToOptions() recon.Options {
	return recon.Options{
		Apply:        !f.DryRun,
		LookbackDays: f.LookbackDays,
	}
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = configured default)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
