package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/efix-securitizadora/recon-backend/internal/adapters/banking"
	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
	"github.com/efix-securitizadora/recon-backend/internal/cli"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/config"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/logging"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

func main() {
	flags := cli.ParseReconFlags()
	cfg := config.LoadOrEnv()

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	lookback := flags.LookbackDays
	if lookback <= 0 {
		lookback = cfg.Recon.LookbackDays
	}

	cli.PrintHeader(flags.DryRun)
	cli.PrintConfiguration(lookback, flags.DryRun)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	bank := banking.NewClient(cfg.Banking, logger)
	service := recon.NewService(store, bank, cfg.Recon, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := service.Run(ctx, flags.ToOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.PrintRunSummary(result, store)
}
