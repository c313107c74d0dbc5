package cli

import (
	"fmt"
	"strings"

	"github.com/efix-securitizadora/recon-backend/internal/application/recon"
	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/storage"
)

// PrintHeader prints the command header
func PrintHeader(dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("efix-recon (%s mode)\n", mode)
}

// PrintConfiguration prints the run configuration
func PrintConfiguration(lookbackDays int, dryRun bool) {
	fmt.Printf("Lookback: %d days", lookbackDays)
	if dryRun {
		fmt.Printf(" | Dry-run: true")
	}
	fmt.Print("\n\n")
}

// PrintRunSummary prints the reconciliation result summary
func PrintRunSummary(result *recon.Result, store *storage.Storage) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Analyzed=%d Matched=%d Settled=%d Source=%s\n",
		result.Analyzed,
		result.Matched,
		result.Applied,
		result.Source)

	for _, m := range result.Matches {
		fmt.Printf("  %-22s %-12s valor=%s pago=%s [%s]\n",
			m.ReceivableID,
			m.Duplicata,
			m.FaceValue.StringFixed(2),
			m.PaidAmount.StringFixed(2),
			m.Confidence)
	}

	if store != nil {
		total, err := store.CountReceivables()
		if err == nil {
			fmt.Printf("\nReceivables in store: %d\n", total)
		}
	}

	if result.Apply && result.Applied > 0 {
		fmt.Println("\nReconciliation completed successfully.")
	}
}
