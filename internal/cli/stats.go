package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Balaji2106/demo-autoremediation/internal/core/config"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/postgres"
	"github.com/Balaji2106/demo-autoremediation/internal/remedy"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show remediation outcome counts from the audit ledger",
	Run:   runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "trailing window in days")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	stats, err := remedy.CollectStats(ctx, postgres.NewAuditRepo(db), statsDays)
	if err != nil {
		slog.Error("Failed to collect stats", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "WINDOW\tATTEMPTED\tSUCCEEDED\tFAILED\tSKIPPED\tMAX_RETRIES\tSUCCESS_RATE")
	_, _ = fmt.Fprintf(w, "%dd\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n",
		stats.Days, stats.Attempted, stats.Succeeded, stats.Failed,
		stats.Skipped, stats.MaxRetries, stats.SuccessRate*100)
	_ = w.Flush()
}
