package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritriage/veritriage/internal/ingest"
	"github.com/veritriage/veritriage/internal/model"
	"github.com/veritriage/veritriage/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <alerts.csv>",
	Short: "Triage a CSV batch of alerts in parallel",
	Long: `Batch processes a CSV of alerts concurrently:
- Required columns: alert_id, isin, security_name
- Optional column: outstanding_shares_system
- Each alert owns an isolated browser session
- A failing row becomes an Inconclusive record; the batch never aborts
- Results are exported as results.csv and results.json

Example:
  veritriage batch alerts.csv
  veritriage batch alerts.csv --concurrency 2 --output-dir ./results
  veritriage batch alerts.csv --tolerance-pct 5`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for exports (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&tolerancePct, "tolerance-pct", 0, "share comparison tolerance band in percent (0 = exact)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if cmd.Flags().Changed("tolerance-pct") {
		cfg.Validation.TolerancePct = tolerancePct
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	log, err := buildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Veritriage Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, _, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers,
		cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	records, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	csvPath, jsonPath, err := ingest.ExportRecords(cfg.Output.Dir, records)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	counts := ingest.SummarizeDecisions(records)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:          %d alerts\n", len(records))
	fmt.Fprintf(os.Stderr, "  True Positive:  %d\n", counts[model.DecisionTruePositive])
	fmt.Fprintf(os.Stderr, "  False Positive: %d\n", counts[model.DecisionFalsePositive])
	fmt.Fprintf(os.Stderr, "  Inconclusive:   %d\n", counts[model.DecisionInconclusive])
	fmt.Fprintf(os.Stderr, "  CSV:            %s\n", csvPath)
	fmt.Fprintf(os.Stderr, "  JSON:           %s\n", jsonPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
