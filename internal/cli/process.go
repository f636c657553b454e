package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/veritriage/veritriage/internal/ingest"
	"github.com/veritriage/veritriage/internal/model"
)

var (
	processISIN    string
	processName    string
	processShares  int64
	processTimeout time.Duration
	processOutJSON string
	tolerancePct   float64
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Triage a single alert",
	Long: `Process runs the full triage flow for one alert:
- Route the ISIN to its jurisdiction's validator
- Drive a headless browser against the authoritative registry
- Capture screenshot evidence of the page that was read
- Classify the alert and print the decision with its justification

Example:
  veritriage process --isin DE0007664039 --name "Volkswagen AG"
  veritriage process --isin CH0012032048 --name "Roche Holding AG" --shares 703040000`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processISIN, "isin", "", "security identifier (required)")
	processCmd.Flags().StringVar(&processName, "name", "", "security/company name (required)")
	processCmd.Flags().Int64Var(&processShares, "shares", 0, "system-recorded outstanding shares (required for CH)")
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 3*time.Minute, "overall processing timeout")
	processCmd.Flags().StringVar(&processOutJSON, "json", "", "write the decision record to this path")
	processCmd.Flags().Float64Var(&tolerancePct, "tolerance-pct", 0, "share comparison tolerance band in percent (0 = exact)")

	_ = processCmd.MarkFlagRequired("isin")
	_ = processCmd.MarkFlagRequired("name")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	cfg := loadConfig()
	if cmd.Flags().Changed("tolerance-pct") {
		cfg.Validation.TolerancePct = tolerancePct
	}

	log, err := buildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, _, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	alert := model.Alert{
		AlertID:      "MANUAL_" + uuid.NewString()[:8],
		ISIN:         processISIN,
		SecurityName: processName,
		ReceivedAt:   time.Now().UTC(),
	}
	if cmd.Flags().Changed("shares") {
		alert.OutstandingShares = model.Int64(processShares)
	}

	record := p.Process(ctx, alert)

	printRecord(record)

	if processOutJSON != "" {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if err := os.WriteFile(processOutJSON, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", processOutJSON, err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote record: %s\n", processOutJSON)
	}

	return nil
}

func printRecord(rec model.DecisionRecord) {
	fmt.Printf("\nAlert Details:\n")
	fmt.Printf("- Alert ID: %s\n", rec.AlertID)
	fmt.Printf("- ISIN:     %s\n", rec.ISIN)
	fmt.Printf("- Security: %s\n", rec.SecurityName)

	fmt.Printf("\nVerification Results:\n")
	fmt.Printf("- Decision:      %s\n", rec.Decision)
	fmt.Printf("- Justification: %s\n", rec.Justification)
	if rec.Fact.Shares != nil {
		fmt.Printf("- Expected Shares: %d\n", rec.Fact.Shares.ExpectedShares)
		fmt.Printf("- Actual Shares:   %s\n", ingest.FormatShareCount(rec.Fact.Shares.ActualShares))
	}
	if rec.Fact.Market != nil {
		fmt.Printf("- Market Type: %s\n", rec.Fact.Market.MarketLabel)
	}

	fmt.Printf("\nEvidence:\n")
	fmt.Printf("- Source URL: %s\n", rec.Fact.SourceURL())
	if rec.Evidence != nil {
		fmt.Printf("- Screenshot: %s\n", rec.Evidence.URL)
	} else if rec.EvidenceError != "" {
		fmt.Printf("- Screenshot: unavailable (%s)\n", rec.EvidenceError)
	}
	fmt.Println()
}
