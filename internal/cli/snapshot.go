package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/pipeline"
)

var (
	snapshotOut     string
	snapshotTimeout time.Duration
	snapshotRobots  bool
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <url>",
	Short: "Render a URL to a PDF audit document",
	Long: `Snapshot drives a headless browser to the given URL, waits for the
page to settle and renders it to PDF. Useful for capturing a registry
page out of band of a triage run.

Example:
  veritriage snapshot https://www.boerse-frankfurt.de/aktie/DE0007664039
  veritriage snapshot https://example.org --out page.pdf --respect-robots`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "snapshot.pdf", "output PDF path")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 2*time.Minute, "overall timeout")
	snapshotCmd.Flags().BoolVar(&snapshotRobots, "respect-robots", false, "consult robots.txt before rendering")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	cfg := loadConfig()
	if cmd.Flags().Changed("respect-robots") {
		cfg.Snapshot.RespectRobots = snapshotRobots
	}

	log, err := buildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	mgr := browser.NewManager(cfg.Browser, cfg.Proxy, log)
	snap := pipeline.NewSnapshotter(mgr, cfg.Snapshot, cfg.Browser.UserAgent, log)

	pdf, err := snap.Snapshot(ctx, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(snapshotOut, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", snapshotOut, err)
	}

	fmt.Fprintf(os.Stderr, "✓ Wrote %s (%d bytes)\n", snapshotOut, len(pdf))
	return nil
}
