package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veritriage/veritriage/internal/pipeline"
	"github.com/veritriage/veritriage/internal/server"
)

var (
	serveAddr     string
	serveAuditDir string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the triage HTTP service",
	Long: `Serve exposes the triage pipeline over HTTP:

  POST /alerts              triage a single alert
  POST /alerts/batch        triage a list of alerts
  GET  /evidence/{alertID}  download the latest audit PDF for an alert
  GET  /healthz             health probe

Example:
  veritriage serve
  veritriage serve --addr :9090 --audit-dir ./audit`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveAuditDir, "audit-dir", "./audit", "directory for audit PDF documents")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := buildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, mgr, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	snap := pipeline.NewSnapshotter(mgr, cfg.Snapshot, cfg.Browser.UserAgent, log)

	srv := server.New(p, snap, serveAuditDir, log)

	fmt.Fprintf(os.Stderr, "veritriage listening on %s\n", cfg.Server.Addr)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
