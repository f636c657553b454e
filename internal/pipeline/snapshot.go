package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/evidence"
	"github.com/veritriage/veritriage/internal/model"
	"github.com/veritriage/veritriage/internal/util"
)

// Snapshotter renders a URL to a PDF audit document. It sits outside the
// decision path: a snapshot is produced after a decision, as a durable
// companion to the screenshot evidence.
type Snapshotter struct {
	mgr    *browser.Manager
	robots *util.RobotsChecker
	cfg    model.SnapshotConfig
	log    *zap.Logger
}

// NewSnapshotter creates a snapshotter. The robots gate is consulted only
// when the configuration asks for it.
func NewSnapshotter(mgr *browser.Manager, cfg model.SnapshotConfig, userAgent string, log *zap.Logger) *Snapshotter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Snapshotter{
		mgr:    mgr,
		robots: util.NewRobotsChecker(userAgent, cfg.Timeout),
		cfg:    cfg,
		log:    log,
	}
}

// Snapshot renders the page at url into PDF bytes.
func (s *Snapshotter) Snapshot(ctx context.Context, url string) ([]byte, error) {
	if s.cfg.RespectRobots && !s.robots.IsAllowed(ctx, url) {
		return nil, fmt.Errorf("snapshot %s: disallowed by robots.txt", url)
	}

	sess, err := s.mgr.Open(ctx, browser.PathDirect)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	if err := sess.Navigate(url); err != nil {
		return nil, err
	}
	sess.WaitNetworkIdle(s.cfg.Timeout)
	sess.SettleFullPage()

	pdf, err := sess.PDF()
	if err != nil {
		return nil, err
	}

	s.log.Info("snapshot rendered", zap.String("url", url), zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// AuditDocument renders url and writes it under dir as
// <alertID>_<timestamp>.pdf, the layout the evidence endpoint serves from.
func (s *Snapshotter) AuditDocument(ctx context.Context, dir, alertID, url string) (string, error) {
	pdf, err := s.Snapshot(ctx, url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audit dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", alertID, time.Now().UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write audit document: %w", err)
	}
	return path, nil
}

// SnapshotToStore renders url and uploads the document to the evidence
// store, returning its reference.
func (s *Snapshotter) SnapshotToStore(ctx context.Context, store evidence.Store, url, name string) (string, error) {
	pdf, err := s.Snapshot(ctx, url)
	if err != nil {
		return "", err
	}
	return store.Upload(ctx, pdf, name)
}
