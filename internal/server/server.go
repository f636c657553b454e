// Package server exposes the triage pipeline over HTTP: submit one alert or
// a batch, retrieve a prior evidence document, health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/model"
)

// Processor triages one alert. Implemented by pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, alert model.Alert) model.DecisionRecord
}

// Snapshotter renders post-decision audit documents. Optional.
type Snapshotter interface {
	AuditDocument(ctx context.Context, dir, alertID, url string) (string, error)
}

// Server is the HTTP service boundary.
type Server struct {
	processor Processor
	snapshot  Snapshotter
	auditDir  string
	log       *zap.Logger
	router    chi.Router
}

// New wires the routes. snapshot may be nil; audit documents are then
// skipped and only prior evidence is served.
func New(processor Processor, snapshot Snapshotter, auditDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		processor: processor,
		snapshot:  snapshot,
		auditDir:  auditDir,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/alerts", s.handleProcessAlert)
	r.Post("/alerts/batch", s.handleProcessBatch)
	r.Get("/evidence/{alertID}", s.handleGetEvidence)
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.log.Info("http server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type alertRequest struct {
	AlertID           string `json:"alert_id"`
	ISIN              string `json:"isin"`
	SecurityName      string `json:"security_name"`
	OutstandingShares *int64 `json:"outstanding_shares_system,omitempty"`
	Snapshot          bool   `json:"snapshot,omitempty"`
}

type batchRequest struct {
	Alerts []alertRequest `json:"alerts"`
}

type alertResponse struct {
	model.DecisionRecord
	AuditDocument string `json:"audit_document,omitempty"`
}

func (s *Server) handleProcessAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ISIN == "" || req.SecurityName == "" {
		s.writeError(w, http.StatusBadRequest, "isin and security_name are required")
		return
	}

	resp := s.process(r.Context(), req)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	responses := make([]alertResponse, 0, len(req.Alerts))
	for _, a := range req.Alerts {
		responses = append(responses, s.process(r.Context(), a))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) process(ctx context.Context, req alertRequest) alertResponse {
	alert := model.Alert{
		AlertID:           req.AlertID,
		ISIN:              req.ISIN,
		SecurityName:      req.SecurityName,
		OutstandingShares: req.OutstandingShares,
		ReceivedAt:        time.Now().UTC(),
	}
	if alert.AlertID == "" {
		alert.AlertID = "MANUAL_" + uuid.NewString()[:8]
	}

	resp := alertResponse{DecisionRecord: s.processor.Process(ctx, alert)}

	if req.Snapshot && s.snapshot != nil {
		if src := resp.Fact.SourceURL(); src != "" {
			path, err := s.snapshot.AuditDocument(ctx, s.auditDir, alert.AlertID, src)
			if err != nil {
				s.log.Warn("audit document failed",
					zap.String("alert_id", alert.AlertID),
					zap.Error(err))
			} else {
				resp.AuditDocument = path
			}
		}
	}
	return resp
}

func (s *Server) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")

	matches, err := filepath.Glob(filepath.Join(s.auditDir, alertID+"_*.pdf"))
	if err != nil || len(matches) == 0 {
		s.writeError(w, http.StatusNotFound, "evidence not found")
		return
	}

	// Most recent capture wins.
	latest := matches[0]
	var latestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestMod) {
			latest = m
			latestMod = info.ModTime()
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, latest)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
