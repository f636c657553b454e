package worker

import (
	"context"
	"fmt"

	"github.com/veritriage/veritriage/internal/ingest"
	"github.com/veritriage/veritriage/internal/model"
)

// Processor triages one alert into a decision record. It never fails: every
// fault terminates in an Inconclusive record.
type Processor interface {
	Process(ctx context.Context, alert model.Alert) model.DecisionRecord
	EntryURL(alert model.Alert) string
}

// TriageJob processes one alert at a known batch position.
type TriageJob struct {
	Index     int
	Alert     model.Alert
	Processor Processor
	Limiter   *Limiter
}

// Execute waits for rate-limit clearance against the alert's registry
// domain, then runs the pipeline.
func (j *TriageJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if url := j.Processor.EntryURL(j.Alert); url != "" {
			if err := j.Limiter.Wait(ctx, url); err != nil {
				return &TriageResult{
					Index:  j.Index,
					Alert:  j.Alert,
					Record: cancelledRecord(j.Alert, err),
				}
			}
		}
	}

	return &TriageResult{
		Index:  j.Index,
		Alert:  j.Alert,
		Record: j.Processor.Process(ctx, j.Alert),
	}
}

// TriageResult is the per-row outcome of a batch.
type TriageResult struct {
	Index  int
	Alert  model.Alert
	Record model.DecisionRecord
}

// GetError satisfies Result; triage rows carry their faults inside the
// record, so there is never a job-level error.
func (r *TriageResult) GetError() error { return nil }

// BatchProcessor triages many alerts concurrently while preserving input
// order in the output.
type BatchProcessor struct {
	processor   Processor
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor with per-domain rate limiting.
func NewBatchProcessor(processor Processor, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessAlerts triages all alerts and returns exactly one record per input
// row, in input order. Rows that never ran (cancellation) still get a
// populated Inconclusive record.
func (b *BatchProcessor) ProcessAlerts(ctx context.Context, alerts []model.Alert) []model.DecisionRecord {
	if len(alerts) == 0 {
		return []model.DecisionRecord{}
	}

	pool := NewPool(ctx, b.concurrency, len(alerts))
	pool.Start()

	for i, alert := range alerts {
		pool.Submit(&TriageJob{
			Index:     i,
			Alert:     alert,
			Processor: b.processor,
			Limiter:   b.limiter,
		})
	}

	results := pool.Wait()

	// Single-writer placement by input index keeps the export deterministic
	// regardless of completion order.
	records := make([]model.DecisionRecord, len(alerts))
	seen := make([]bool, len(alerts))
	for _, result := range results {
		tr := result.(*TriageResult)
		records[tr.Index] = tr.Record
		seen[tr.Index] = true
	}
	for i := range records {
		if !seen[i] {
			records[i] = cancelledRecord(alerts[i], ctx.Err())
		}
	}

	return records
}

// ProcessFile loads a CSV batch and triages it.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]model.DecisionRecord, error) {
	alerts, err := ingest.LoadAlertsCSV(path)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	return b.ProcessAlerts(ctx, alerts), nil
}

func cancelledRecord(alert model.Alert, cause error) model.DecisionRecord {
	justification := "Processing cancelled before completion"
	if cause != nil {
		justification = fmt.Sprintf("Processing cancelled before completion: %v", cause)
	}
	return model.DecisionRecord{
		AlertID:       alert.AlertID,
		ISIN:          alert.ISIN,
		SecurityName:  alert.SecurityName,
		Decision:      model.DecisionInconclusive,
		Justification: justification,
	}
}
