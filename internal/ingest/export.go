package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/veritriage/veritriage/internal/model"
)

// WriteRecordsCSV writes the batch summary: one row per decision record.
func WriteRecordsCSV(w io.Writer, records []model.DecisionRecord) error {
	cw := csv.NewWriter(w)

	header := []string{
		"alert_id", "isin", "security_name", "verification_type",
		"decision", "justification", "source_url", "evidence_url",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		evidenceURL := ""
		if rec.Evidence != nil {
			evidenceURL = rec.Evidence.URL
		}
		row := []string{
			rec.AlertID,
			rec.ISIN,
			rec.SecurityName,
			string(rec.Type),
			string(rec.Decision),
			rec.Justification,
			rec.Fact.SourceURL(),
			evidenceURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", rec.AlertID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportRecords writes the summary CSV and the full JSON records next to
// each other in dir, returning both paths.
func ExportRecords(dir string, records []model.DecisionRecord) (csvPath, jsonPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	csvPath = dir + "/results.csv"
	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("create %s: %w", csvPath, err)
	}
	defer func() { _ = f.Close() }()
	if err := WriteRecordsCSV(f, records); err != nil {
		return "", "", err
	}

	jsonPath = dir + "/results.json"
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", jsonPath, err)
	}

	return csvPath, jsonPath, nil
}

// SummarizeDecisions tallies records per decision.
func SummarizeDecisions(records []model.DecisionRecord) map[model.Decision]int {
	counts := make(map[model.Decision]int)
	for _, rec := range records {
		counts[rec.Decision]++
	}
	return counts
}

// FormatShareCount renders an optional share count for display.
func FormatShareCount(n *int64) string {
	if n == nil {
		return "unknown"
	}
	return strconv.FormatInt(*n, 10)
}
