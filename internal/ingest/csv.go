// Package ingest loads alert batches from tabular sources.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/veritriage/veritriage/internal/model"
)

var requiredColumns = []string{"alert_id", "isin", "security_name"}

const sharesColumn = "outstanding_shares_system"

// LoadAlertsCSV reads a batch of alerts from a CSV file. A missing required
// column rejects the whole batch; it is a malformed input, not a per-row
// condition.
func LoadAlertsCSV(path string) ([]model.Alert, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alerts file: %w", err)
	}
	defer func() { _ = f.Close() }()

	alerts, err := ReadAlerts(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return alerts, nil
}

// ReadAlerts parses alert rows from CSV content.
func ReadAlerts(r io.Reader) ([]model.Alert, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("required column %q not found", col)
		}
	}
	sharesIdx, hasShares := index[sharesColumn]

	var alerts []model.Alert
	now := time.Now().UTC()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		alert := model.Alert{
			AlertID:      strings.TrimSpace(row[index["alert_id"]]),
			ISIN:         strings.TrimSpace(row[index["isin"]]),
			SecurityName: strings.TrimSpace(row[index["security_name"]]),
			ReceivedAt:   now,
		}
		if hasShares && sharesIdx < len(row) {
			if n, ok := parseShares(row[sharesIdx]); ok {
				alert.OutstandingShares = model.Int64(n)
			}
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// parseShares accepts plain integers and grouped figures ("2'895'835",
// "2,895,835").
func parseShares(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	clean := strings.NewReplacer("'", "", ",", "", ".", "", " ", "").Replace(s)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
