package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/veritriage/veritriage/internal/model"
)

func sampleRecords() []model.DecisionRecord {
	return []model.DecisionRecord{
		{
			AlertID:      "A001",
			ISIN:         "DE0007664039",
			SecurityName: "Volkswagen AG",
			Type:         model.VerificationMarketType,
			Fact: model.NewMarketFact(model.MarketFact{
				IsRegulated: model.Bool(true),
				MarketLabel: "Regulated Market",
				SourceURL:   "https://www.boerse-frankfurt.de/aktie/DE0007664039",
			}),
			Decision:      model.DecisionTruePositive,
			Justification: "Security is traded on a regulated market: Regulated Market",
			Evidence:      &model.Evidence{URL: "/evidence/shot.png"},
		},
		{
			AlertID:       "A002",
			ISIN:          "US0378331005",
			SecurityName:  "Apple Inc",
			Type:          model.VerificationMarketType,
			Fact:          model.NewMarketFact(model.MarketFact{MarketLabel: "Unknown market for country US"}),
			Decision:      model.DecisionInconclusive,
			Justification: "Unknown market for country US",
		},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecordsCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteRecordsCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "alert_id" || rows[0][4] != "decision" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "True Positive" {
		t.Errorf("row 1 decision = %q", rows[1][4])
	}
	if rows[1][7] != "/evidence/shot.png" {
		t.Errorf("row 1 evidence = %q", rows[1][7])
	}
	if rows[2][7] != "" {
		t.Errorf("row 2 evidence = %q, want empty", rows[2][7])
	}
}

func TestExportRecords(t *testing.T) {
	dir := t.TempDir()

	csvPath, jsonPath, err := ExportRecords(dir, sampleRecords())
	if err != nil {
		t.Fatalf("ExportRecords: %v", err)
	}

	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("csv export missing: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json export: %v", err)
	}
	var records []model.DecisionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal json export: %v", err)
	}
	if len(records) != 2 || records[0].AlertID != "A001" {
		t.Errorf("json export = %+v", records)
	}
}

func TestSummarizeDecisions(t *testing.T) {
	counts := SummarizeDecisions(sampleRecords())
	if counts[model.DecisionTruePositive] != 1 {
		t.Errorf("true positives = %d", counts[model.DecisionTruePositive])
	}
	if counts[model.DecisionInconclusive] != 1 {
		t.Errorf("inconclusive = %d", counts[model.DecisionInconclusive])
	}
	if counts[model.DecisionFalsePositive] != 0 {
		t.Errorf("false positives = %d", counts[model.DecisionFalsePositive])
	}
}

func TestFormatShareCount(t *testing.T) {
	if got := FormatShareCount(nil); got != "unknown" {
		t.Errorf("nil = %q", got)
	}
	if got := FormatShareCount(model.Int64(703040000)); got != "703040000" {
		t.Errorf("got %q", got)
	}
}
