package route

import (
	"strings"
	"testing"

	"github.com/veritriage/veritriage/internal/model"
)

func TestRouter_Route_BuiltinJurisdictions(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		isin string
		want model.VerificationType
	}{
		{"DE0007664039", model.VerificationMarketType},
		{"FR0000120271", model.VerificationMarketType},
		{"CH0012032048", model.VerificationOutstandingShares},
		{"de0007664039", model.VerificationMarketType},
	}

	for _, tt := range tests {
		got, ok := r.Route(tt.isin)
		if !ok {
			t.Errorf("Route(%q): not supported, expected %q", tt.isin, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Route(%q) = %q, want %q", tt.isin, got, tt.want)
		}
	}
}

func TestRouter_Route_UnsupportedJurisdiction(t *testing.T) {
	r := NewRouter()

	for _, isin := range []string{"US0378331005", "GB0002634946", "XX123", ""} {
		if _, ok := r.Route(isin); ok {
			t.Errorf("Route(%q): expected unsupported", isin)
		}
	}
}

func TestRouter_Register_AddsJurisdiction(t *testing.T) {
	r := NewRouter()
	r.Register("AT", model.VerificationMarketType)

	got, ok := r.Route("AT0000652011")
	if !ok || got != model.VerificationMarketType {
		t.Errorf("Route after Register = (%q, %v), want (market_type, true)", got, ok)
	}
}

func TestUnsupportedFact(t *testing.T) {
	fact := UnsupportedFact("US0378331005")

	if fact.Kind != model.VerificationMarketType {
		t.Errorf("Kind = %q", fact.Kind)
	}
	if fact.Market == nil {
		t.Fatal("expected market fact")
	}
	if fact.Market.IsRegulated != nil {
		t.Error("expected unknown classification")
	}
	if !strings.Contains(fact.Market.MarketLabel, "US") {
		t.Errorf("label %q should name the jurisdiction prefix", fact.Market.MarketLabel)
	}
	if fact.Market.SourceURL != "" {
		t.Errorf("no navigation happened, SourceURL should be empty, got %q", fact.Market.SourceURL)
	}
}
