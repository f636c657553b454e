package model

import "testing"

func TestCountryFromISIN(t *testing.T) {
	tests := []struct {
		isin string
		want string
	}{
		{"DE0007664039", "DE"},
		{"de0007664039", "DE"},
		{"FR0000120271", "FR"},
		{"CH0012032048", "CH"},
		{"ch0012032048", "CH"},
		{"US0378331005", "US"},
		{"D", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CountryFromISIN(tt.isin); got != tt.want {
			t.Errorf("CountryFromISIN(%q) = %q, want %q", tt.isin, got, tt.want)
		}
	}
}

func TestAlert_CountryCode(t *testing.T) {
	a := Alert{ISIN: "de0007664039"}
	if got := a.CountryCode(); got != "DE" {
		t.Errorf("CountryCode() = %q, want DE", got)
	}
}

func TestValidationFact_SourceURL(t *testing.T) {
	market := NewMarketFact(MarketFact{SourceURL: "https://example.com/m"})
	if got := market.SourceURL(); got != "https://example.com/m" {
		t.Errorf("market SourceURL() = %q", got)
	}

	shares := NewShareFact(ShareFact{SourceURL: "https://example.com/s"})
	if got := shares.SourceURL(); got != "https://example.com/s" {
		t.Errorf("shares SourceURL() = %q", got)
	}

	var empty ValidationFact
	if got := empty.SourceURL(); got != "" {
		t.Errorf("empty SourceURL() = %q, want empty", got)
	}
}

func TestNewMarketFact_TagsKind(t *testing.T) {
	f := NewMarketFact(MarketFact{MarketLabel: "Regulated Market"})
	if f.Kind != VerificationMarketType {
		t.Errorf("Kind = %q, want %q", f.Kind, VerificationMarketType)
	}
	if f.Market == nil || f.Shares != nil {
		t.Error("expected Market set and Shares nil")
	}
}

func TestNewShareFact_TagsKind(t *testing.T) {
	f := NewShareFact(ShareFact{ExpectedShares: 100})
	if f.Kind != VerificationOutstandingShares {
		t.Errorf("Kind = %q, want %q", f.Kind, VerificationOutstandingShares)
	}
	if f.Shares == nil || f.Market != nil {
		t.Error("expected Shares set and Market nil")
	}
}
