package model

// ValidationFact is the structured result of a jurisdiction check. Exactly
// one of Market or Shares is set, matching Kind.
type ValidationFact struct {
	Kind   VerificationType `json:"kind"`
	Market *MarketFact      `json:"market,omitempty"`
	Shares *ShareFact       `json:"shares,omitempty"`
}

// MarketFact captures a security's market classification as read from an
// exchange's public information page.
//
// IsRegulated is nil when the classification could not be determined; nil
// and false mean different things and must never be conflated.
type MarketFact struct {
	IsRegulated *bool  `json:"is_regulated"`
	MarketLabel string `json:"market_label"`
	SourceURL   string `json:"source_url"`
}

// ShareFact captures a company's outstanding share count as read from a
// commercial registry. ActualShares is nil when extraction failed; Matched
// is nil until a comparison against the system figure was possible.
type ShareFact struct {
	ActualShares   *int64 `json:"actual_shares"`
	ExpectedShares int64  `json:"expected_shares"`
	Matched        *bool  `json:"matched"`
	SourceURL      string `json:"source_url"`
}

// NewMarketFact wraps a MarketFact into a tagged ValidationFact.
func NewMarketFact(f MarketFact) ValidationFact {
	return ValidationFact{Kind: VerificationMarketType, Market: &f}
}

// NewShareFact wraps a ShareFact into a tagged ValidationFact.
func NewShareFact(f ShareFact) ValidationFact {
	return ValidationFact{Kind: VerificationOutstandingShares, Shares: &f}
}

// SourceURL returns the page the validator visited, regardless of shape.
func (f ValidationFact) SourceURL() string {
	switch {
	case f.Market != nil:
		return f.Market.SourceURL
	case f.Shares != nil:
		return f.Shares.SourceURL
	}
	return ""
}

// Bool returns a pointer to b, for building tri-state fact fields.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
