package model

import "time"

// Alert represents a shareholder-reporting alert received from the upstream
// compliance system. Immutable once created.
type Alert struct {
	AlertID           string    `json:"alert_id"`
	ISIN              string    `json:"isin"`
	SecurityName      string    `json:"security_name"`
	OutstandingShares *int64    `json:"outstanding_shares_system,omitempty"` // nil when not recorded upstream
	ReceivedAt        time.Time `json:"received_at"`
}

// CountryCode returns the two-letter jurisdiction prefix of the ISIN,
// uppercased. Empty when the identifier is too short to carry one.
func (a Alert) CountryCode() string {
	return CountryFromISIN(a.ISIN)
}

// CountryFromISIN extracts the jurisdiction prefix from an identifier.
func CountryFromISIN(isin string) string {
	if len(isin) < 2 {
		return ""
	}
	code := isin[:2]
	b := []byte(code)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

// Decision classifies a triaged alert.
type Decision string

const (
	DecisionTruePositive  Decision = "True Positive"
	DecisionFalsePositive Decision = "False Positive"
	DecisionInconclusive  Decision = "Inconclusive"
)

// VerificationType names which validation flow produced a record.
type VerificationType string

const (
	VerificationMarketType        VerificationType = "market_type"
	VerificationOutstandingShares VerificationType = "outstanding_shares"
)

// Evidence is a durable, timestamped artifact proving what an automated
// session observed at decision time.
type Evidence struct {
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at"`
}

// DecisionRecord is the terminal, exportable unit produced for each alert.
// Created once by the decision engine, never mutated afterwards.
type DecisionRecord struct {
	AlertID      string           `json:"alert_id"`
	ISIN         string           `json:"isin"`
	SecurityName string           `json:"security_name"`
	Type         VerificationType `json:"verification_type"`

	Fact          ValidationFact `json:"fact"`
	Decision      Decision       `json:"decision"`
	Justification string         `json:"justification"`

	// Evidence capture is an independent outcome: a record may carry a
	// decision with no evidence, and EvidenceError explains why.
	Evidence      *Evidence `json:"evidence,omitempty"`
	EvidenceError string    `json:"evidence_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
