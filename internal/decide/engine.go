// Package decide maps validation facts to triage decisions. Pure functions,
// no I/O: everything here is replayable from a persisted fact.
package decide

import (
	"fmt"

	"github.com/veritriage/veritriage/internal/model"
)

// Decide classifies a validation fact. A "true positive" is an alert that
// requires regulatory follow-up; the triggering condition differs by
// verification mode: a regulated-market listing triggers it in market mode,
// a share-count match triggers it in share mode.
func Decide(fact model.ValidationFact) (model.Decision, string) {
	switch fact.Kind {
	case model.VerificationMarketType:
		if fact.Market != nil {
			return DecideMarket(*fact.Market)
		}
	case model.VerificationOutstandingShares:
		if fact.Shares != nil {
			return DecideShares(*fact.Shares)
		}
	}
	return model.DecisionInconclusive, "No validation fact available"
}

// DecideMarket applies the market-mode rule. An unknown classification is
// Inconclusive, never False Positive: "could not determine" and
// "unregulated" are different findings.
func DecideMarket(f model.MarketFact) (model.Decision, string) {
	switch {
	case f.IsRegulated == nil:
		return model.DecisionInconclusive, "Could not determine market type"
	case *f.IsRegulated:
		return model.DecisionTruePositive,
			fmt.Sprintf("Security is traded on a regulated market: %s", f.MarketLabel)
	default:
		return model.DecisionFalsePositive,
			fmt.Sprintf("Security is traded on an unregulated market: %s", f.MarketLabel)
	}
}

// DecideShares applies the share-mode rule. Unknown actual count or an
// impossible comparison is Inconclusive.
func DecideShares(f model.ShareFact) (model.Decision, string) {
	if f.ActualShares == nil || f.Matched == nil {
		return model.DecisionInconclusive, "Could not determine outstanding shares"
	}
	if *f.Matched {
		return model.DecisionTruePositive,
			fmt.Sprintf("Outstanding shares match: Expected=%d, Actual=%d", f.ExpectedShares, *f.ActualShares)
	}
	return model.DecisionFalsePositive,
		fmt.Sprintf("Outstanding shares mismatch: Expected=%d, Actual=%d", f.ExpectedShares, *f.ActualShares)
}
