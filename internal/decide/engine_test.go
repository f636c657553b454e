package decide

import (
	"strings"
	"testing"

	"github.com/veritriage/veritriage/internal/model"
)

func TestDecideMarket_Regulated(t *testing.T) {
	decision, justification := DecideMarket(model.MarketFact{
		IsRegulated: model.Bool(true),
		MarketLabel: "Regulated Market",
	})

	if decision != model.DecisionTruePositive {
		t.Errorf("decision = %q, want True Positive", decision)
	}
	if justification != "Security is traded on a regulated market: Regulated Market" {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecideMarket_Unregulated(t *testing.T) {
	decision, justification := DecideMarket(model.MarketFact{
		IsRegulated: model.Bool(false),
		MarketLabel: "Unregulated Market",
	})

	if decision != model.DecisionFalsePositive {
		t.Errorf("decision = %q, want False Positive", decision)
	}
	if !strings.Contains(justification, "Unregulated Market") {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecideMarket_Unknown(t *testing.T) {
	// nil classification is not the same finding as unregulated.
	decision, justification := DecideMarket(model.MarketFact{
		MarketLabel: "Error checking market: timeout",
	})

	if decision != model.DecisionInconclusive {
		t.Errorf("decision = %q, want Inconclusive", decision)
	}
	if justification != "Could not determine market type" {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecideShares_Match(t *testing.T) {
	decision, justification := DecideShares(model.ShareFact{
		ActualShares:   model.Int64(2895835),
		ExpectedShares: 2895835,
		Matched:        model.Bool(true),
	})

	if decision != model.DecisionTruePositive {
		t.Errorf("decision = %q, want True Positive", decision)
	}
	if justification != "Outstanding shares match: Expected=2895835, Actual=2895835" {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecideShares_Mismatch(t *testing.T) {
	decision, justification := DecideShares(model.ShareFact{
		ActualShares:   model.Int64(2895835),
		ExpectedShares: 2895000,
		Matched:        model.Bool(false),
	})

	if decision != model.DecisionFalsePositive {
		t.Errorf("decision = %q, want False Positive", decision)
	}
	if !strings.Contains(justification, "Expected=2895000") || !strings.Contains(justification, "Actual=2895835") {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecideShares_Unknown(t *testing.T) {
	decision, justification := DecideShares(model.ShareFact{
		ExpectedShares: 2895835,
	})

	if decision != model.DecisionInconclusive {
		t.Errorf("decision = %q, want Inconclusive", decision)
	}
	if justification != "Could not determine outstanding shares" {
		t.Errorf("justification = %q", justification)
	}
}

func TestDecide_DispatchesByKind(t *testing.T) {
	market := model.NewMarketFact(model.MarketFact{
		IsRegulated: model.Bool(true),
		MarketLabel: "Regulated Market",
	})
	if decision, _ := Decide(market); decision != model.DecisionTruePositive {
		t.Errorf("market dispatch: decision = %q", decision)
	}

	shares := model.NewShareFact(model.ShareFact{
		ActualShares:   model.Int64(100),
		ExpectedShares: 100,
		Matched:        model.Bool(true),
	})
	if decision, _ := Decide(shares); decision != model.DecisionTruePositive {
		t.Errorf("shares dispatch: decision = %q", decision)
	}
}

func TestDecide_EmptyFact(t *testing.T) {
	decision, justification := Decide(model.ValidationFact{})
	if decision != model.DecisionInconclusive {
		t.Errorf("decision = %q, want Inconclusive", decision)
	}
	if justification == "" {
		t.Error("expected a justification")
	}
}
