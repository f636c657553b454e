// Package route maps an alert's ISIN prefix to the validation flow that
// applies in that jurisdiction.
package route

import (
	"fmt"

	"github.com/veritriage/veritriage/internal/model"
)

// Router resolves the two-letter jurisdiction prefix of an identifier to a
// registered verification flow. An unmapped prefix is a normal, reportable
// outcome, never an error.
type Router struct {
	registry map[string]model.VerificationType
}

// NewRouter returns a router with the built-in jurisdiction registrations:
// German and French securities go through the market-type flow, Swiss ones
// through the outstanding-shares flow.
func NewRouter() *Router {
	r := &Router{registry: make(map[string]model.VerificationType)}
	r.Register("DE", model.VerificationMarketType)
	r.Register("FR", model.VerificationMarketType)
	r.Register("CH", model.VerificationOutstandingShares)
	return r
}

// Register maps a jurisdiction prefix to a verification flow.
func (r *Router) Register(country string, t model.VerificationType) {
	r.registry[country] = t
}

// Route returns the verification flow for an identifier. ok is false when
// the jurisdiction has no registered flow.
func (r *Router) Route(isin string) (model.VerificationType, bool) {
	t, ok := r.registry[model.CountryFromISIN(isin)]
	return t, ok
}

// UnsupportedFact builds the terminal fact for an unmapped jurisdiction.
// No navigation is performed, so the source URL stays empty.
func UnsupportedFact(isin string) model.ValidationFact {
	code := model.CountryFromISIN(isin)
	return model.NewMarketFact(model.MarketFact{
		IsRegulated: nil,
		MarketLabel: fmt.Sprintf("Unknown market for country %s", code),
	})
}
