// Package pipeline runs the full triage flow for one alert: route by
// jurisdiction, drive the applicable registry validator, classify the fact
// and emit an immutable decision record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/cache"
	"github.com/veritriage/veritriage/internal/decide"
	"github.com/veritriage/veritriage/internal/evidence"
	"github.com/veritriage/veritriage/internal/model"
	"github.com/veritriage/veritriage/internal/route"
	"github.com/veritriage/veritriage/internal/validate"
)

// MarketChecker resolves a security's market classification.
type MarketChecker interface {
	CheckMarketType(ctx context.Context, isin string) validate.Outcome
}

// ShareChecker verifies a company's outstanding shares.
type ShareChecker interface {
	VerifyOutstandingShares(ctx context.Context, companyName string, expectedShares int64) validate.Outcome
}

// Pipeline wires the router, validators, evidence store and result cache.
type Pipeline struct {
	router  *route.Router
	market  MarketChecker
	shares  ShareChecker
	store   evidence.Store
	records *cache.Records
	log     *zap.Logger
}

// New creates a pipeline. store and records may be nil; the pipeline then
// skips record persistence and caching respectively.
func New(router *route.Router, market MarketChecker, shares ShareChecker, store evidence.Store, records *cache.Records, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if records == nil {
		records = cache.NewRecords(0)
	}
	return &Pipeline{
		router:  router,
		market:  market,
		shares:  shares,
		store:   store,
		records: records,
		log:     log,
	}
}

// Process triages one alert. It always returns a complete record: routing
// misses, validator failures and even panics terminate in an Inconclusive
// record, never in an error or a missing row.
func (p *Pipeline) Process(ctx context.Context, alert model.Alert) (rec model.DecisionRecord) {
	rec = model.DecisionRecord{
		AlertID:      alert.AlertID,
		ISIN:         alert.ISIN,
		SecurityName: alert.SecurityName,
		CreatedAt:    time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("alert processing panicked",
				zap.String("alert_id", alert.AlertID),
				zap.Any("panic", r))
			rec.Decision = model.DecisionInconclusive
			rec.Justification = fmt.Sprintf("Error during processing: %v", r)
			if rec.Fact.Kind == "" {
				rec.Fact = route.UnsupportedFact(alert.ISIN)
				rec.Type = rec.Fact.Kind
			}
		}
	}()

	flow, supported := p.router.Route(alert.ISIN)
	if !supported {
		fact := route.UnsupportedFact(alert.ISIN)
		rec.Type = fact.Kind
		rec.Fact = fact
		rec.Decision = model.DecisionInconclusive
		rec.Justification = fact.Market.MarketLabel
		p.persist(ctx, &rec)
		return rec
	}
	rec.Type = flow

	expected := int64(0)
	if alert.OutstandingShares != nil {
		expected = *alert.OutstandingShares
	}

	key := cache.Key(alert.ISIN, flow, expected)
	if cached, found := p.records.Get(key); found {
		p.log.Debug("serving cached verification", zap.String("isin", alert.ISIN))
		rec.Fact = cached.Fact
		rec.Decision = cached.Decision
		rec.Justification = cached.Justification
		rec.Evidence = cached.Evidence
		rec.EvidenceError = cached.EvidenceError
		return rec
	}

	var out validate.Outcome
	switch flow {
	case model.VerificationOutstandingShares:
		if alert.OutstandingShares == nil {
			rec.Fact = model.NewShareFact(model.ShareFact{})
			rec.Decision = model.DecisionInconclusive
			rec.Justification = fmt.Sprintf("Outstanding shares must be provided for jurisdiction %s", alert.CountryCode())
			p.persist(ctx, &rec)
			return rec
		}
		out = p.shares.VerifyOutstandingShares(ctx, alert.SecurityName, expected)
	default:
		out = p.market.CheckMarketType(ctx, alert.ISIN)
	}

	rec.Fact = out.Fact
	rec.Evidence = out.Evidence
	rec.EvidenceError = out.EvidenceError
	rec.Decision, rec.Justification = decide.Decide(out.Fact)

	p.log.Info("alert triaged",
		zap.String("alert_id", alert.AlertID),
		zap.String("isin", alert.ISIN),
		zap.String("decision", string(rec.Decision)))

	p.records.Set(key, &rec)
	p.persist(ctx, &rec)
	return rec
}

// EntryURL returns the portal the alert's flow will hit first; the batch
// processor rate-limits per registry domain with it.
func (p *Pipeline) EntryURL(alert model.Alert) string {
	flow, ok := p.router.Route(alert.ISIN)
	if !ok {
		return ""
	}
	if flow == model.VerificationOutstandingShares {
		return validate.DefaultShareProfile().PortalURL
	}
	if profile, ok := validate.DefaultMarketProfiles()[alert.CountryCode()]; ok {
		return fmt.Sprintf(profile.URLTemplate, alert.ISIN)
	}
	return ""
}

// persist archives the record next to its evidence. Failure costs the
// archive copy only, never the decision.
func (p *Pipeline) persist(ctx context.Context, rec *model.DecisionRecord) {
	if p.store == nil {
		return
	}
	name := fmt.Sprintf("record_%s.json", rec.AlertID)
	if _, err := p.store.UploadJSON(ctx, rec, name); err != nil {
		p.log.Warn("record archive failed",
			zap.String("alert_id", rec.AlertID),
			zap.Error(err))
	}
}
