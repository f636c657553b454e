package validate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/evidence"
	"github.com/veritriage/veritriage/internal/model"
)

// MarketProfile describes how one jurisdiction's exchange page is read:
// where it lives, what marks it as loaded, which table row carries the
// market classification, and how that value classifies.
type MarketProfile struct {
	Country       string
	URLTemplate   string
	Marker        string
	MarkerTimeout time.Duration
	RowSelector   string
	KeyLabel      string

	// Classify maps a non-empty market value to (regulated, display label).
	Classify func(value string) (bool, string)
	// MissingLabel is reported when the key row carries no value; the
	// classification stays unknown.
	MissingLabel string
}

// DefaultMarketProfiles returns the built-in exchange profiles.
func DefaultMarketProfiles() map[string]MarketProfile {
	return map[string]MarketProfile{
		"DE": {
			Country:       "DE",
			URLTemplate:   "https://www.boerse-frankfurt.de/aktie/%s",
			Marker:        ".widget-table",
			MarkerTimeout: 10 * time.Second,
			RowSelector:   "table.widget-table tr",
			KeyLabel:      "markt",
			Classify:      ClassifyGermanMarket,
			MissingLabel:  "Unknown Market",
		},
		"FR": {
			Country:       "FR",
			URLTemplate:   "https://live.euronext.com/en/product/equities/%s-XPAR/market-information",
			Marker:        "div#fs_info_block table",
			MarkerTimeout: 15 * time.Second,
			RowSelector:   "div#fs_info_block table tr",
			KeyLabel:      "market",
			Classify:      ClassifyFrenchMarket,
			MissingLabel:  "Market info not found",
		},
	}
}

// ClassifyGermanMarket applies the Börse Frankfurt rule: the value must
// contain the regulated-market phrase; any other non-empty value means the
// security trades on an unregulated segment.
func ClassifyGermanMarket(value string) (bool, string) {
	if strings.Contains(strings.ToLower(value), "regulierter markt") {
		return true, "Regulated Market"
	}
	return false, "Unregulated Market"
}

// ClassifyFrenchMarket applies the Euronext rule: only the main Paris
// exchange counts as regulated.
func ClassifyFrenchMarket(value string) (bool, string) {
	if strings.EqualFold(strings.TrimSpace(value), "euronext paris") {
		return true, "Regulated Market"
	}
	return false, "Unregulated Market"
}

// PickRowValue scans key/value rows for the first key matching label
// (case-insensitive, trimmed) and returns its value.
func PickRowValue(rows [][2]string, label string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row[0])) == want {
			return strings.TrimSpace(row[1]), true
		}
	}
	return "", false
}

// MarketValidator resolves a security's market classification from the
// jurisdiction's exchange page.
type MarketValidator struct {
	open     SessionOpener
	store    evidence.Store
	profiles map[string]MarketProfile
	log      *zap.Logger
}

// NewMarketValidator wires a validator with the default profiles.
func NewMarketValidator(open SessionOpener, store evidence.Store, log *zap.Logger) *MarketValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarketValidator{
		open:     open,
		store:    store,
		profiles: DefaultMarketProfiles(),
		log:      log,
	}
}

// CheckMarketType navigates the jurisdiction's exchange page for isin,
// captures evidence and classifies the market. The returned fact always
// carries the URL of the attempted page.
func (v *MarketValidator) CheckMarketType(ctx context.Context, isin string) Outcome {
	country := model.CountryFromISIN(isin)
	profile, ok := v.profiles[country]
	if !ok {
		return Outcome{Fact: model.NewMarketFact(model.MarketFact{
			MarketLabel: fmt.Sprintf("Unknown market for country %s", country),
		})}
	}

	url := fmt.Sprintf(profile.URLTemplate, isin)
	fail := func(err error) Outcome {
		v.log.Warn("market check failed",
			zap.String("isin", isin),
			zap.String("country", country),
			zap.Error(err))
		return Outcome{Fact: model.NewMarketFact(model.MarketFact{
			MarketLabel: fmt.Sprintf("Error checking market: %v", err),
			SourceURL:   url,
		})}
	}

	sess, err := v.open(ctx, browser.PathDirect)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	if err := sess.Navigate(url); err != nil {
		return fail(err)
	}
	if err := sess.WaitVisible(profile.Marker, profile.MarkerTimeout); err != nil {
		return fail(err)
	}

	// Parts of the table lazy-render below the fold; materialize everything
	// before the screenshot so the evidence shows what was read.
	sess.SettleFullPage()

	out := Outcome{}
	out.Evidence, out.EvidenceError = captureScreenshot(ctx, sess, v.store,
		fmt.Sprintf("evidence_%s_%s_market.png", isin, strings.ToLower(country)))

	rows, err := sess.KeyValueRows(profile.RowSelector)
	if err != nil {
		f := fail(err)
		f.Evidence, f.EvidenceError = out.Evidence, out.EvidenceError
		return f
	}

	sourceURL := sess.URL()
	if sourceURL == "" {
		sourceURL = url
	}

	fact := model.MarketFact{SourceURL: sourceURL}
	if value, found := PickRowValue(rows, profile.KeyLabel); found && value != "" {
		regulated, label := profile.Classify(value)
		fact.IsRegulated = model.Bool(regulated)
		fact.MarketLabel = label
	} else {
		fact.MarketLabel = profile.MissingLabel
	}

	v.log.Info("market check complete",
		zap.String("isin", isin),
		zap.String("label", fact.MarketLabel))

	out.Fact = model.NewMarketFact(fact)
	return out
}

// captureScreenshot grabs a full-page screenshot and uploads it. Failures
// degrade to a reported capture error; they never affect the fact.
func captureScreenshot(ctx context.Context, sess Session, store evidence.Store, name string) (*model.Evidence, string) {
	if store == nil {
		return nil, "no evidence store configured"
	}
	img, err := sess.Screenshot()
	if err != nil {
		return nil, fmt.Sprintf("screenshot: %v", err)
	}
	url, err := store.Upload(ctx, img, name)
	if err != nil {
		return nil, fmt.Sprintf("upload: %v", err)
	}
	return &model.Evidence{URL: url, CapturedAt: time.Now().UTC()}, ""
}
