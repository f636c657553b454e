package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/evidence"
	"github.com/veritriage/veritriage/internal/model"
)

// uidPattern matches Swiss company registration identifiers (CHE-XXX.XXX.XXX).
var uidPattern = regexp.MustCompile(`CHE-[0-9]{3}\.[0-9]{3}\.[0-9]{3}`)

// ShareProfile describes the two-hop registry lookup: a public search portal
// resolves the company to a detail/excerpt page, which is then retrieved
// over a possibly different egress route.
type ShareProfile struct {
	PortalURL       string
	SearchInput     string
	SearchButton    string
	SearchButtonTxt string

	// Strategy a: derive the excerpt URL from the registration identifier.
	UIDScope       string
	UIDWait        time.Duration
	ExcerptURLTmpl string

	// Strategy b: read the excerpt link straight from the results table.
	ExcerptLink    string
	ExcerptLinkTxt string

	// Excerpt page extraction.
	ColumnHeader string
	// Tiers are tried in order; the first selector yielding any element
	// wins. The silent-looking fallback chain is deliberate: registry
	// markup shifts between cantons and releases.
	Tiers []string

	IdleTimeout time.Duration
}

// DefaultShareProfile returns the Swiss Zefix/cantonal-register profile.
func DefaultShareProfile() ShareProfile {
	return ShareProfile{
		PortalURL:       "https://www.zefix.ch/en/search/entity/list",
		SearchInput:     `input[formcontrolname="mainSearch"]`,
		SearchButton:    "button span.mdc-button__label",
		SearchButtonTxt: "search",
		UIDScope:        "table.company-info a",
		UIDWait:         30 * time.Second,
		ExcerptURLTmpl:  "https://zh.chregister.ch/cr-portal/auszug/auszug.xhtml?uid=%s",
		ExcerptLink:     "a.ob-button",
		ExcerptLinkTxt:  "cantonal excerpt",
		ColumnHeader:    "Denomination of shares",
		Tiers: []string{
			"tr.evenRowHideAndSeek td:nth-child(5) span span:not(.strike)",
			"table tr:last-child td:nth-child(5) span span:not(.strike)",
		},
		IdleTimeout: 35 * time.Second,
	}
}

// ExtractUID finds a registration identifier in any of the given texts.
func ExtractUID(texts []string) (string, bool) {
	for _, t := range texts {
		if uid := uidPattern.FindString(t); uid != "" {
			return uid, true
		}
	}
	return "", false
}

// ShareValidator verifies a company's outstanding shares against the
// commercial register.
type ShareValidator struct {
	open         SessionOpener
	store        evidence.Store
	profile      ShareProfile
	tolerancePct float64
	detailPath   browser.NetworkPath
	log          *zap.Logger
}

// NewShareValidator wires a validator with the default Swiss profile. The
// detail hop runs over the proxied path when a proxy is configured, because
// the cantonal register blocks most datacenter egress.
func NewShareValidator(open SessionOpener, store evidence.Store, proxy model.ProxyConfig, tolerancePct float64, log *zap.Logger) *ShareValidator {
	if log == nil {
		log = zap.NewNop()
	}
	detailPath := browser.PathDirect
	if proxy.Enabled() {
		detailPath = browser.PathProxied
	}
	return &ShareValidator{
		open:         open,
		store:        store,
		profile:      DefaultShareProfile(),
		tolerancePct: tolerancePct,
		detailPath:   detailPath,
		log:          log,
	}
}

// VerifyOutstandingShares runs the two-hop lookup for companyName and
// compares the summed registry tranches against expectedShares. The
// returned fact always carries the last page the flow reached.
func (v *ShareValidator) VerifyOutstandingShares(ctx context.Context, companyName string, expectedShares int64) Outcome {
	p := v.profile

	unknown := func(sourceURL string, err error) Outcome {
		if err != nil {
			v.log.Warn("share verification failed",
				zap.String("company", companyName),
				zap.Error(err))
		}
		return Outcome{Fact: model.NewShareFact(model.ShareFact{
			ExpectedShares: expectedShares,
			SourceURL:      sourceURL,
		})}
	}

	// Hop 1: search portal over the direct path.
	targetURL, out := v.resolveDetailURL(ctx, companyName, expectedShares)
	if targetURL == "" {
		// Reportable inconclusive outcome, not an error: the company may
		// simply not be listed.
		return out
	}

	// Hop 2: a fresh session over the detail egress route. The portal
	// session is already closed; profiles are never reused across paths.
	sess, err := v.open(ctx, v.detailPath)
	if err != nil {
		return unknown(targetURL, err)
	}
	defer sess.Close()

	if err := sess.Navigate(targetURL); err != nil {
		return unknown(targetURL, err)
	}
	sess.WaitNetworkIdle(p.IdleTimeout)
	sess.SettleFullPage()

	out = Outcome{}
	out.Evidence, out.EvidenceError = captureScreenshot(ctx, sess, v.store,
		fmt.Sprintf("evidence_%s_shares.png", strings.ReplaceAll(companyName, " ", "_")))

	fact := model.ShareFact{
		ExpectedShares: expectedShares,
		SourceURL:      targetURL,
	}

	hasColumn, err := sess.HasMatching("th", p.ColumnHeader)
	if err != nil {
		f := unknown(targetURL, err)
		f.Evidence, f.EvidenceError = out.Evidence, out.EvidenceError
		return f
	}

	if hasColumn {
		texts := v.collectDenominations(sess)
		if total := SumDenominations(texts); total > 0 {
			fact.ActualShares = model.Int64(total)
			fact.Matched = model.Bool(CompareShares(total, expectedShares, v.tolerancePct))
		}
	}

	v.log.Info("share verification complete",
		zap.String("company", companyName),
		zap.Int64p("actual", fact.ActualShares),
		zap.Int64("expected", expectedShares))

	out.Fact = model.NewShareFact(fact)
	return out
}

// resolveDetailURL runs the portal hop. It returns the excerpt URL, or an
// empty URL plus the terminal outcome when neither resolution strategy
// yields one.
func (v *ShareValidator) resolveDetailURL(ctx context.Context, companyName string, expectedShares int64) (string, Outcome) {
	p := v.profile

	terminal := func(err error) (string, Outcome) {
		if err != nil {
			v.log.Warn("portal search failed",
				zap.String("company", companyName),
				zap.Error(err))
		}
		return "", Outcome{Fact: model.NewShareFact(model.ShareFact{
			ExpectedShares: expectedShares,
			SourceURL:      p.PortalURL,
		})}
	}

	sess, err := v.open(ctx, browser.PathDirect)
	if err != nil {
		return terminal(err)
	}
	defer sess.Close()

	if err := sess.Navigate(p.PortalURL); err != nil {
		return terminal(err)
	}
	sess.WaitNetworkIdle(p.IdleTimeout)

	if err := sess.Fill(p.SearchInput, companyName); err != nil {
		return terminal(err)
	}
	if err := sess.ClickMatching(p.SearchButton, p.SearchButtonTxt); err != nil {
		return terminal(err)
	}
	sess.WaitNetworkIdle(p.IdleTimeout)

	// Strategy a: registration identifier from the company-info table.
	if err := sess.WaitVisible(p.UIDScope, p.UIDWait); err == nil {
		if texts, err := sess.Texts(p.UIDScope); err == nil {
			if uid, found := ExtractUID(texts); found {
				return fmt.Sprintf(p.ExcerptURLTmpl, uid), Outcome{}
			}
		}
	} else {
		v.log.Debug("registration id not found directly", zap.String("company", companyName))
	}

	// Strategy b: excerpt link from the results table.
	if href, err := sess.AttributeMatching(p.ExcerptLink, p.ExcerptLinkTxt, "href", p.UIDWait); err == nil && href != "" {
		return href, Outcome{}
	}

	return terminal(nil)
}

// collectDenominations tries each live selector tier, then falls back to a
// static parse of the serialized page.
func (v *ShareValidator) collectDenominations(sess Session) []string {
	for _, tier := range v.profile.Tiers {
		texts, err := sess.Texts(tier)
		if err != nil {
			continue
		}
		if len(texts) > 0 {
			return texts
		}
	}

	page, err := sess.HTML()
	if err != nil {
		return nil
	}
	return DenominationsFromHTML(page)
}
