// Package validate implements the per-jurisdiction registry checks: market
// classification from exchange information pages and outstanding-share
// verification from commercial registers.
//
// Validators never return an error past their own boundary. Every run,
// including timeouts and extraction misses, ends in a fully populated fact
// so aggregation and evidence export can proceed uniformly.
package validate

import (
	"context"
	"time"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/model"
)

// Session is the slice of a browser session the validators drive. The
// concrete implementation is *browser.Session; tests substitute scripted
// fakes.
type Session interface {
	Navigate(url string) error
	WaitVisible(selector string, timeout time.Duration) error
	WaitNetworkIdle(timeout time.Duration)
	SettleFullPage()
	Screenshot() ([]byte, error)
	Fill(selector, value string) error
	ClickMatching(selector, pattern string) error
	KeyValueRows(rowSelector string) ([][2]string, error)
	Texts(selector string) ([]string, error)
	AttributeMatching(selector, pattern, name string, timeout time.Duration) (string, error)
	HasMatching(selector, pattern string) (bool, error)
	HTML() (string, error)
	URL() string
	Close()
}

// SessionOpener opens an isolated session over the given network path.
type SessionOpener func(ctx context.Context, path browser.NetworkPath) (Session, error)

// OpenWith adapts a browser.Manager into a SessionOpener.
func OpenWith(m *browser.Manager) SessionOpener {
	return func(ctx context.Context, path browser.NetworkPath) (Session, error) {
		return m.Open(ctx, path)
	}
}

// Outcome bundles a validator's fact with its independently captured
// evidence. Evidence is nil when capture or upload failed; EvidenceError
// then says why, without affecting the fact.
type Outcome struct {
	Fact          model.ValidationFact
	Evidence      *model.Evidence
	EvidenceError string
}
