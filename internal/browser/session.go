// Package browser wraps go-rod headless Chrome sessions for the registry
// validators. Each session owns its own browser instance and egress route;
// sessions are never shared across alerts or reused when the network path
// changes mid-flow.
package browser

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/model"
)

// NetworkPath selects the egress route for a session.
type NetworkPath string

const (
	// PathDirect connects straight to the target registry.
	PathDirect NetworkPath = "direct"
	// PathProxied routes through the configured relay proxy. Some registries
	// block datacenter egress, so detail retrieval may need a different
	// route than the search portal.
	PathProxied NetworkPath = "proxied"
)

// Manager builds isolated browser sessions from injected configuration.
type Manager struct {
	cfg   model.BrowserConfig
	proxy model.ProxyConfig
	log   *zap.Logger
}

// NewManager creates a session manager.
func NewManager(cfg model.BrowserConfig, proxy model.ProxyConfig, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cfg: cfg, proxy: proxy, log: log}
}

// Session is a single-page browser context bound to one network path.
type Session struct {
	path     NetworkPath
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cfg      model.BrowserConfig
	log      *zap.Logger
}

// Open launches a fresh browser over the requested network path. The caller
// must Close the session on every exit path.
func (m *Manager) Open(ctx context.Context, path NetworkPath) (*Session, error) {
	l := launcher.New().
		Headless(m.cfg.Headless).
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", m.cfg.ViewportWidth, m.cfg.ViewportHeight)).
		Set(flags.Flag("disable-dev-shm-usage"))

	if path == PathProxied {
		if !m.proxy.Enabled() {
			return nil, fmt.Errorf("proxied network path requested but no proxy configured")
		}
		l = l.Proxy(m.proxy.Server)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	if path == PathProxied && m.proxy.Username != "" {
		go func() {
			if err := b.HandleAuth(m.proxy.Username, m.proxy.Password)(); err != nil {
				m.log.Debug("proxy auth handler exited", zap.Error(err))
			}
		}()
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		m.log.Debug("set viewport", zap.Error(err))
	}
	if m.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.cfg.UserAgent}); err != nil {
			m.log.Debug("set user agent", zap.Error(err))
		}
	}

	m.log.Debug("browser session opened", zap.String("path", string(path)))

	return &Session{
		path:     path,
		launcher: l,
		browser:  b,
		page:     page,
		cfg:      m.cfg,
		log:      m.log,
	}, nil
}

// Path returns the egress route the session was opened with.
func (s *Session) Path() NetworkPath { return s.path }

// Navigate loads a URL and waits for the load event, bounded by the
// configured navigation timeout.
func (s *Session) Navigate(url string) error {
	p := s.page.Timeout(s.cfg.NavTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector appears, or the timeout elapses.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("wait visible %q: %w", selector, err)
	}
	return nil
}

// WaitNetworkIdle blocks until in-flight requests settle.
func (s *Session) WaitNetworkIdle(timeout time.Duration) {
	wait := s.page.Timeout(timeout).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	wait()
}

// SettleFullPage scrolls to the bottom and pauses so lazy-rendered table
// sections materialize before evidence capture.
func (s *Session) SettleFullPage() {
	if _, err := s.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		s.log.Debug("scroll to bottom", zap.Error(err))
	}
	time.Sleep(s.cfg.SettleDelay)
}

// Screenshot captures a full-page PNG of the current state.
func (s *Session) Screenshot() ([]byte, error) {
	return s.page.Screenshot(true, nil)
}

// PDF prints the current page to a PDF document.
func (s *Session) PDF() ([]byte, error) {
	r, err := s.page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// Fill types a value into the element matched by selector.
func (s *Session) Fill(selector, value string) error {
	el, err := s.page.Timeout(s.cfg.NavTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// Click clicks the element matched by selector.
func (s *Session) Click(selector string) error {
	el, err := s.page.Timeout(s.cfg.NavTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Text returns the inner text of the first element matched by selector,
// waiting up to timeout for it to exist.
func (s *Session) Text(selector string, timeout time.Duration) (string, error) {
	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read %q: %w", selector, err)
	}
	return text, nil
}

// Texts returns the inner text of every element currently matching selector.
// A selector with no matches yields an empty slice, not an error.
func (s *Session) Texts(selector string) ([]string, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		out = append(out, text)
	}
	return out, nil
}

// Attribute reads an attribute from the first element matching selector.
func (s *Session) Attribute(selector, name string) (string, error) {
	el, err := s.page.Timeout(s.cfg.NavTimeout).Element(selector)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", selector, err)
	}
	val, err := el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %q of %q: %w", name, selector, err)
	}
	if val == nil {
		return "", fmt.Errorf("attribute %q of %q: not present", name, selector)
	}
	return *val, nil
}

// KeyValueRows reads each row matched by rowSelector as a (key, value) pair
// taken from its first two cells. Rows with fewer than two cells are skipped.
func (s *Session) KeyValueRows(rowSelector string) ([][2]string, error) {
	rows, err := s.page.Elements(rowSelector)
	if err != nil {
		return nil, fmt.Errorf("query rows %q: %w", rowSelector, err)
	}
	out := make([][2]string, 0, len(rows))
	for _, row := range rows {
		cells, err := row.Elements("td")
		if err != nil || len(cells) < 2 {
			continue
		}
		key, err1 := cells[0].Text()
		val, err2 := cells[1].Text()
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, [2]string{key, val})
	}
	return out, nil
}

// ClickMatching clicks the first selector match whose text matches pattern.
func (s *Session) ClickMatching(selector, pattern string) error {
	el, err := s.page.Timeout(s.cfg.NavTimeout).ElementR(selector, pattern)
	if err != nil {
		return fmt.Errorf("find %q matching %q: %w", selector, pattern, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// AttributeMatching reads an attribute from the first selector match whose
// text matches pattern.
func (s *Session) AttributeMatching(selector, pattern, name string, timeout time.Duration) (string, error) {
	el, err := s.page.Timeout(timeout).ElementR(selector, pattern)
	if err != nil {
		return "", fmt.Errorf("find %q matching %q: %w", selector, pattern, err)
	}
	val, err := el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", name, err)
	}
	if val == nil {
		return "", fmt.Errorf("attribute %q: not present", name)
	}
	return *val, nil
}

// HasMatching reports whether any selector match has text matching pattern.
func (s *Session) HasMatching(selector, pattern string) (bool, error) {
	has, _, err := s.page.HasR(selector, pattern)
	if err != nil {
		return false, fmt.Errorf("query %q matching %q: %w", selector, pattern, err)
	}
	return has, nil
}

// Has reports whether any element matches selector right now.
func (s *Session) Has(selector string) (bool, error) {
	has, _, err := s.page.Has(selector)
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return has, nil
}

// HTML returns the serialized DOM of the current page.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// URL returns the page's current location, falling back to empty on error.
func (s *Session) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close tears the session down. Safe to call on every exit path, including
// after cancellation.
func (s *Session) Close() {
	if err := s.page.Close(); err != nil {
		s.log.Debug("close page", zap.Error(err))
	}
	if err := s.browser.Close(); err != nil {
		s.log.Debug("close browser", zap.Error(err))
	}
	s.launcher.Cleanup()
}
