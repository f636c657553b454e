package validate

import (
	"context"
	"errors"
	"time"

	"github.com/veritriage/veritriage/internal/browser"
)

// fakeSession scripts a browser session for validator tests. Zero value
// behaves like a page where everything is visible and empty.
type fakeSession struct {
	navErr     error
	visibleErr map[string]error
	rows       [][2]string
	rowsErr    error
	texts      map[string][]string
	attrs      map[string]string
	has        map[string]bool
	hasErr     error
	html       string
	shot       []byte
	shotErr    error

	navigated []string
	filled    map[string]string
	clicked   []string
	closed    bool
}

func (f *fakeSession) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSession) WaitVisible(selector string, _ time.Duration) error {
	if err, ok := f.visibleErr[selector]; ok {
		return err
	}
	return nil
}

func (f *fakeSession) WaitNetworkIdle(_ time.Duration) {}
func (f *fakeSession) SettleFullPage()                 {}

func (f *fakeSession) Screenshot() ([]byte, error) {
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	if f.shot == nil {
		return []byte("png"), nil
	}
	return f.shot, nil
}

func (f *fakeSession) Fill(selector, value string) error {
	if f.filled == nil {
		f.filled = make(map[string]string)
	}
	f.filled[selector] = value
	return nil
}

func (f *fakeSession) ClickMatching(selector, _ string) error {
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakeSession) KeyValueRows(_ string) ([][2]string, error) {
	return f.rows, f.rowsErr
}

func (f *fakeSession) Texts(selector string) ([]string, error) {
	return f.texts[selector], nil
}

func (f *fakeSession) AttributeMatching(selector, _, _ string, _ time.Duration) (string, error) {
	if v, ok := f.attrs[selector]; ok {
		return v, nil
	}
	return "", errors.New("element not found")
}

func (f *fakeSession) HasMatching(selector, _ string) (bool, error) {
	return f.has[selector], f.hasErr
}

func (f *fakeSession) HTML() (string, error) { return f.html, nil }

func (f *fakeSession) URL() string {
	if len(f.navigated) == 0 {
		return ""
	}
	return f.navigated[len(f.navigated)-1]
}

func (f *fakeSession) Close() { f.closed = true }

// openerOf hands out the given sessions in order, one per Open call.
func openerOf(sessions ...*fakeSession) SessionOpener {
	i := 0
	return func(_ context.Context, _ browser.NetworkPath) (Session, error) {
		if i >= len(sessions) {
			return nil, errors.New("no session scripted")
		}
		s := sessions[i]
		i++
		return s, nil
	}
}

func failingOpener(err error) SessionOpener {
	return func(_ context.Context, _ browser.NetworkPath) (Session, error) {
		return nil, err
	}
}

// memStore is an in-memory evidence store.
type memStore struct {
	uploads map[string][]byte
	err     error
}

func newMemStore() *memStore {
	return &memStore{uploads: make(map[string][]byte)}
}

func (m *memStore) Upload(_ context.Context, data []byte, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads[name] = data
	return "mem://" + name, nil
}

func (m *memStore) UploadJSON(_ context.Context, _ any, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads[name] = []byte("{}")
	return "mem://" + name, nil
}
