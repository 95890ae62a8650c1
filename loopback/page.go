package loopback

import (
	"context"
	"sync"
)

// Page is the process-side view of the browser page in redirect mode.
// Navigate sends the browser away; the callback location lands here when
// the provider redirects back.
type Page struct {
	browse   BrowserFunc
	callback func() string

	mu       sync.RWMutex
	location string
	landed   chan struct{}
	once     sync.Once
}

func newPage(browse BrowserFunc, callback func() string) *Page {
	return &Page{browse: browse, callback: callback, landed: make(chan struct{})}
}

// CallbackURL returns the redirect URI that lands on this page.
func (p *Page) CallbackURL() string {
	return p.callback()
}

// Location returns the current page location.
func (p *Page) Location() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// Navigate opens url in the browser.
func (p *Page) Navigate(_ context.Context, url string) error {
	return p.browse(url)
}

// ReplaceURL rewrites the current location without navigating.
func (p *Page) ReplaceURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = url
}

// Wait blocks until a redirect lands and returns its location.
func (p *Page) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.landed:
		return p.Location(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Page) land(location string) {
	p.ReplaceURL(location)
	p.once.Do(func() { close(p.landed) })
}
