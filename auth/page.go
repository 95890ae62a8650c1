package auth

import (
	"context"
	"sync"
)

// Page is the location the SDK runs on in redirect mode.
type Page interface {
	// Location returns the current URL.
	Location() string
	// Navigate sends the page to url.
	Navigate(ctx context.Context, url string) error
	// ReplaceURL rewrites the current URL without navigating.
	ReplaceURL(url string)
}

// MemoryPage is a Page that only records navigation.
type MemoryPage struct {
	mu        sync.Mutex
	location  string
	navigated []string
}

// NewMemoryPage creates a page at location.
func NewMemoryPage(location string) *MemoryPage {
	return &MemoryPage{location: location}
}

// Location implements Page.
func (p *MemoryPage) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// Navigate implements Page. The location is left unchanged: the page is
// gone until the provider sends the user back.
func (p *MemoryPage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return nil
}

// ReplaceURL implements Page.
func (p *MemoryPage) ReplaceURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = url
}

// Navigated returns every URL passed to Navigate.
func (p *MemoryPage) Navigated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}
