package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/kbukum/socialauth/component"
)

// Request is one call received by Backend.
type Request struct {
	Path  string
	Query url.Values
	Body  map[string]string
}

// Backend serves the gateway and key service endpoints:
//
//	GET  /get-config/   {"RPC_URL": RPCURL}
//	GET  /get-address/  {"address": Address}
//	POST /private-key   {"privateKey": PrivateKey}
//	POST /public-key    {"X": X, "Y": Y}
//
// An empty field makes its endpoint answer 500.
type Backend struct {
	RPCURL     string
	Address    string
	PrivateKey string
	X, Y       string

	mu       sync.Mutex
	srv      *httptest.Server
	requests []Request
}

var _ TestComponent = (*Backend)(nil)

// NewBackend creates a stopped backend with working defaults.
func NewBackend() *Backend {
	return &Backend{
		RPCURL:     "https://rpc.test",
		Address:    "abc",
		PrivateKey: "pk_http",
		X:          "1",
		Y:          "2",
	}
}

// Name implements component.Component.
func (b *Backend) Name() string { return "backend" }

// Start implements component.Component.
func (b *Backend) Start(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.srv != nil {
		return fmt.Errorf("backend already started")
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /get-config/", b.handle(func() (any, bool) {
		return map[string]string{"RPC_URL": b.RPCURL}, b.RPCURL != ""
	}))
	mux.HandleFunc("GET /get-address/", b.handle(func() (any, bool) {
		return map[string]string{"address": b.Address}, b.Address != ""
	}))
	mux.HandleFunc("POST /private-key", b.handle(func() (any, bool) {
		return map[string]string{"privateKey": b.PrivateKey}, b.PrivateKey != ""
	}))
	mux.HandleFunc("POST /public-key", b.handle(func() (any, bool) {
		return map[string]string{"X": b.X, "Y": b.Y}, b.X != "" && b.Y != ""
	}))
	b.srv = httptest.NewServer(mux)
	return nil
}

func (b *Backend) handle(respond func() (any, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := Request{Path: r.URL.Path, Query: r.URL.Query()}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req.Body)
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		body, ok := respond()
		b.mu.Unlock()

		if !ok {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Stop implements component.Component.
func (b *Backend) Stop(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.srv != nil {
		b.srv.Close()
		b.srv = nil
	}
	return nil
}

// Health implements component.Component.
func (b *Backend) Health(context.Context) component.Health {
	if b.URL() == "" {
		return component.Health{Name: b.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: b.Name(), Status: component.StatusHealthy}
}

// URL returns the base URL of the running server.
func (b *Backend) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.srv == nil {
		return ""
	}
	return b.srv.URL
}

// Requests returns the calls received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Last returns the latest call to path.
func (b *Backend) Last(path string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// Reset forgets recorded calls.
func (b *Backend) Reset(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
	return nil
}

// Snapshot returns the recorded calls.
func (b *Backend) Snapshot(context.Context) (interface{}, error) {
	return b.Requests(), nil
}

// Restore replaces the recorded calls.
func (b *Backend) Restore(_ context.Context, snapshot interface{}) error {
	reqs, ok := snapshot.([]Request)
	if !ok {
		return fmt.Errorf("unexpected snapshot type %T", snapshot)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append([]Request(nil), reqs...)
	return nil
}
