package loopback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/socialauth/component"
	"github.com/kbukum/socialauth/popup"
	"github.com/kbukum/socialauth/redirect"
)

type fakeBrowser struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (b *fakeBrowser) open(u string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.urls = append(b.urls, u)
	return b.err
}

func (b *fakeBrowser) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.urls) == 0 {
		return ""
	}
	return b.urls[len(b.urls)-1]
}

func newTestServer(t *testing.T, cfg Config) (*Server, *popup.Bus, *fakeBrowser) {
	t.Helper()
	bus := popup.NewBus(nil)
	fb := &fakeBrowser{}
	s := New(cfg, bus, nil, WithBrowser(fb.open))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s, bus, fb
}

var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	Timeout:       5 * time.Second,
}

func relay(t *testing.T, s *Server, location, window string) int {
	t.Helper()
	body, _ := json.Marshal(relayRequest{Location: location, Window: window})
	req, _ := http.NewRequest(http.MethodPost, s.BaseURL()+"/relay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", s.BaseURL())
	resp, err := noRedirect.Do(req)
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Host != "127.0.0.1" || cfg.Port != 0 || cfg.WindowTimeout != 5*time.Minute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	bad := Config{Port: 70000}
	bad.ApplyDefaults()
	if err := bad.Validate(); err == nil {
		t.Error("expected error for port out of range")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{"64KB": 64 << 10, "10mb": 10 << 20, "1GB": 1 << 30, "512": 512, "": -1, "lots": -1}
	for in, want := range tests {
		if got := parseSize(in, -1); got != want {
			t.Errorf("parseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestServer_StartAssignsPort(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})
	if !strings.HasPrefix(s.BaseURL(), "http://127.0.0.1:") || strings.HasSuffix(s.BaseURL(), ":0") {
		t.Errorf("unexpected base url %q", s.BaseURL())
	}
	if s.CallbackURL() != s.BaseURL()+CallbackPath {
		t.Errorf("unexpected callback url %q", s.CallbackURL())
	}

	resp, err := http.Get(s.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status %d", resp.StatusCode)
	}
}

func TestOpener_NotStarted(t *testing.T) {
	s := New(Config{}, popup.NewBus(nil), nil, WithBrowser(func(string) error { return nil }))
	if _, err := s.Opener().Open(context.Background(), "https://provider", popup.Features); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestOpener_BrowserFailure(t *testing.T) {
	s, _, fb := newTestServer(t, Config{})
	fb.err = errors.New("no display")
	if _, err := s.Opener().Open(context.Background(), "https://provider", popup.Features); err == nil {
		t.Fatal("expected browser error")
	}
	if s.windows.len() != 0 {
		t.Errorf("failed window should be forgotten, have %d", s.windows.len())
	}
}

func TestOpenRedirectsAndCallbackEmbedsWindow(t *testing.T) {
	s, _, fb := newTestServer(t, Config{})
	target := "https://accounts.example.com/auth?state=s1"

	w, err := s.Opener().Open(context.Background(), target, popup.Features)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id := w.(*window).id
	launch, err := url.Parse(fb.last())
	if err != nil || launch.Path != "/open/"+id || launch.Query().Get("features") != popup.Features {
		t.Fatalf("unexpected launch url %q", fb.last())
	}

	resp, err := noRedirect.Get(fb.last())
	if err != nil {
		t.Fatalf("open request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != target {
		t.Fatalf("expected redirect to target, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == windowCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != id {
		t.Fatalf("expected window cookie, got %v", resp.Cookies())
	}

	req, _ := http.NewRequest(http.MethodGet, s.CallbackURL()+"?code=x", nil)
	req.AddCookie(cookie)
	resp, err = noRedirect.Do(req)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `"`+id+`"`) || !strings.Contains(string(body), "/relay") {
		t.Errorf("callback page does not embed window id: %s", body)
	}

	resp, err = noRedirect.Get(s.BaseURL() + "/open/unknown")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown window, got %d", resp.StatusCode)
	}
}

func TestRelay_WindowPostsToBus(t *testing.T) {
	s, bus, _ := newTestServer(t, Config{})
	w, _ := s.Opener().Open(context.Background(), "https://provider", popup.Features)

	ch, release := bus.Subscribe()
	defer release()

	if code := relay(t, s, s.CallbackURL()+"#access_token=at&state=s1", w.(*window).id); code != http.StatusNoContent {
		t.Fatalf("relay status %d", code)
	}
	select {
	case env := <-ch:
		if env.Status != redirect.StatusSuccess || env.Params.AccessToken != "at" || env.Params.State != "s1" {
			t.Errorf("unexpected envelope %+v", env)
		}
	case <-time.After(time.Second):
		t.Fatal("no envelope published")
	}
	if s.Page().Location() != "" {
		t.Errorf("popup response should not land on page, got %q", s.Page().Location())
	}
}

func TestRelay_WithoutWindowLandsOnPage(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})
	loc := s.CallbackURL() + "#access_token=at&state=s1"

	if code := relay(t, s, loc, ""); code != http.StatusNoContent {
		t.Fatalf("relay status %d", code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := s.Page().Wait(ctx)
	if err != nil || got != loc {
		t.Errorf("Wait = %q, %v", got, err)
	}
}

func TestRelay_RejectsForeignOrigin(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})
	req, _ := http.NewRequest(http.MethodPost, s.BaseURL()+"/relay", strings.NewReader(`{"location":"http://x/#a=b"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err := noRedirect.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestClosedBeaconAndTimeout(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})
	w, _ := s.Opener().Open(context.Background(), "https://provider", popup.Features)
	if w.Closed() {
		t.Fatal("new window reports closed")
	}
	resp, err := http.Post(s.BaseURL()+"/closed/"+w.(*window).id, "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if !w.Closed() {
		t.Error("expected window closed after beacon")
	}

	short, _, _ := newTestServer(t, Config{WindowTimeout: 20 * time.Millisecond})
	w2, _ := short.Opener().Open(context.Background(), "https://provider", popup.Features)
	time.Sleep(40 * time.Millisecond)
	if !w2.Closed() {
		t.Error("expected window closed after timeout")
	}
}

func TestPopupOverLoopback(t *testing.T) {
	s, bus, _ := newTestServer(t, Config{})
	p := popup.New(s.Opener(), bus, popup.WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Open(ctx, "https://provider/auth"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id := ""
	s.windows.mu.Lock()
	for _, w := range s.windows.windows {
		id = w.id
	}
	s.windows.mu.Unlock()

	done := make(chan redirect.Params, 1)
	go func() {
		params, err := p.AwaitResponse(ctx, "s1", nil)
		if err != nil {
			t.Errorf("AwaitResponse failed: %v", err)
		}
		done <- params
	}()

	// Relay until the popup has subscribed and consumed the response.
	deadline := time.After(3 * time.Second)
	for {
		relay(t, s, s.CallbackURL()+"#access_token=at&state=s1", id)
		select {
		case params := <-done:
			if params.AccessToken != "at" {
				t.Errorf("unexpected params %+v", params)
			}
			if s.windows.len() != 0 {
				t.Error("settled window should be forgotten")
			}
			return
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("popup never settled")
		}
	}
}

func TestComponent(t *testing.T) {
	s := New(Config{}, popup.NewBus(nil), nil, WithBrowser(func(string) error { return nil }))
	c := NewComponent(s)
	ctx := context.Background()

	if c.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Health(ctx).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}
	if d := c.Describe(); d.Type != "server" || d.Details != s.Addr() {
		t.Errorf("unexpected description %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestRelay_RateLimited(t *testing.T) {
	s, _, _ := newTestServer(t, Config{RelayRate: 0.001, RelayBurst: 1})
	loc := s.CallbackURL() + "#access_token=at"

	if code := relay(t, s, loc, ""); code != http.StatusNoContent {
		t.Fatalf("first relay status %d", code)
	}
	if code := relay(t, s, loc, ""); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
}
