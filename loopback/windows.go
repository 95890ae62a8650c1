package loopback

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/popup"
)

// ErrNotStarted is returned when a window is opened before Start.
var ErrNotStarted = errors.New("loopback: server not started")

type windowSet struct {
	mu      sync.Mutex
	windows map[string]*window
	timeout time.Duration
	now     func() time.Time
}

func newWindowSet(timeout time.Duration) *windowSet {
	return &windowSet{windows: make(map[string]*window), timeout: timeout, now: time.Now}
}

func (ws *windowSet) add(target string) *window {
	w := &window{
		id:       uuid.NewString(),
		target:   target,
		deadline: ws.now().Add(ws.timeout),
		set:      ws,
	}
	ws.mu.Lock()
	ws.windows[w.id] = w
	ws.mu.Unlock()
	return w
}

// get returns the open window with id, or nil.
func (ws *windowSet) get(id string) *window {
	if id == "" {
		return nil
	}
	ws.mu.Lock()
	w := ws.windows[id]
	ws.mu.Unlock()
	if w == nil || w.Closed() {
		return nil
	}
	return w
}

func (ws *windowSet) markClosed(id string) bool {
	ws.mu.Lock()
	w := ws.windows[id]
	ws.mu.Unlock()
	if w == nil {
		return false
	}
	w.closed.Store(true)
	return true
}

func (ws *windowSet) remove(id string) {
	ws.mu.Lock()
	delete(ws.windows, id)
	ws.mu.Unlock()
}

func (ws *windowSet) len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.windows)
}

// window is a browser tab launched for one login attempt. It counts as
// closed after a beacon, an explicit Close or its deadline.
type window struct {
	id       string
	target   string
	deadline time.Time
	closed   atomic.Bool
	set      *windowSet
}

func (w *window) Closed() bool {
	return w.closed.Load() || !w.set.now().Before(w.deadline)
}

// Close forgets the window. The browser tab itself is left to the user.
func (w *window) Close() error {
	w.closed.Store(true)
	w.set.remove(w.id)
	return nil
}

// Opener launches login windows in the system browser through the
// server's /open route.
type Opener struct {
	server *Server
}

var _ popup.Opener = (*Opener)(nil)

// CallbackURL returns the redirect URI served for windows of this opener.
func (o *Opener) CallbackURL() string {
	return o.server.CallbackURL()
}

// Open implements popup.Opener.
func (o *Opener) Open(_ context.Context, target, features string) (popup.Window, error) {
	base := o.server.BaseURL()
	if base == "" {
		return nil, ErrNotStarted
	}
	w := o.server.windows.add(target)
	launch := base + "/open/" + w.id + "?" + url.Values{"features": {features}}.Encode()

	if err := o.server.browse(launch); err != nil {
		_ = w.Close()
		return nil, err
	}
	o.server.log.Debug("Login window opened", map[string]interface{}{
		"window":              w.id,
		logger.FieldOperation: "open",
	})
	return w, nil
}
