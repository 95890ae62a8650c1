package popup

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirect"
)

// DefaultPollInterval is how often the window's closed flag is checked.
const DefaultPollInterval = 500 * time.Millisecond

// State is the lifecycle state of a Popup.
type State int

const (
	StateIdle State = iota
	StateOpened
	StateResolved
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpened:
		return "opened"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

var (
	// ErrAlreadyOpened is returned by a second Open.
	ErrAlreadyOpened = errors.New("popup: already opened")
	// ErrNotOpened is returned by AwaitResponse before Open.
	ErrNotOpened = errors.New("popup: not opened")
)

// Transform runs on the params of an accepted success envelope. Its
// result settles the popup.
type Transform func(ctx context.Context, params redirect.Params) (redirect.Params, error)

// Popup is one login window and its pending response.
type Popup struct {
	opener       Opener
	source       MessageSource
	pollInterval time.Duration
	log          *logger.Logger

	mu     sync.Mutex
	state  State
	window Window
}

// Option configures a Popup.
type Option func(*Popup)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Popup) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Popup) { p.log = logger.OrNop(log).WithComponent("popup") }
}

// New creates an idle popup.
func New(opener Opener, source MessageSource, opts ...Option) *Popup {
	p := &Popup{
		opener:       opener,
		source:       source,
		pollInterval: DefaultPollInterval,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Popup) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Open opens the login window on url. A window that cannot be created is
// reported as PopupBlocked.
func (p *Popup) Open(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return ErrAlreadyOpened
	}
	w, err := p.opener.Open(ctx, url, Features)
	if err != nil {
		return apperrors.PopupBlocked(err)
	}
	if w == nil {
		return apperrors.PopupBlocked(nil)
	}
	p.window = w
	p.state = StateOpened
	return nil
}

// AwaitResponse blocks until the window answers for state, the window is
// closed, or ctx is done. A success envelope resolves with transform's
// result; an error envelope rejects with a provider error.
func (p *Popup) AwaitResponse(ctx context.Context, state string, transform Transform) (redirect.Params, error) {
	p.mu.Lock()
	if p.state != StateOpened {
		p.mu.Unlock()
		return redirect.Params{}, ErrNotOpened
	}
	w := p.window
	p.mu.Unlock()

	msgs, unsubscribe := p.source.Subscribe()
	release := sync.OnceFunc(unsubscribe)
	closeWindow := sync.OnceFunc(func() {
		if err := w.Close(); err != nil {
			p.log.Debug("Closing login window failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	})

	f := newFuture()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.watchMessages(ctx, f, msgs, state, transform, release, closeWindow)
	}()
	go func() {
		defer wg.Done()
		p.pollClosed(f, w)
	}()

	select {
	case <-f.done:
	case <-ctx.Done():
		if f.claim() {
			f.finish(redirect.Params{}, ctx.Err())
		}
	}
	params, err := f.wait()

	release()
	closeWindow()
	wg.Wait()

	p.mu.Lock()
	if err != nil {
		p.state = StateRejected
	} else {
		p.state = StateResolved
	}
	p.mu.Unlock()
	return params, err
}

func (p *Popup) watchMessages(
	ctx context.Context,
	f *future,
	msgs <-chan redirect.Envelope,
	state string,
	transform Transform,
	release, closeWindow func(),
) {
	for {
		select {
		case <-f.done:
			return
		case env, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			if env.Status == "" {
				continue
			}
			if env.Params.State != "" && env.Params.State != state {
				p.log.Debug("Ignoring response for another state")
				continue
			}
			if !f.claim() {
				return
			}
			release()
			closeWindow()
			f.finish(p.settle(ctx, env, transform))
			return
		}
	}
}

func (p *Popup) settle(ctx context.Context, env redirect.Envelope, transform Transform) (redirect.Params, error) {
	if err := env.Err(); err != nil {
		return redirect.Params{}, err
	}
	if transform == nil {
		return env.Params, nil
	}
	return transform(ctx, env.Params)
}

func (p *Popup) pollClosed(f *future, w Window) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			if w.Closed() && f.claim() {
				f.finish(redirect.Params{}, apperrors.PopupClosedByUser())
				return
			}
		}
	}
}
