package popup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/redirect"
)

type fakeWindow struct {
	closed     atomic.Bool
	closeCalls atomic.Int32
}

func (w *fakeWindow) Closed() bool { return w.closed.Load() }
func (w *fakeWindow) Close() error {
	w.closeCalls.Add(1)
	w.closed.Store(true)
	return nil
}

type fakeOpener struct {
	window   *fakeWindow
	err      error
	url      string
	features string
}

func (o *fakeOpener) Open(_ context.Context, url, features string) (Window, error) {
	o.url, o.features = url, features
	if o.err != nil {
		return nil, o.err
	}
	return o.window, nil
}

func newTestPopup(t *testing.T) (*Popup, *Bus, *fakeWindow) {
	t.Helper()
	bus := NewBus(nil)
	w := &fakeWindow{}
	p := New(&fakeOpener{window: w}, bus, WithPollInterval(5*time.Millisecond))
	if err := p.Open(context.Background(), "https://provider/auth"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return p, bus, w
}

// waitForSubscriber blocks until AwaitResponse has subscribed to bus.
func waitForSubscriber(t *testing.T, bus *Bus) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		bus.mu.Lock()
		n := len(bus.subs)
		bus.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("AwaitResponse never subscribed")
}

type result struct {
	params redirect.Params
	err    error
}

func await(ctx context.Context, p *Popup, state string, transform Transform) <-chan result {
	out := make(chan result, 1)
	go func() {
		params, err := p.AwaitResponse(ctx, state, transform)
		out <- result{params, err}
	}()
	return out
}

func TestOpen_UsesFeatures(t *testing.T) {
	opener := &fakeOpener{window: &fakeWindow{}}
	p := New(opener, NewBus(nil))
	if err := p.Open(context.Background(), "https://provider/auth"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opener.features != "titlebar=0,toolbar=0,status=0,menubar=0,resizable=0,height=700,width=1200" {
		t.Errorf("unexpected features %q", opener.features)
	}
	if p.State() != StateOpened {
		t.Errorf("expected opened, got %s", p.State())
	}
	if err := p.Open(context.Background(), "https://provider/auth"); !errors.Is(err, ErrAlreadyOpened) {
		t.Errorf("expected ErrAlreadyOpened, got %v", err)
	}
}

func TestOpen_Blocked(t *testing.T) {
	p := New(&fakeOpener{err: errors.New("no display")}, NewBus(nil))
	err := p.Open(context.Background(), "https://provider/auth")
	if !apperrors.IsCode(err, apperrors.ErrCodePopupBlocked) {
		t.Errorf("expected PopupBlocked, got %v", err)
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle, got %s", p.State())
	}
}

func TestAwaitResponse_NotOpened(t *testing.T) {
	p := New(&fakeOpener{}, NewBus(nil))
	if _, err := p.AwaitResponse(context.Background(), "S", nil); !errors.Is(err, ErrNotOpened) {
		t.Errorf("expected ErrNotOpened, got %v", err)
	}
}

func TestAwaitResponse_IgnoresMismatchedStateThenSettles(t *testing.T) {
	p, bus, w := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "other", AccessToken: "X"}))
	select {
	case r := <-res:
		t.Fatalf("mismatched state must not settle, got %+v", r)
	case <-time.After(30 * time.Millisecond):
	}

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))
	r := <-res
	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	if r.params.AccessToken != "T" {
		t.Errorf("expected access token T, got %+v", r.params)
	}
	if p.State() != StateResolved {
		t.Errorf("expected resolved, got %s", p.State())
	}
	if w.closeCalls.Load() != 1 {
		t.Errorf("expected window closed once, got %d", w.closeCalls.Load())
	}
}

func TestAwaitResponse_SkipsEnvelopesWithoutStatus(t *testing.T) {
	p, bus, _ := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.Envelope{Params: redirect.Params{State: "S", AccessToken: "junk"}})
	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))

	r := <-res
	if r.err != nil || r.params.AccessToken != "T" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestAwaitResponse_AcceptsAbsentState(t *testing.T) {
	p, bus, _ := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{AccessToken: "T"}))
	if r := <-res; r.err != nil || r.params.AccessToken != "T" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestAwaitResponse_TransformResult(t *testing.T) {
	p, bus, _ := newTestPopup(t)
	transform := func(_ context.Context, params redirect.Params) (redirect.Params, error) {
		params.IDToken = params.AccessToken
		return params, nil
	}
	res := await(context.Background(), p, "S", transform)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))
	if r := <-res; r.err != nil || r.params.IDToken != "T" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestAwaitResponse_TransformError(t *testing.T) {
	p, bus, _ := newTestPopup(t)
	transform := func(context.Context, redirect.Params) (redirect.Params, error) {
		return redirect.Params{}, apperrors.StateMismatch()
	}
	res := await(context.Background(), p, "S", transform)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))
	if r := <-res; !apperrors.IsCode(r.err, apperrors.ErrCodeStateMismatch) {
		t.Fatalf("expected state mismatch, got %v", r.err)
	}
	if p.State() != StateRejected {
		t.Errorf("expected rejected, got %s", p.State())
	}
}

func TestAwaitResponse_ProviderError(t *testing.T) {
	p, bus, _ := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", Error: "access_denied", ErrorDescription: "denied"}))
	r := <-res
	appErr, ok := apperrors.AsAppError(r.err)
	if !ok || appErr.Code != apperrors.ErrCodeProviderError {
		t.Fatalf("expected provider error, got %v", r.err)
	}
	if appErr.Message != "access_denied: denied" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestAwaitResponse_ClosedByUser(t *testing.T) {
	p, bus, w := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	w.closed.Store(true)
	r := <-res
	if !apperrors.IsCode(r.err, apperrors.ErrCodePopupClosedByUser) {
		t.Fatalf("expected closed by user, got %v", r.err)
	}
	appErr, _ := apperrors.AsAppError(r.err)
	if appErr.Message != "popup closed by user" {
		t.Errorf("unexpected message %q", appErr.Message)
	}

	// A stale message after rejection is dropped: nobody is subscribed.
	if n := bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"})); n != 0 {
		t.Errorf("expected stale message to reach no subscriber, got %d", n)
	}
	if p.State() != StateRejected {
		t.Errorf("expected rejected, got %s", p.State())
	}
}

func TestAwaitResponse_AcceptedMessageDisarmsClosedPoll(t *testing.T) {
	p, bus, w := newTestPopup(t)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	transform := func(_ context.Context, params redirect.Params) (redirect.Params, error) {
		calls.Add(1)
		close(started)
		<-release
		return params, nil
	}
	res := await(context.Background(), p, "S", transform)
	waitForSubscriber(t, bus)

	bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))
	<-started
	// The window is already closed while the response is transformed; several polls pass.
	w.closed.Store(true)
	time.Sleep(30 * time.Millisecond)
	close(release)

	r := <-res
	if r.err != nil {
		t.Fatalf("expected resolve despite closed window, got %v", r.err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected transform to run once, got %d", calls.Load())
	}
}

func TestAwaitResponse_ContextCancelled(t *testing.T) {
	p, bus, w := newTestPopup(t)
	ctx, cancel := context.WithCancel(context.Background())
	res := await(ctx, p, "S", nil)
	waitForSubscriber(t, bus)

	cancel()
	r := <-res
	if !errors.Is(r.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", r.err)
	}
	if !w.Closed() {
		t.Error("expected window to be closed on cancel")
	}
}

func TestAwaitResponse_SettlesOnce(t *testing.T) {
	p, bus, w := newTestPopup(t)
	res := await(context.Background(), p, "S", nil)
	waitForSubscriber(t, bus)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(redirect.EnvelopeFor(redirect.Params{State: "S", AccessToken: "T"}))
		}()
	}
	w.closed.Store(true)
	wg.Wait()

	r := <-res
	if r.err != nil && !apperrors.IsCode(r.err, apperrors.ErrCodePopupClosedByUser) {
		t.Fatalf("unexpected error %v", r.err)
	}
	select {
	case extra := <-res:
		t.Fatalf("settled twice: %+v", extra)
	default:
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	ch, unsubscribe := bus.Subscribe()
	if n := bus.Publish(redirect.Envelope{Status: redirect.StatusSuccess}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	<-ch
	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after unsubscribe")
	}
	if err := bus.Post(context.Background(), redirect.Envelope{}, "*"); err != nil {
		t.Errorf("Post failed: %v", err)
	}
}

func TestState_String(t *testing.T) {
	if StateRejected.String() != "rejected" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
