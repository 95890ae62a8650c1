package popup

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/socialauth/redirect"
)

// future is a single-shot result. A participant must claim it before
// finishing it; only the first claim succeeds.
type future struct {
	claimed atomic.Bool
	once    sync.Once
	done    chan struct{}

	params redirect.Params
	err    error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

// claim reserves the right to settle the future.
func (f *future) claim() bool {
	return f.claimed.CompareAndSwap(false, true)
}

// finish settles the future. Only the first call has an effect.
func (f *future) finish(params redirect.Params, err error) {
	f.once.Do(func() {
		f.params = params
		f.err = err
		close(f.done)
	})
}

// wait blocks until the future is settled.
func (f *future) wait() (redirect.Params, error) {
	<-f.done
	return f.params, f.err
}
