package popup

import (
	"context"
	"sync"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirect"
	"github.com/kbukum/socialauth/redirectpage"
)

const subscriberBuffer = 16

// Bus fans envelopes out to every current subscriber.
type Bus struct {
	mu   sync.Mutex
	subs map[uint64]chan redirect.Envelope
	next uint64
	log  *logger.Logger
}

// NewBus creates an empty bus. log may be nil.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[uint64]chan redirect.Envelope),
		log:  logger.OrNop(log).WithComponent("popup.bus"),
	}
}

// Subscribe registers a new subscriber.
func (b *Bus) Subscribe() (<-chan redirect.Envelope, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan redirect.Envelope, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers env to every subscriber and returns how many received
// it. A subscriber whose buffer is full misses the envelope.
func (b *Bus) Publish(env redirect.Envelope) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- env:
			delivered++
		default:
			b.log.Warn("Dropping envelope for slow subscriber")
		}
	}
	return delivered
}

// Post implements redirectpage.Poster.
func (b *Bus) Post(_ context.Context, env redirect.Envelope, _ string) error {
	b.Publish(env)
	return nil
}

var _ MessageSource = (*Bus)(nil)
var _ redirectpage.Poster = (*Bus)(nil)
