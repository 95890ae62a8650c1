package session

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/socialauth/kvstore"
	"github.com/kbukum/socialauth/logger"
)

const (
	// DefaultName is used when a store is created without a name.
	DefaultName = "default"

	keyPrefix    = "session-keystore-"
	entryVersion = 1
)

// entry is one stored value. ExpiresAt is milliseconds since the epoch.
type entry struct {
	Version   int    `json:"version"`
	Value     string `json:"value"`
	ExpiresAt *int64 `json:"expiresAt,omitempty"`
}

// Store is an in-memory keyed store with optional per-entry expiry.
type Store struct {
	name       string
	sessionKey string

	nameSlot    kvstore.Store
	sessionHalf kvstore.Store

	now func() time.Time
	log *logger.Logger

	mu      sync.Mutex
	entries map[string]entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(log).WithComponent("session") }
}

// New creates an empty store without persistence backends. Persist on
// such a store is a no-op.
func New(name string, opts ...Option) *Store {
	if name == "" {
		name = DefaultName
	}
	s := &Store{
		name:       name,
		sessionKey: keyPrefix + name,
		now:        time.Now,
		log:        logger.Nop(),
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// SessionKey returns the key both halves are stored under.
func (s *Store) SessionKey() string { return s.sessionKey }

// SetOption configures a single Set call.
type SetOption func(*entry, time.Time)

// WithExpiry makes the entry expire at t.
func WithExpiry(t time.Time) SetOption {
	return func(e *entry, _ time.Time) {
		ms := t.UnixMilli()
		e.ExpiresAt = &ms
	}
}

// WithTTL makes the entry expire d after it is set.
func WithTTL(d time.Duration) SetOption {
	return func(e *entry, now time.Time) {
		ms := now.Add(d).UnixMilli()
		e.ExpiresAt = &ms
	}
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(key, value string, opts ...SetOption) {
	e := entry{Version: entryVersion, Value: value}
	now := s.now()
	for _, opt := range opts {
		opt(&e, now)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
}

// Get returns the value under key. An expired entry is deleted and
// reported as absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if e.ExpiresAt != nil && *e.ExpiresAt <= s.now().UnixMilli() {
		delete(s.entries, key)
		return "", false
	}
	return e.Value, true
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Len returns the number of entries, including expired ones not yet read.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// keys returns the entry keys in a stable order.
func (s *Store) keys() []string {
	return slices.Sorted(maps.Keys(s.entries))
}
