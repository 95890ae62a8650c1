package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed stores JSON-encoded values of type C in a Store. Keys are
// prefixed with "<prefix>:".
type Typed[C any] struct {
	store  Store
	prefix string
}

// NewTyped creates a typed view of store.
func NewTyped[C any](store Store, prefix string) *Typed[C] {
	return &Typed[C]{store: store, prefix: prefix}
}

// Key returns the full key used in the underlying store.
func (t *Typed[C]) Key(key string) string {
	if t.prefix == "" {
		return key
	}
	return t.prefix + ":" + key
}

// Load decodes the value under key. Returns (nil, nil) if key doesn't exist.
func (t *Typed[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := t.store.Get(ctx, t.Key(key))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}

	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save encodes val as JSON and stores it under key.
func (t *Typed[C]) Save(ctx context.Context, key string, val *C) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if err := t.store.Set(ctx, t.Key(key), string(data)); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (t *Typed[C]) Delete(ctx context.Context, key string) error {
	if err := t.store.Delete(ctx, t.Key(key)); err != nil {
		return fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return nil
}
