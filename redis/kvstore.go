package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/socialauth/kvstore"
)

// KVStore adapts a Client to kvstore.Store. Keys are written as
// "<prefix>:<key>" and expire after ttl when ttl is positive.
type KVStore struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewKVStore creates a store using the client's configured key prefix
// and session TTL.
func NewKVStore(client *Client) *KVStore {
	return &KVStore{
		client: client,
		prefix: client.cfg.KeyPrefix,
		ttl:    client.cfg.sessionTTL(),
	}
}

// WithPrefix returns a store sharing the client under another prefix.
func (s *KVStore) WithPrefix(prefix string) *KVStore {
	return &KVStore{client: s.client, prefix: prefix, ttl: s.ttl}
}

// WithTTL returns a store sharing the client with another expiry.
func (s *KVStore) WithTTL(ttl time.Duration) *KVStore {
	return &KVStore{client: s.client, prefix: s.prefix, ttl: ttl}
}

func (s *KVStore) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get returns the value for key, or kvstore.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, ok, err := s.client.Get(ctx, s.fullKey(key))
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	if !ok {
		return "", kvstore.ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, s.ttl); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

var _ kvstore.Store = (*KVStore)(nil)
