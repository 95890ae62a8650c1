package gateway

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kbukum/socialauth/provider"
)

// ClientIDSource resolves the OAuth client ID an app uses per provider.
type ClientIDSource interface {
	// ClientID returns the client ID for t, or "" if none is configured.
	ClientID(ctx context.Context, t provider.LoginType) (string, error)
	// Logins lists the login types with a configured client ID.
	Logins(ctx context.Context) ([]provider.LoginType, error)
}

// StaticClientIDs is a ClientIDSource backed by configuration. Keys are
// login type names.
type StaticClientIDs map[string]string

// ClientID implements ClientIDSource.
func (s StaticClientIDs) ClientID(_ context.Context, t provider.LoginType) (string, error) {
	return s[string(t)], nil
}

// Logins implements ClientIDSource. Passwordless needs no client ID and is
// always listed.
func (s StaticClientIDs) Logins(context.Context) ([]provider.LoginType, error) {
	out := []provider.LoginType{}
	for _, t := range provider.LoginTypes() {
		if t == provider.Passwordless || s[string(t)] != "" {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

const loginsKey = "\x00logins"

// CachedClientIDs memoizes another source for a TTL.
type CachedClientIDs struct {
	next  ClientIDSource
	cache *cache.Cache
}

// NewCachedClientIDs wraps next with a cache whose entries live for ttl.
func NewCachedClientIDs(next ClientIDSource, ttl time.Duration) *CachedClientIDs {
	return &CachedClientIDs{next: next, cache: cache.New(ttl, 2*ttl)}
}

// ClientID implements ClientIDSource.
func (c *CachedClientIDs) ClientID(ctx context.Context, t provider.LoginType) (string, error) {
	if v, ok := c.cache.Get(string(t)); ok {
		return v.(string), nil
	}
	id, err := c.next.ClientID(ctx, t)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(string(t), id)
	return id, nil
}

// Logins implements ClientIDSource.
func (c *CachedClientIDs) Logins(ctx context.Context) ([]provider.LoginType, error) {
	if v, ok := c.cache.Get(loginsKey); ok {
		return v.([]provider.LoginType), nil
	}
	logins, err := c.next.Logins(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(loginsKey, logins)
	return logins, nil
}

// Flush drops every cached entry.
func (c *CachedClientIDs) Flush() {
	c.cache.Flush()
}
