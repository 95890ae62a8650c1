// Package localstore keeps the marker of a pending redirect-mode login:
// which provider the user was sent to and the state token of the attempt.
// Keys are namespaced by app id as "<appID>:LOGIN_TYPE" and
// "<appID>:STATE"; values are JSON.
package localstore

import (
	"context"

	"github.com/kbukum/socialauth/kvstore"
	"github.com/kbukum/socialauth/provider"
)

// Keys of the pending-login marker.
const (
	KeyLoginType = "LOGIN_TYPE"
	KeyState     = "STATE"
)

// Store is the durable pending-login marker of one app.
type Store struct {
	loginType *kvstore.Typed[provider.LoginType]
	state     *kvstore.Typed[string]
}

// New creates a marker store for appID on backend.
func New(backend kvstore.Store, appID string) *Store {
	return &Store{
		loginType: kvstore.NewTyped[provider.LoginType](backend, appID),
		state:     kvstore.NewTyped[string](backend, appID),
	}
}

// SetLoginType records the provider of the pending login.
func (s *Store) SetLoginType(ctx context.Context, t provider.LoginType) error {
	return s.loginType.Save(ctx, KeyLoginType, &t)
}

// LoginType returns the pending provider, or "" when none is pending.
func (s *Store) LoginType(ctx context.Context) (provider.LoginType, error) {
	v, err := s.loginType.Load(ctx, KeyLoginType)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// SetState records the state token of the pending login.
func (s *Store) SetState(ctx context.Context, state string) error {
	return s.state.Save(ctx, KeyState, &state)
}

// State returns the pending state token, or "" when none is pending.
func (s *Store) State(ctx context.Context) (string, error) {
	v, err := s.state.Load(ctx, KeyState)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// Delete removes one marker key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.state.Delete(ctx, key)
}

// Clear removes the whole marker.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.loginType.Delete(ctx, KeyLoginType); err != nil {
		return err
	}
	return s.state.Delete(ctx, KeyState)
}
