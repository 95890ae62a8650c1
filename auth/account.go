package auth

import (
	"context"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/keystore"
	"github.com/kbukum/socialauth/provider"
)

// GetUserInfo returns the committed session.
func (p *Provider) GetUserInfo() (*StoredSession, error) {
	s, err := p.loadSession()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if s == nil {
		return nil, apperrors.NotAuthenticated()
	}
	return s, nil
}

// IsLoggedIn reports whether a session is committed.
func (p *Provider) IsLoggedIn() bool {
	s, err := p.loadSession()
	return err == nil && s != nil
}

// Logout drops the session and any pending redirect-mode login.
func (p *Provider) Logout(ctx context.Context) error {
	p.sessions.Clear()
	if err := p.local.Clear(ctx); err != nil {
		return apperrors.Storage("clear pending login", err)
	}
	p.log.Info("Logged out")
	return nil
}

// GetAvailableLogins lists the login types the app has client IDs for.
func (p *Provider) GetAvailableLogins(ctx context.Context) ([]provider.LoginType, error) {
	logins, err := p.clientIDs.Logins(ctx)
	if err != nil {
		return nil, asConfigFetchFailed("Could not fetch available logins", err)
	}
	return logins, nil
}

// GetPublicKey returns the public key of user id under login type t.
func (p *Provider) GetPublicKey(ctx context.Context, id string, t provider.LoginType, f keystore.Format) (keystore.PublicKey, error) {
	if id == "" {
		return keystore.PublicKey{}, apperrors.InvalidInput("id", "required")
	}
	if err := p.resolveApp(ctx); err != nil {
		return keystore.PublicKey{}, err
	}
	point, err := p.keys.PublicKey(ctx, id, string(t))
	if err != nil {
		return keystore.PublicKey{}, err
	}
	return keystore.FormatPublicKey(point, f), nil
}

// Close persists the session so the next Provider can restore it.
func (p *Provider) Close(ctx context.Context) error {
	if err := p.sessions.Persist(ctx); err != nil {
		return apperrors.Storage("persist session", err)
	}
	return nil
}
