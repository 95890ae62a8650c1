package auth

import (
	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/gateway"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/keystore"
	"github.com/kbukum/socialauth/kvstore"
	"github.com/kbukum/socialauth/localstore"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/popup"
	"github.com/kbukum/socialauth/provider"
	"github.com/kbukum/socialauth/session"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// WithReporter sets where failed attempts are reported.
func WithReporter(r apperrors.Reporter) Option {
	return func(p *Provider) { p.reporter = r }
}

// WithTelemetry sets the tracer and meter used for attempts.
func WithTelemetry(t *observability.Telemetry) Option {
	return func(p *Provider) { p.telemetry = t }
}

// WithHTTPClient sets the client shared by the gateway, the key service
// and the provider adapters.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(p *Provider) { p.http = c }
}

// WithKeyReconstructor replaces the key service client.
func WithKeyReconstructor(c keystore.Client) Option {
	return func(p *Provider) { p.keys = c }
}

// WithGateway replaces the app config lookup.
func WithGateway(g Gateway) Option {
	return func(p *Provider) { p.gateway = g }
}

// WithClientIDs replaces the client ID source built from Config.Clients.
func WithClientIDs(s gateway.ClientIDSource) Option {
	return func(p *Provider) { p.clientIDs = s }
}

// WithOpener sets the window opener used in popup mode.
func WithOpener(o popup.Opener) Option {
	return func(p *Provider) { p.opener = o }
}

// WithMessageSource sets where popup responses arrive.
func WithMessageSource(s popup.MessageSource) Option {
	return func(p *Provider) { p.messages = s }
}

// WithPage sets the page used in redirect mode.
func WithPage(pg Page) Option {
	return func(p *Provider) { p.page = pg }
}

// WithSessionStore sets the session store. It wins over
// WithSessionBackends.
func WithSessionStore(s *session.Store) Option {
	return func(p *Provider) { p.sessions = s }
}

// WithSessionBackends restores the session from, and persists it to, the
// two halves of the split secret.
func WithSessionBackends(nameSlot, sessionHalf kvstore.Store) Option {
	return func(p *Provider) {
		p.nameSlot = nameSlot
		p.sessionHalf = sessionHalf
	}
}

// WithLocalStore sets the store of the pending redirect-mode marker.
func WithLocalStore(s *localstore.Store) Option {
	return func(p *Provider) { p.local = s }
}

// WithRegistry replaces the adapter registry.
func WithRegistry(r *provider.Registry) Option {
	return func(p *Provider) { p.registry = r }
}

// WithStateObserver registers a hook called on every attempt state change.
func WithStateObserver(fn StateObserver) Option {
	return func(p *Provider) { p.observer = fn }
}
