package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

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

// SessionKey is the session store key of the committed login.
const SessionKey = "userInfo"

// Gateway resolves the app configuration.
type Gateway interface {
	RPCURL(ctx context.Context) (string, error)
	AppAddress(ctx context.Context, appID string) (string, error)
}

// StoredSession is the committed result of a login.
type StoredSession struct {
	LoginType  provider.LoginType `json:"loginType"`
	UserInfo   provider.UserInfo  `json:"userInfo"`
	PrivateKey string             `json:"privateKey"`
}

// Provider runs social logins for one app.
type Provider struct {
	cfg       Config
	log       *logger.Logger
	reporter  apperrors.Reporter
	telemetry *observability.Telemetry
	http      *httpclient.Client
	keys      keystore.Client
	gateway   Gateway
	clientIDs gateway.ClientIDSource
	opener    popup.Opener
	messages  popup.MessageSource
	page      Page
	local     *localstore.Store
	registry  *provider.Registry
	observer  StateObserver

	sessions    *session.Store
	nameSlot    kvstore.Store
	sessionHalf kvstore.Store

	initMu     sync.Mutex
	rpcURL     string
	appAddress string

	stateMu sync.Mutex
	state   AttemptState
}

// New validates cfg and creates a Provider. In redirect mode it resumes a
// login the page has just returned from.
func New(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		cfg:        cfg,
		rpcURL:     cfg.RPCURL,
		appAddress: cfg.AppAddress,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.applyDefaults(ctx); err != nil {
		return nil, err
	}

	p.log.Debug("Provider initialized", map[string]interface{}{
		"app_id":  cfg.AppID,
		"network": cfg.Network,
		"ux_mode": string(cfg.UXMode),
	})

	if cfg.UXMode == UXModeRedirect && p.page != nil {
		if err := p.CheckRedirectMode(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (p *Provider) applyDefaults(ctx context.Context) error {
	p.log = logger.OrNop(p.log).WithComponent("auth")
	if p.reporter == nil {
		if p.cfg.Network == "test" {
			p.reporter = apperrors.NewLogReporter(p.log)
		} else {
			p.reporter = apperrors.NopReporter{}
		}
	}
	if p.telemetry == nil {
		p.telemetry = observability.Noop()
	}
	if p.http == nil {
		c, err := httpclient.New(httpclient.Config{Timeout: p.cfg.HTTPTimeout})
		if err != nil {
			return err
		}
		p.http = c
	}
	if p.gateway == nil && p.cfg.GatewayURL != "" {
		g, err := gateway.New(p.http, p.cfg.GatewayURL)
		if err != nil {
			return err
		}
		p.gateway = g
	}
	if p.clientIDs == nil {
		p.clientIDs = gateway.StaticClientIDs(p.cfg.Clients)
	}
	if p.registry == nil {
		p.registry = provider.DefaultRegistry()
	}
	if p.local == nil {
		p.local = localstore.New(kvstore.NewMemory(), p.cfg.AppID)
	}
	if p.sessions == nil {
		if p.nameSlot != nil && p.sessionHalf != nil {
			s, err := session.Open(ctx, p.cfg.AppID, p.nameSlot, p.sessionHalf, session.WithLogger(p.log))
			if err != nil {
				p.log.Warn("Restoring session failed", map[string]interface{}{
					logger.FieldError: err.Error(),
				})
			}
			p.sessions = s
		} else {
			p.sessions = session.New(p.cfg.AppID, session.WithLogger(p.log))
		}
	}
	return nil
}

// Config returns the effective configuration.
func (p *Provider) Config() Config { return p.cfg }

// AttemptState returns the state of the latest attempt.
func (p *Provider) AttemptState() AttemptState {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

func (p *Provider) setState(attemptID string, s AttemptState) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
	if p.observer != nil {
		p.observer(attemptID, s)
	}
}

// resolveApp resolves the RPC URL and the app address once. A failed lookup is
// retried on the next call.
func (p *Provider) resolveApp(ctx context.Context) error {
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if p.rpcURL == "" || p.appAddress == "" {
		if p.gateway == nil {
			return apperrors.ConfigFetchFailed("no gateway configured", nil)
		}
	}
	if p.rpcURL == "" {
		u, err := p.gateway.RPCURL(ctx)
		if err != nil {
			return asConfigFetchFailed("Could not fetch RPC URL", err)
		}
		p.rpcURL = u
	}
	if p.appAddress == "" {
		addr, err := p.gateway.AppAddress(ctx, p.cfg.AppID)
		if err != nil {
			return asConfigFetchFailed("Could not fetch app address", err)
		}
		p.appAddress = addr
	}
	if p.keys == nil {
		k, err := keystore.NewHTTPClient(p.http, keystore.Config{URL: p.cfg.KeystoreURL, AppID: p.appAddress})
		if err != nil {
			return apperrors.ConfigFetchFailed("key service is not configured", err)
		}
		p.keys = k
	}
	return nil
}

func asConfigFetchFailed(message string, err error) error {
	if apperrors.IsCode(err, apperrors.ErrCodeConfigFetchFailed) {
		return err
	}
	return apperrors.ConfigFetchFailed(message, err)
}

// RPCURL returns the resolved RPC endpoint.
func (p *Provider) RPCURL(ctx context.Context) (string, error) {
	if err := p.resolveApp(ctx); err != nil {
		return "", err
	}
	return p.rpcURL, nil
}

// AppAddress returns the resolved app address.
func (p *Provider) AppAddress(ctx context.Context) (string, error) {
	if err := p.resolveApp(ctx); err != nil {
		return "", err
	}
	return p.appAddress, nil
}

// redirectURI returns the configured redirect URI or the callback URL of
// the active opener or page.
func (p *Provider) redirectURI() string {
	if p.cfg.RedirectURI != "" {
		return p.cfg.RedirectURI
	}
	var host any = p.opener
	if p.cfg.UXMode == UXModeRedirect {
		host = p.page
	}
	if cb, ok := host.(interface{ CallbackURL() string }); ok {
		return cb.CallbackURL()
	}
	return ""
}

func (p *Provider) adapter(t provider.LoginType, clientID string) (provider.Adapter, error) {
	a, err := p.registry.New(t, provider.Deps{
		HTTP:        p.http,
		VerifierURL: p.cfg.VerifierURL,
		AppID:       p.cfg.AppID,
		ClientID:    clientID,
		Log:         p.log,
	})
	if err != nil {
		return nil, err
	}
	return provider.Chain(
		provider.WithLogging(p.log),
		provider.WithTracing(p.telemetry.Tracer),
	)(a), nil
}

func (p *Provider) clientID(ctx context.Context, t provider.LoginType) (string, error) {
	if t == provider.Passwordless {
		return p.appAddress, nil
	}
	id, err := p.clientIDs.ClientID(ctx, t)
	if err != nil {
		return "", asConfigFetchFailed(fmt.Sprintf("Client ID not found for %s", t), err)
	}
	if id == "" {
		return "", apperrors.ConfigFetchFailed(fmt.Sprintf("Client ID not found for %s", t), nil)
	}
	return id, nil
}

func (p *Provider) loadSession() (*StoredSession, error) {
	raw, ok := p.sessions.Get(SessionKey)
	if !ok {
		return nil, nil
	}
	var s StoredSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("auth: decode session: %w", err)
	}
	return &s, nil
}

func (p *Provider) commit(s *StoredSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return apperrors.Internal(err)
	}
	p.sessions.Set(SessionKey, string(data))
	return nil
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return ""
}
