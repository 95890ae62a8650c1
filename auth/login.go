package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/popup"
	"github.com/kbukum/socialauth/provider"
	"github.com/kbukum/socialauth/redirect"
	"github.com/kbukum/socialauth/validation"
)

var (
	errMissingIDToken = errors.New("response carries no id token")
	errMissingUserID  = errors.New("user info carries no id")
)

// attempt is one login run from start to commit.
type attempt struct {
	id        string
	loginType provider.LoginType
	tel       *observability.Attempt
	log       *logger.Logger
}

func (p *Provider) startAttempt(ctx context.Context, t provider.LoginType, mode UXMode) (context.Context, *attempt) {
	id := uuid.NewString()
	ctx = logger.ContextWith(ctx, logger.FieldAttemptID, id)
	ctx = logger.ContextWith(ctx, logger.FieldLoginType, string(t))
	ctx, tel := p.telemetry.StartAttempt(ctx, id, string(t), string(mode))
	return ctx, &attempt{
		id:        id,
		loginType: t,
		tel:       tel,
		log:       p.log.WithContext(ctx),
	}
}

// fail moves the attempt to Errored, reports err and closes its telemetry.
func (p *Provider) fail(ctx context.Context, a *attempt, err error) error {
	p.setState(a.id, Errored)
	p.reporter.Report(ctx, err, map[string]string{
		logger.FieldLoginType: string(a.loginType),
		logger.FieldAttemptID: a.id,
	})
	a.tel.End(ctx, observability.OutcomeErrored, err)
	return err
}

// LoginWithSocial logs the user in with t. A session already committed
// for t is returned without any network call. In redirect mode the page
// leaves for the provider and the result is (nil, nil); the login
// completes in CheckRedirectMode.
func (p *Provider) LoginWithSocial(ctx context.Context, t provider.LoginType) (*StoredSession, error) {
	return p.login(ctx, t, nil)
}

// LoginWithOTP logs the user in with a one-time link sent to email.
func (p *Provider) LoginWithOTP(ctx context.Context, email string) (*StoredSession, error) {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return nil, err
	}
	return p.login(ctx, provider.Passwordless, map[string]string{"email": email})
}

func (p *Provider) login(ctx context.Context, t provider.LoginType, extra map[string]string) (*StoredSession, error) {
	if cached, err := p.loadSession(); err == nil && cached != nil && cached.LoginType == t {
		p.log.Debug("Returning cached session", map[string]interface{}{
			logger.FieldLoginType: string(t),
		})
		return cached, nil
	}

	ctx, a := p.startAttempt(ctx, t, p.cfg.UXMode)
	p.setState(a.id, NotStarted)

	if err := p.resolveApp(ctx); err != nil {
		return nil, p.fail(ctx, a, err)
	}
	clientID, err := p.clientID(ctx, t)
	if err != nil {
		return nil, p.fail(ctx, a, err)
	}
	adapter, err := p.adapter(t, clientID)
	if err != nil {
		return nil, p.fail(ctx, a, err)
	}
	state, err := provider.GenerateState()
	if err != nil {
		return nil, p.fail(ctx, a, apperrors.Internal(err))
	}
	authURL, err := adapter.AuthURL(ctx, provider.AuthRequest{
		ClientID:    clientID,
		RedirectURI: p.redirectURI(),
		State:       state,
		Extra:       extra,
	})
	if err != nil {
		return nil, p.fail(ctx, a, err)
	}

	if p.cfg.UXMode == UXModeRedirect {
		return nil, p.leaveForProvider(ctx, a, state, authURL)
	}
	return p.loginInPopup(ctx, a, adapter, state, authURL)
}

// leaveForProvider records the pending login and navigates the page.
func (p *Provider) leaveForProvider(ctx context.Context, a *attempt, state, authURL string) error {
	if p.page == nil {
		return p.fail(ctx, a, apperrors.Validation("redirect mode requires a page"))
	}
	if err := p.local.SetLoginType(ctx, a.loginType); err != nil {
		return p.fail(ctx, a, apperrors.Storage("save login type", err))
	}
	if err := p.local.SetState(ctx, state); err != nil {
		return p.fail(ctx, a, apperrors.Storage("save state", err))
	}
	p.setState(a.id, AwaitingProviderResponse)
	if err := p.page.Navigate(ctx, authURL); err != nil {
		return p.fail(ctx, a, apperrors.Internal(err))
	}
	a.log.Info("Redirecting to provider")
	a.tel.End(ctx, observability.OutcomeRedirected, nil)
	return nil
}

func (p *Provider) loginInPopup(ctx context.Context, a *attempt, adapter provider.Adapter, state, authURL string) (*StoredSession, error) {
	if p.opener == nil || p.messages == nil {
		return nil, p.fail(ctx, a, apperrors.Validation("popup mode requires an opener and a message source"))
	}
	defer p.cleanup(ctx, a, adapter)

	w := popup.New(p.opener, p.messages,
		popup.WithPollInterval(p.cfg.PollInterval),
		popup.WithLogger(p.log),
	)
	if err := w.Open(ctx, authURL); err != nil {
		return nil, p.fail(ctx, a, err)
	}
	p.setState(a.id, AwaitingProviderResponse)

	stepCtx, span := a.tel.StartStep(ctx, observability.SpanAwaitResponse)
	params, err := w.AwaitResponse(stepCtx, state, func(ctx context.Context, params redirect.Params) (redirect.Params, error) {
		p.setState(a.id, ValidatingState)
		if err := p.validateState(ctx, a, params.State, state); err != nil {
			return redirect.Params{}, err
		}
		return adapter.NormalizeRedirectParams(ctx, params)
	})
	a.tel.EndStep(ctx, span, observability.SpanAwaitResponse, errorCode(err), err)
	if err != nil {
		return nil, p.fail(ctx, a, err)
	}

	s, err := p.fetchInfoAndKey(ctx, a, adapter, params)
	if err != nil {
		return nil, p.fail(ctx, a, err)
	}
	return s, nil
}

// validateState compares the returned state with the one sent. An absent
// state passes unless Config.RequireState is set.
func (p *Provider) validateState(ctx context.Context, a *attempt, got, want string) error {
	_, span := a.tel.StartStep(ctx, observability.SpanValidateState)
	var err error
	switch {
	case got == "" && p.cfg.RequireState:
		err = apperrors.StateMismatch()
	case got != "" && got != want:
		err = apperrors.StateMismatch()
	}
	a.tel.EndStep(ctx, span, observability.SpanValidateState, errorCode(err), err)
	return err
}

// fetchInfoAndKey turns normalized params into a committed session.
func (p *Provider) fetchInfoAndKey(ctx context.Context, a *attempt, adapter provider.Adapter, params redirect.Params) (*StoredSession, error) {
	if params.AccessToken == "" {
		return nil, apperrors.MissingAccessToken()
	}

	p.setState(a.id, FetchingUserInfo)
	stepCtx, span := a.tel.StartStep(ctx, observability.SpanFetchUserInfo)
	info, err := adapter.UserInfo(stepCtx, params.AccessToken)
	if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeProviderError) {
		err = apperrors.ProviderFailure(string(a.loginType), "fetching user info", err)
	}
	a.tel.EndStep(ctx, span, observability.SpanFetchUserInfo, errorCode(err), err)
	if err != nil {
		return nil, err
	}

	p.setState(a.id, ReconstructingKey)
	stepCtx, span = a.tel.StartStep(ctx, observability.SpanReconstructKey)
	key, err := p.reconstructKey(stepCtx, a.loginType, info, params)
	a.tel.EndStep(ctx, span, observability.SpanReconstructKey, errorCode(err), err)
	if err != nil {
		return nil, err
	}

	s := &StoredSession{LoginType: a.loginType, UserInfo: info, PrivateKey: key}
	if err := p.commit(s); err != nil {
		return nil, err
	}
	p.setState(a.id, Committed)
	a.tel.End(ctx, observability.OutcomeCommitted, nil)
	a.log.Info("Login committed", map[string]interface{}{
		logger.FieldUserID: info.ID,
	})
	return s, nil
}

func (p *Provider) reconstructKey(ctx context.Context, t provider.LoginType, info provider.UserInfo, params redirect.Params) (string, error) {
	switch {
	case info.ID == "":
		return "", apperrors.KeyReconstructionFailed(errMissingUserID)
	case params.IDToken == "":
		return "", apperrors.KeyReconstructionFailed(errMissingIDToken)
	}
	key, err := p.keys.PrivateKey(ctx, info.ID, params.IDToken, string(t))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeKeyReconstructionFailed) {
			return "", err
		}
		return "", apperrors.KeyReconstructionFailed(err)
	}
	return key, nil
}

// cleanup releases provider-side state. It runs even when ctx is done.
func (p *Provider) cleanup(ctx context.Context, a *attempt, adapter provider.Adapter) {
	if err := adapter.Cleanup(context.WithoutCancel(ctx)); err != nil {
		a.log.Warn("Provider cleanup failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
}
