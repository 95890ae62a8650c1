package auth

import (
	"context"
	"net/url"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/localstore"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/redirect"
	"github.com/kbukum/socialauth/redirectpage"
)

// CheckRedirectMode completes a redirect-mode login once the provider has
// sent the page back. It returns nil when no login is pending, when the
// page carries no response yet, or when the response answers another
// attempt. Once a response is seen the page URL is scrubbed to origin and
// path and the pending marker is removed, whatever the outcome.
func (p *Provider) CheckRedirectMode(ctx context.Context) error {
	if p.page == nil {
		return nil
	}
	pending, err := p.local.LoginType(ctx)
	if err != nil {
		return apperrors.Storage("read login type", err)
	}
	if pending == "" {
		return nil
	}
	location := p.page.Location()
	params, err := redirect.Parse(location)
	if err != nil || params.IsEmpty() {
		return nil
	}
	expected, err := p.local.State(ctx)
	if err != nil {
		return apperrors.Storage("read state", err)
	}
	defer p.scrub(ctx, location)

	ctx, a := p.startAttempt(ctx, pending, UXModeRedirect)
	stepCtx, span := a.tel.StartStep(ctx, observability.SpanRedirectResume)
	err = p.resume(stepCtx, a, params, expected)
	a.tel.EndStep(ctx, span, observability.SpanRedirectResume, errorCode(err), err)

	if apperrors.IsCode(err, apperrors.ErrCodeStateMismatch) {
		a.log.Warn("Ignoring redirect response for another attempt")
		p.setState(a.id, Errored)
		a.tel.End(ctx, observability.OutcomeErrored, err)
		return nil
	}
	if err != nil {
		return p.fail(ctx, a, err)
	}
	return nil
}

func (p *Provider) resume(ctx context.Context, a *attempt, params redirect.Params, expected string) error {
	p.setState(a.id, ValidatingState)
	if err := p.validateState(ctx, a, params.State, expected); err != nil {
		return err
	}
	if err := redirect.EnvelopeFor(params).Err(); err != nil {
		return err
	}
	if err := p.resolveApp(ctx); err != nil {
		return err
	}
	clientID, err := p.clientID(ctx, a.loginType)
	if err != nil {
		return err
	}
	adapter, err := p.adapter(a.loginType, clientID)
	if err != nil {
		return err
	}
	defer p.cleanup(ctx, a, adapter)

	params, err = adapter.NormalizeRedirectParams(ctx, params)
	if err != nil {
		return err
	}
	_, err = p.fetchInfoAndKey(ctx, a, adapter, params)
	return err
}

// scrub drops the response from the page URL and clears the marker.
func (p *Provider) scrub(ctx context.Context, location string) {
	if u, err := url.Parse(location); err == nil {
		p.page.ReplaceURL((&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String())
	}
	for _, key := range []string{localstore.KeyLoginType, localstore.KeyState} {
		if err := p.local.Delete(ctx, key); err != nil {
			p.log.Warn("Clearing pending login failed", map[string]interface{}{
				"key":             key,
				logger.FieldError: err.Error(),
			})
		}
	}
}

// Handle runs the page handler on a page the provider redirected to,
// relaying the response to the window that opened it.
func (p *Provider) Handle(ctx context.Context, location string, poster redirectpage.Poster, targetOrigin string) {
	redirectpage.Handle(ctx, location, poster, targetOrigin, p.log)
}
