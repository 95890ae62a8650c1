package provider

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/redirect"
)

var errMissingID = errors.New("user info response carries no user id")

// oauthAdapter covers the providers that authorize through a standard
// OAuth 2.0 authorize endpoint.
type oauthAdapter struct {
	loginType    LoginType
	endpoint     oauth2.Endpoint
	responseType string
	scopes       []string
	// params returns the provider-specific authorize parameters.
	params      func() (map[string]string, error)
	userInfoURL string
	// fetch resolves the user identity with an access token.
	fetch func(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error)
	// normalize post-processes redirect params. Defaults to copying the
	// access token into a missing id_token.
	normalize func(ctx context.Context, p redirect.Params) (redirect.Params, error)

	deps Deps
	http *httpclient.Client
}

func newOAuthAdapter(t LoginType, deps Deps, endpoint oauth2.Endpoint, responseType string, scopes ...string) (*oauthAdapter, error) {
	client, err := deps.client()
	if err != nil {
		return nil, err
	}
	return &oauthAdapter{
		loginType:    t,
		endpoint:     endpoint,
		responseType: responseType,
		scopes:       scopes,
		deps:         deps,
		http:         client,
	}, nil
}

func (a *oauthAdapter) LoginType() LoginType { return a.loginType }

func (a *oauthAdapter) AuthURL(_ context.Context, req AuthRequest) (string, error) {
	if req.ClientID == "" {
		return "", apperrors.InvalidInput("client_id", "required")
	}
	cfg := oauth2.Config{
		ClientID:    req.ClientID,
		RedirectURL: req.RedirectURI,
		Endpoint:    a.endpoint,
		Scopes:      a.scopes,
	}

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_type", a.responseType)}
	if a.params != nil {
		extra, err := a.params()
		if err != nil {
			return "", apperrors.Internal(err)
		}
		for k, v := range extra {
			opts = append(opts, oauth2.SetAuthURLParam(k, v))
		}
	}
	for k, v := range req.Extra {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return cfg.AuthCodeURL(req.State, opts...), nil
}

func (a *oauthAdapter) NormalizeRedirectParams(ctx context.Context, p redirect.Params) (redirect.Params, error) {
	if a.normalize != nil {
		return a.normalize(ctx, p)
	}
	return copyAccessToken(p), nil
}

func (a *oauthAdapter) UserInfo(ctx context.Context, token string) (UserInfo, error) {
	info, err := a.fetch(ctx, a, token)
	if err != nil {
		return UserInfo{}, apperrors.ProviderFailure(string(a.loginType), "getting user info", err)
	}
	return info, nil
}

func (a *oauthAdapter) Cleanup(context.Context) error { return nil }

// copyAccessToken fills a missing id_token with the access token.
func copyAccessToken(p redirect.Params) redirect.Params {
	if p.IDToken == "" {
		p.IDToken = p.AccessToken
	}
	return p
}
