package provider

import (
	"context"
	"net/url"
	"sync"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/redirect"
)

const twitterAuthenticateURL = "https://api.twitter.com/oauth/authenticate"

type twitterToken struct {
	OAuthToken       string `json:"oauth_token"`
	OAuthTokenSecret string `json:"oauth_token_secret"`
}

type twitterProfile struct {
	IDStr           string `json:"id_str"`
	ScreenName      string `json:"screen_name"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profile_image_url_https"`
}

// twitterAdapter runs the OAuth 1.0a flow. Request signing happens in the
// verifier; the adapter only relays tokens.
type twitterAdapter struct {
	deps Deps
	http *httpclient.Client

	mu     sync.Mutex
	token  string
	secret string
}

func newTwitter(deps Deps) (Adapter, error) {
	client, err := deps.client()
	if err != nil {
		return nil, err
	}
	return &twitterAdapter{deps: deps, http: client}, nil
}

func (a *twitterAdapter) LoginType() LoginType { return Twitter }

func (a *twitterAdapter) AuthURL(ctx context.Context, _ AuthRequest) (string, error) {
	resp, err := httpclient.Get[twitterToken](ctx, a.http, verifierPath(a.deps.VerifierURL, "/twitter/request-token"),
		httpclient.WithQueryParam("appID", a.deps.AppID),
	)
	if err != nil {
		return "", apperrors.ProviderFailure(string(Twitter), "requesting token", err)
	}
	if resp.Data.OAuthToken == "" {
		return "", apperrors.ProviderFailure(string(Twitter), "requesting token", errMissingToken)
	}
	a.remember(resp.Data.OAuthToken, "")
	return twitterAuthenticateURL + "?" + url.Values{"oauth_token": {resp.Data.OAuthToken}}.Encode(), nil
}

func (a *twitterAdapter) NormalizeRedirectParams(ctx context.Context, p redirect.Params) (redirect.Params, error) {
	if p.IsEmpty() {
		return p, nil
	}
	resp, err := httpclient.Post[twitterToken](ctx, a.http, verifierPath(a.deps.VerifierURL, "/twitter/access-token"),
		map[string]string{
			"oauth_token":    p.OAuthToken,
			"oauth_verifier": p.OAuthVerifier,
			"appID":          a.deps.AppID,
		},
	)
	if err != nil {
		return p, apperrors.ProviderFailure(string(Twitter), "exchanging token", err)
	}
	t := resp.Data
	a.remember(t.OAuthToken, t.OAuthTokenSecret)

	p.OAuthToken = t.OAuthToken
	p.OAuthTokenSecret = t.OAuthTokenSecret
	p.AccessToken = t.OAuthToken
	p.IDToken = t.OAuthToken + ":" + t.OAuthTokenSecret + ":" + a.deps.AppID
	return p, nil
}

func (a *twitterAdapter) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	_, secret := a.tokens()
	resp, err := httpclient.Get[twitterProfile](ctx, a.http, verifierPath(a.deps.VerifierURL, "/twitter/user"),
		httpclient.WithQueryParam("oauth_token", accessToken),
		httpclient.WithQueryParam("oauth_token_secret", secret),
		httpclient.WithQueryParam("appID", a.deps.AppID),
	)
	if err != nil {
		return UserInfo{}, apperrors.ProviderFailure(string(Twitter), "getting user info", err)
	}
	p := resp.Data
	if p.IDStr == "" {
		return UserInfo{}, apperrors.ProviderFailure(string(Twitter), "getting user info", errMissingID)
	}
	name := p.Name
	if name == "" {
		name = p.ScreenName
	}
	return UserInfo{ID: p.IDStr, Email: p.Email, Name: name, Picture: p.ProfileImageURL}, nil
}

// Cleanup asks the verifier to drop the tokens of this attempt.
func (a *twitterAdapter) Cleanup(ctx context.Context) error {
	token, _ := a.tokens()
	if token == "" {
		return nil
	}
	_, err := a.http.Do(ctx, httpclient.Request{
		Method: "POST",
		Path:   verifierPath(a.deps.VerifierURL, "/twitter/invalidate"),
		Body:   map[string]string{"oauth_token": token, "appID": a.deps.AppID},
	})
	a.remember("", "")
	return err
}

func (a *twitterAdapter) remember(token, secret string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token, a.secret = token, secret
}

func (a *twitterAdapter) tokens() (string, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.secret
}
