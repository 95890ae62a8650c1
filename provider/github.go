package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2/github"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/redirect"
)

const githubUserInfoURL = "https://api.github.com/user"

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubExchange struct {
	AccessToken string `json:"accessToken"`
}

func newGitHub(deps Deps) (Adapter, error) {
	a, err := newOAuthAdapter(GitHub, deps, github.Endpoint, "code", "read:user", "user:email")
	if err != nil {
		return nil, err
	}
	a.userInfoURL = githubUserInfoURL
	a.fetch = fetchGitHub
	a.normalize = func(ctx context.Context, p redirect.Params) (redirect.Params, error) {
		return exchangeGitHubCode(ctx, a, p)
	}
	return a, nil
}

// exchangeGitHubCode trades the authorization code for an access token
// through the verifier, which holds the client secret.
func exchangeGitHubCode(ctx context.Context, a *oauthAdapter, p redirect.Params) (redirect.Params, error) {
	if p.Code == "" {
		return p, apperrors.New(apperrors.ErrCodeProviderError, "Expected `code` from github hash params", http.StatusBadRequest)
	}
	resp, err := httpclient.Post[githubExchange](ctx, a.http, verifierPath(a.deps.VerifierURL, "/github/access-token"),
		map[string]string{"code": p.Code, "appID": a.deps.AppID},
	)
	if err != nil {
		return p, apperrors.ProviderFailure(string(GitHub), "exchanging code", err)
	}
	if resp.Data.AccessToken == "" {
		return p, apperrors.MissingAccessToken()
	}
	p.AccessToken = resp.Data.AccessToken
	p.IDToken = resp.Data.AccessToken
	return p, nil
}

func fetchGitHub(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error) {
	resp, err := httpclient.Get[githubProfile](ctx, a.http, a.userInfoURL,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
		httpclient.WithHeader("Accept", "application/vnd.github+json"),
	)
	if err != nil {
		return UserInfo{}, err
	}
	p := resp.Data
	if p.ID == 0 {
		return UserInfo{}, errMissingID
	}
	name := p.Name
	if name == "" {
		name = p.Login
	}
	return UserInfo{ID: strconv.FormatInt(p.ID, 10), Email: p.Email, Name: name, Picture: p.AvatarURL}, nil
}

func verifierPath(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
