package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kbukum/socialauth/httpclient"
)

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const googleUserInfoURL = "https://www.googleapis.com/userinfo/v2/me"

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func newGoogle(deps Deps) (Adapter, error) {
	a, err := newOAuthAdapter(Google, deps, googleEndpoint, "token id_token", "profile", "email", "openid")
	if err != nil {
		return nil, err
	}
	a.userInfoURL = googleUserInfoURL
	a.params = func() (map[string]string, error) {
		nonce, err := GenerateNonce()
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"prompt": "consent select_account",
			"nonce":  nonce,
		}, nil
	}
	a.fetch = fetchGoogle
	return a, nil
}

func fetchGoogle(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error) {
	resp, err := httpclient.Get[googleProfile](ctx, a.http, a.userInfoURL,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
	)
	if err != nil {
		return UserInfo{}, err
	}
	p := resp.Data
	if p.Email == "" {
		return UserInfo{}, errMissingID
	}
	return UserInfo{ID: p.Email, Email: p.Email, Name: p.Name, Picture: p.Picture}, nil
}
