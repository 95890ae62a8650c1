package provider

import (
	"context"

	"golang.org/x/oauth2/twitch"

	"github.com/kbukum/socialauth/httpclient"
)

const (
	twitchUserInfoURL = "https://api.twitch.tv/helix/users"
	twitchClaims      = `{"id_token":{"email":null,"email_verified":null},"userinfo":{"email":null,"email_verified":null}}`
)

type twitchUsers struct {
	Data []struct {
		ID              string `json:"id"`
		Login           string `json:"login"`
		DisplayName     string `json:"display_name"`
		Email           string `json:"email"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

func newTwitch(deps Deps) (Adapter, error) {
	a, err := newOAuthAdapter(Twitch, deps, twitch.Endpoint, "token", "openid", "user:read:email")
	if err != nil {
		return nil, err
	}
	a.userInfoURL = twitchUserInfoURL
	a.params = func() (map[string]string, error) {
		return map[string]string{"claims": twitchClaims}, nil
	}
	a.fetch = fetchTwitch
	return a, nil
}

func fetchTwitch(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error) {
	resp, err := httpclient.Get[twitchUsers](ctx, a.http, a.userInfoURL,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
		httpclient.WithHeader("Client-ID", a.deps.ClientID),
	)
	if err != nil {
		return UserInfo{}, err
	}
	if len(resp.Data.Data) == 0 || resp.Data.Data[0].ID == "" {
		return UserInfo{}, errMissingID
	}
	u := resp.Data.Data[0]
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.DisplayName, Picture: u.ProfileImageURL}, nil
}
