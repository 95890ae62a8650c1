package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kbukum/socialauth/httpclient"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const discordUserInfoURL = "https://discord.com/api/users/@me"

type discordProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Avatar   string `json:"avatar"`
}

func newDiscord(deps Deps) (Adapter, error) {
	a, err := newOAuthAdapter(Discord, deps, discordEndpoint, "token", "identify", "email")
	if err != nil {
		return nil, err
	}
	a.userInfoURL = discordUserInfoURL
	a.fetch = fetchDiscord
	return a, nil
}

// fetchDiscord keys the user by verified email, falling back to the
// snowflake id.
func fetchDiscord(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error) {
	resp, err := httpclient.Get[discordProfile](ctx, a.http, a.userInfoURL,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
	)
	if err != nil {
		return UserInfo{}, err
	}
	p := resp.Data
	info := UserInfo{ID: p.ID, Name: p.Username}
	if p.Verified && p.Email != "" {
		info.ID = p.Email
		info.Email = p.Email
	}
	if p.Avatar != "" && p.ID != "" {
		info.Picture = "https://cdn.discordapp.com/avatars/" + p.ID + "/" + p.Avatar + ".png"
	}
	if info.ID == "" {
		return UserInfo{}, errMissingID
	}
	return info, nil
}
