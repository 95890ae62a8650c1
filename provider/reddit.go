package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kbukum/socialauth/httpclient"
)

var redditEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.reddit.com/api/v1/authorize",
	TokenURL: "https://www.reddit.com/api/v1/access_token",
}

const redditUserInfoURL = "https://oauth.reddit.com/api/v1/me"

type redditProfile struct {
	Name    string `json:"name"`
	IconImg string `json:"icon_img"`
}

func newReddit(deps Deps) (Adapter, error) {
	a, err := newOAuthAdapter(Reddit, deps, redditEndpoint, "token", "identity")
	if err != nil {
		return nil, err
	}
	a.userInfoURL = redditUserInfoURL
	a.fetch = fetchReddit
	return a, nil
}

func fetchReddit(ctx context.Context, a *oauthAdapter, token string) (UserInfo, error) {
	resp, err := httpclient.Get[redditProfile](ctx, a.http, a.userInfoURL,
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
	)
	if err != nil {
		return UserInfo{}, err
	}
	if resp.Data.Name == "" {
		return UserInfo{}, errMissingID
	}
	return UserInfo{ID: resp.Data.Name, Name: resp.Data.Name, Picture: resp.Data.IconImg}, nil
}
