package provider

import (
	"context"
	"fmt"

	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirect"
)

// LoginType names an identity provider.
type LoginType string

// Supported login types.
const (
	Google       LoginType = "google"
	GitHub       LoginType = "github"
	Twitter      LoginType = "twitter"
	Discord      LoginType = "discord"
	Twitch       LoginType = "twitch"
	Reddit       LoginType = "reddit"
	Passwordless LoginType = "passwordless"
)

var loginTypes = []LoginType{Google, GitHub, Twitter, Discord, Twitch, Reddit, Passwordless}

// LoginTypes lists every supported login type.
func LoginTypes() []LoginType {
	out := make([]LoginType, len(loginTypes))
	copy(out, loginTypes)
	return out
}

// ParseLoginType validates s as a login type.
func ParseLoginType(s string) (LoginType, error) {
	for _, lt := range loginTypes {
		if string(lt) == s {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown login type %q", s)
}

func (t LoginType) String() string { return string(t) }

// UserInfo is the provider identity of the logged in user.
type UserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// AuthRequest carries the inputs of an authorization URL.
type AuthRequest struct {
	ClientID    string
	RedirectURI string
	State       string
	Extra       map[string]string
}

// Adapter is the per-provider capability set used by the login flow.
type Adapter interface {
	LoginType() LoginType
	// AuthURL builds the URL the user is sent to.
	AuthURL(ctx context.Context, req AuthRequest) (string, error)
	// NormalizeRedirectParams turns the raw redirect response into params
	// carrying access_token and id_token, exchanging codes where needed.
	NormalizeRedirectParams(ctx context.Context, p redirect.Params) (redirect.Params, error)
	// UserInfo fetches the user identity with an access token.
	UserInfo(ctx context.Context, accessToken string) (UserInfo, error)
	// Cleanup releases provider-side state after an attempt.
	Cleanup(ctx context.Context) error
}

// Deps are the collaborators an adapter may need.
type Deps struct {
	HTTP        *httpclient.Client
	VerifierURL string
	AppID       string
	ClientID    string
	Log         *logger.Logger
}

func (d Deps) log() *logger.Logger {
	return logger.OrNop(d.Log)
}

func (d Deps) client() (*httpclient.Client, error) {
	if d.HTTP != nil {
		return d.HTTP, nil
	}
	return httpclient.New(httpclient.Config{})
}
