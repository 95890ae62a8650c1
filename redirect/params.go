package redirect

import (
	"net/url"
	"strings"
)

// Recognized parameter keys.
const (
	KeyState            = "state"
	KeyAccessToken      = "access_token"
	KeyIDToken          = "id_token"
	KeyError            = "error"
	KeyErrorDescription = "error_description"
	KeyCode             = "code"
	KeyOAuthToken       = "oauth_token"
	KeyOAuthTokenSecret = "oauth_token_secret"
	KeyOAuthVerifier    = "oauth_verifier"
	KeyTokenType        = "token_type"
	KeyScope            = "scope"
	KeyExpiresIn        = "expires_in"
)

// Params holds the recognized authorization response parameters.
// An empty field means the key was absent.
type Params struct {
	State            string `json:"state,omitempty"`
	AccessToken      string `json:"access_token,omitempty"`
	IDToken          string `json:"id_token,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Code             string `json:"code,omitempty"`
	OAuthToken       string `json:"oauth_token,omitempty"`
	OAuthTokenSecret string `json:"oauth_token_secret,omitempty"`
	OAuthVerifier    string `json:"oauth_verifier,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	Scope            string `json:"scope,omitempty"`
	ExpiresIn        string `json:"expires_in,omitempty"`
}

// fields maps each recognized key to its slot in p.
func (p *Params) fields() map[string]*string {
	return map[string]*string{
		KeyState:            &p.State,
		KeyAccessToken:      &p.AccessToken,
		KeyIDToken:          &p.IDToken,
		KeyError:            &p.Error,
		KeyErrorDescription: &p.ErrorDescription,
		KeyCode:             &p.Code,
		KeyOAuthToken:       &p.OAuthToken,
		KeyOAuthTokenSecret: &p.OAuthTokenSecret,
		KeyOAuthVerifier:    &p.OAuthVerifier,
		KeyTokenType:        &p.TokenType,
		KeyScope:            &p.Scope,
		KeyExpiresIn:        &p.ExpiresIn,
	}
}

// Keys lists the recognized parameter keys.
func Keys() []string {
	return []string{
		KeyState, KeyAccessToken, KeyIDToken, KeyError, KeyErrorDescription, KeyCode,
		KeyOAuthToken, KeyOAuthTokenSecret, KeyOAuthVerifier, KeyTokenType, KeyScope, KeyExpiresIn,
	}
}

// Parse reads the recognized parameters from rawURL. The fragment is
// split off before the URL is parsed, so a malformed escape there only
// loses the pair it belongs to.
func Parse(rawURL string) (Params, error) {
	rest, fragment, _ := strings.Cut(rawURL, "#")
	u, err := url.Parse(rest)
	if err != nil {
		return Params{}, err
	}
	return parse(fragment, u.RawQuery), nil
}

// ParseURL reads the recognized parameters from u. A key found in the
// fragment shadows the same key in the query.
func ParseURL(u *url.URL) Params {
	if u == nil {
		return Params{}
	}
	return parse(u.EscapedFragment(), u.RawQuery)
}

// parse decodes each raw component exactly once. Pairs that fail to
// unescape are skipped by url.ParseQuery; the rest are kept.
func parse(rawFragment, rawQuery string) Params {
	fragment, _ := url.ParseQuery(rawFragment)
	query, _ := url.ParseQuery(rawQuery)

	var p Params
	for key, slot := range p.fields() {
		if v, ok := fragment[key]; ok && len(v) > 0 {
			*slot = v[0]
			continue
		}
		if v, ok := query[key]; ok && len(v) > 0 {
			*slot = v[0]
		}
	}
	return p
}

// FromValues keeps the recognized keys of v.
func FromValues(v url.Values) Params {
	var p Params
	for key, slot := range p.fields() {
		*slot = v.Get(key)
	}
	return p
}

// Values returns the non-empty parameters as query values.
func (p Params) Values() url.Values {
	v := url.Values{}
	for key, slot := range p.fields() {
		if *slot != "" {
			v.Set(key, *slot)
		}
	}
	return v
}

// IsEmpty reports whether no recognized key is present.
func (p Params) IsEmpty() bool {
	return p == Params{}
}

// HasError reports whether the provider returned an error.
func (p Params) HasError() bool {
	return p.Error != ""
}
