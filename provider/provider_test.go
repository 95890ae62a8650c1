package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/redirect"
)

func newTestDeps(t *testing.T, srv *httptest.Server) Deps {
	t.Helper()
	client, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("httpclient.New failed: %v", err)
	}
	deps := Deps{HTTP: client, AppID: "42", ClientID: "client-1"}
	if srv != nil {
		deps.VerifierURL = srv.URL
	}
	return deps
}

func mustAdapter(t *testing.T, lt LoginType, deps Deps) Adapter {
	t.Helper()
	a, err := New(lt, deps)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", lt, err)
	}
	return a
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseLoginType(t *testing.T) {
	for _, lt := range LoginTypes() {
		got, err := ParseLoginType(string(lt))
		if err != nil || got != lt {
			t.Errorf("ParseLoginType(%q) = %q, %v", lt, got, err)
		}
	}
	if _, err := ParseLoginType("myspace"); err == nil {
		t.Error("expected error for unknown login type")
	}
}

func TestDefaultRegistry_CoversEveryLoginType(t *testing.T) {
	reg := DefaultRegistry()
	if got := len(reg.List()); got != len(LoginTypes()) {
		t.Fatalf("expected %d adapters, got %d", len(LoginTypes()), got)
	}
	for _, lt := range LoginTypes() {
		a := mustAdapter(t, lt, newTestDeps(t, nil))
		if a.LoginType() != lt {
			t.Errorf("adapter for %s reports %s", lt, a.LoginType())
		}
	}
	if _, err := NewRegistry().New(Google, Deps{}); err == nil {
		t.Error("expected error from empty registry")
	}
}

func TestAuthURL_OAuthProviders(t *testing.T) {
	tests := []struct {
		lt       LoginType
		host     string
		respType string
		scope    string
		extra    map[string]string
	}{
		{Google, "accounts.google.com", "token id_token", "profile email openid", map[string]string{"prompt": "consent select_account"}},
		{Reddit, "www.reddit.com", "token", "identity", nil},
		{Discord, "discord.com", "token", "identify email", nil},
		{Twitch, "id.twitch.tv", "token", "openid user:read:email", map[string]string{"claims": twitchClaims}},
		{GitHub, "github.com", "code", "read:user user:email", nil},
	}
	for _, tc := range tests {
		t.Run(string(tc.lt), func(t *testing.T) {
			a := mustAdapter(t, tc.lt, newTestDeps(t, nil))
			raw, err := a.AuthURL(context.Background(), AuthRequest{
				ClientID:    "client-1",
				RedirectURI: "http://127.0.0.1:5555/callback",
				State:       "st",
			})
			if err != nil {
				t.Fatalf("AuthURL failed: %v", err)
			}
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("bad url %q: %v", raw, err)
			}
			q := u.Query()
			if u.Host != tc.host {
				t.Errorf("host = %q, want %q", u.Host, tc.host)
			}
			checks := map[string]string{
				"client_id":     "client-1",
				"redirect_uri":  "http://127.0.0.1:5555/callback",
				"state":         "st",
				"response_type": tc.respType,
				"scope":         tc.scope,
			}
			for k, v := range tc.extra {
				checks[k] = v
			}
			for k, want := range checks {
				if got := q.Get(k); got != want {
					t.Errorf("%s = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestAuthURL_GoogleNonceIsFresh(t *testing.T) {
	a := mustAdapter(t, Google, newTestDeps(t, nil))
	req := AuthRequest{ClientID: "c", State: "s"}
	u1, _ := a.AuthURL(context.Background(), req)
	u2, _ := a.AuthURL(context.Background(), req)
	n1 := mustQuery(t, u1).Get("nonce")
	n2 := mustQuery(t, u2).Get("nonce")
	if n1 == "" || n1 == n2 {
		t.Errorf("expected distinct nonces, got %q and %q", n1, n2)
	}
}

func TestAuthURL_RequiresClientID(t *testing.T) {
	a := mustAdapter(t, Reddit, newTestDeps(t, nil))
	_, err := a.AuthURL(context.Background(), AuthRequest{State: "s"})
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad url %q: %v", raw, err)
	}
	return u.Query()
}

func TestNormalize_ImplicitCopiesAccessToken(t *testing.T) {
	for _, lt := range []LoginType{Google, Reddit, Discord, Twitch} {
		a := mustAdapter(t, lt, newTestDeps(t, nil))
		got, err := a.NormalizeRedirectParams(context.Background(), redirect.Params{AccessToken: "at"})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", lt, err)
		}
		if got.IDToken != "at" {
			t.Errorf("%s: id_token = %q, want at", lt, got.IDToken)
		}
		kept, _ := a.NormalizeRedirectParams(context.Background(), redirect.Params{AccessToken: "at", IDToken: "idt"})
		if kept.IDToken != "idt" {
			t.Errorf("%s: existing id_token overwritten with %q", lt, kept.IDToken)
		}
	}
}

func TestUserInfo_OAuthProviders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/google":
			writeJSON(w, map[string]any{"email": "u@example.com", "name": "U"})
		case "/reddit":
			writeJSON(w, map[string]any{"name": "redditor"})
		case "/discord/verified":
			writeJSON(w, map[string]any{"id": "123", "email": "d@example.com", "verified": true})
		case "/discord/unverified":
			writeJSON(w, map[string]any{"id": "123", "email": "d@example.com", "verified": false})
		case "/twitch":
			if r.Header.Get("Client-ID") != "client-1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			writeJSON(w, map[string]any{"data": []map[string]any{{"id": "t1", "email": "t@example.com"}}})
		case "/github":
			writeJSON(w, map[string]any{"id": 9001, "login": "octo"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tests := []struct {
		lt     LoginType
		path   string
		wantID string
	}{
		{Google, "/google", "u@example.com"},
		{Reddit, "/reddit", "redditor"},
		{Discord, "/discord/verified", "d@example.com"},
		{Discord, "/discord/unverified", "123"},
		{Twitch, "/twitch", "t1"},
		{GitHub, "/github", "9001"},
	}
	for _, tc := range tests {
		t.Run(string(tc.lt)+tc.path, func(t *testing.T) {
			a := mustAdapter(t, tc.lt, newTestDeps(t, nil)).(*oauthAdapter)
			a.userInfoURL = srv.URL + tc.path
			info, err := a.UserInfo(context.Background(), "tok")
			if err != nil {
				t.Fatalf("UserInfo failed: %v", err)
			}
			if info.ID != tc.wantID {
				t.Errorf("id = %q, want %q", info.ID, tc.wantID)
			}
		})
	}
}

func TestUserInfo_FailureIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := mustAdapter(t, Google, newTestDeps(t, nil)).(*oauthAdapter)
	a.userInfoURL = srv.URL
	_, err := a.UserInfo(context.Background(), "bad")
	if !apperrors.IsCode(err, apperrors.ErrCodeProviderError) {
		t.Errorf("expected PROVIDER_ERROR, got %v", err)
	}
}

func TestGitHub_ExchangesCode(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/github/access-token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, map[string]string{"accessToken": "gho_1"})
	}))
	defer srv.Close()

	a := mustAdapter(t, GitHub, newTestDeps(t, srv))
	p, err := a.NormalizeRedirectParams(context.Background(), redirect.Params{Code: "c0de", State: "s"})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if p.AccessToken != "gho_1" || p.IDToken != "gho_1" || p.State != "s" {
		t.Errorf("unexpected params %+v", p)
	}
	if got["code"] != "c0de" || got["appID"] != "42" {
		t.Errorf("unexpected exchange body %v", got)
	}
}

func TestGitHub_RequiresCode(t *testing.T) {
	a := mustAdapter(t, GitHub, newTestDeps(t, nil))
	_, err := a.NormalizeRedirectParams(context.Background(), redirect.Params{AccessToken: "x"})
	if err == nil || !strings.Contains(err.Error(), "Expected `code` from github hash params") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestTwitter_Flow(t *testing.T) {
	var invalidated bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/twitter/request-token":
			if r.URL.Query().Get("appID") != "42" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			writeJSON(w, map[string]string{"oauth_token": "req"})
		case "/twitter/access-token":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["oauth_token"] != "req" || body["oauth_verifier"] != "ver" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			writeJSON(w, map[string]string{"oauth_token": "tok", "oauth_token_secret": "sec"})
		case "/twitter/user":
			if r.URL.Query().Get("oauth_token_secret") != "sec" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, map[string]string{"id_str": "777", "screen_name": "bird"})
		case "/twitter/invalidate":
			invalidated = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	a := mustAdapter(t, Twitter, newTestDeps(t, srv))

	raw, err := a.AuthURL(ctx, AuthRequest{State: "s"})
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}
	if !strings.HasPrefix(raw, twitterAuthenticateURL) || mustQuery(t, raw).Get("oauth_token") != "req" {
		t.Errorf("unexpected auth url %q", raw)
	}

	empty, err := a.NormalizeRedirectParams(ctx, redirect.Params{})
	if err != nil || !empty.IsEmpty() {
		t.Errorf("expected empty params unchanged, got %+v, %v", empty, err)
	}

	p, err := a.NormalizeRedirectParams(ctx, redirect.Params{OAuthToken: "req", OAuthVerifier: "ver"})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if p.AccessToken != "tok" || p.IDToken != "tok:sec:42" {
		t.Errorf("unexpected params %+v", p)
	}

	info, err := a.UserInfo(ctx, p.AccessToken)
	if err != nil || info.ID != "777" || info.Name != "bird" {
		t.Errorf("unexpected user info %+v, %v", info, err)
	}

	if err := a.Cleanup(ctx); err != nil || !invalidated {
		t.Errorf("expected invalidate call, err=%v invalidated=%v", err, invalidated)
	}
}

func TestPasswordless(t *testing.T) {
	ctx := context.Background()
	a := mustAdapter(t, Passwordless, Deps{VerifierURL: "https://verify.example.com/"})

	raw, err := a.AuthURL(ctx, AuthRequest{
		ClientID:    "0xabc",
		RedirectURI: "http://127.0.0.1/cb",
		State:       "s",
		Extra:       map[string]string{"email": "p@example.com"},
	})
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}
	if !strings.HasPrefix(raw, "https://verify.example.com/passwordless/login?") {
		t.Errorf("unexpected url %q", raw)
	}
	if q := mustQuery(t, raw); q.Get("email") != "p@example.com" || q.Get("client_id") != "0xabc" || q.Get("state") != "s" {
		t.Errorf("unexpected query %v", q)
	}

	if _, err := a.AuthURL(ctx, AuthRequest{ClientID: "0xabc"}); !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT without email, got %v", err)
	}

	if _, err := a.NormalizeRedirectParams(ctx, redirect.Params{AccessToken: "x"}); !apperrors.IsCode(err, apperrors.ErrCodeMissingAccessToken) {
		t.Errorf("expected MISSING_ACCESS_TOKEN, got %v", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "p@example.com",
		"sub":   "user-1",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	p, err := a.NormalizeRedirectParams(ctx, redirect.Params{IDToken: token})
	if err != nil || p.AccessToken != token {
		t.Fatalf("unexpected normalize result %+v, %v", p, err)
	}
	info, err := a.UserInfo(ctx, p.AccessToken)
	if err != nil || info.ID != "p@example.com" {
		t.Errorf("unexpected user info %+v, %v", info, err)
	}

	subOnly, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-2"}).SignedString([]byte("secret"))
	if info, err := a.UserInfo(ctx, subOnly); err != nil || info.ID != "user-2" {
		t.Errorf("expected sub fallback, got %+v, %v", info, err)
	}

	if _, err := a.UserInfo(ctx, "not-a-jwt"); !apperrors.IsCode(err, apperrors.ErrCodeProviderError) {
		t.Errorf("expected PROVIDER_ERROR for garbage token, got %v", err)
	}
}

func TestGenerateState(t *testing.T) {
	s1, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := GenerateState()
	if len(s1) != 64 || s1 == s2 {
		t.Errorf("unexpected states %q %q", s1, s2)
	}
}
