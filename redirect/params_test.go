package redirect

import (
	"net/url"
	"testing"

	apperrors "github.com/kbukum/socialauth/errors"
)

func TestParse_FragmentOnly(t *testing.T) {
	p, err := Parse("http://host/#state=S&access_token=T&id_token=I")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Params{State: "S", AccessToken: "T", IDToken: "I"}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
	if got := p.Values(); len(got) != 3 {
		t.Errorf("expected exactly 3 keys, got %v", got)
	}
}

func TestParse_FragmentWinsOverQuery(t *testing.T) {
	p, err := Parse("http://host/cb?state=Q&code=C#state=F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.State != "F" {
		t.Errorf("expected fragment state F, got %q", p.State)
	}
	if p.Code != "C" {
		t.Errorf("expected query fallback code C, got %q", p.Code)
	}
}

func TestParse_DropsUnknownKeys(t *testing.T) {
	p, err := Parse("http://host/?foo=bar&authuser=0#hd=x&scope=email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != (Params{Scope: "email"}) {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestParse_KeepsValuesAsStrings(t *testing.T) {
	p, _ := Parse("http://host/#expires_in=3599&token_type=Bearer")
	if p.ExpiresIn != "3599" || p.TokenType != "Bearer" {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestParse_FragmentEscapesDecodedOnce(t *testing.T) {
	const raw = "http://host/cb#state=S&access_token=ab%26cd%2Bef&id_token=I%3D%3D"
	want := Params{State: "S", AccessToken: "ab&cd+ef", IDToken: "I=="}

	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != want {
		t.Errorf("Parse: expected %+v, got %+v", want, p)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse failed: %v", err)
	}
	if got := ParseURL(u); got != want {
		t.Errorf("ParseURL: expected %+v, got %+v", want, got)
	}

	q, _ := Parse("http://host/cb?state=S&access_token=ab%26cd%2Bef&id_token=I%3D%3D")
	if q != want {
		t.Errorf("query and fragment disagree: %+v vs %+v", q, want)
	}
}

func TestParse_BadEscapeUnderUnknownKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"fragment", "http://host/cb#state=S&utm=%zz&access_token=T"},
		{"query", "http://host/cb?state=S&utm=%zz&access_token=T"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != (Params{State: "S", AccessToken: "T"}) {
				t.Errorf("unexpected params %+v", p)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("http://host/%zz"); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseURL_Nil(t *testing.T) {
	if !ParseURL(nil).IsEmpty() {
		t.Error("expected empty params for nil URL")
	}
}

func TestIsEmpty(t *testing.T) {
	p, _ := Parse("http://host/callback")
	if !p.IsEmpty() {
		t.Error("expected empty params")
	}
	p, _ = Parse("http://host/callback#error=access_denied")
	if p.IsEmpty() {
		t.Error("expected non-empty params")
	}
}

func TestFromValuesAndValues(t *testing.T) {
	v := url.Values{}
	v.Set("oauth_token", "ot")
	v.Set("oauth_verifier", "ov")
	v.Set("extra", "x")

	p := FromValues(v)
	if p.OAuthToken != "ot" || p.OAuthVerifier != "ov" {
		t.Errorf("unexpected params %+v", p)
	}
	out := p.Values()
	if out.Get("extra") != "" {
		t.Error("expected unknown key to be dropped")
	}
	if out.Get("oauth_token") != "ot" || len(out) != 2 {
		t.Errorf("unexpected values %v", out)
	}
}

func TestKeys(t *testing.T) {
	if len(Keys()) != 12 {
		t.Errorf("expected 12 keys, got %d", len(Keys()))
	}
}

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		location string
		status   Status
		errText  string
	}{
		{"success", "http://host/#state=S&access_token=T", StatusSuccess, ""},
		{"provider error", "http://host/?error=access_denied&error_description=denied", StatusError, "access_denied: denied"},
		{"empty", "http://host/callback", StatusError, "empty response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(tc.location)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Status != tc.status {
				t.Errorf("expected status %s, got %s", tc.status, env.Status)
			}
			if env.Error != tc.errText {
				t.Errorf("expected error %q, got %q", tc.errText, env.Error)
			}
			if tc.status == StatusSuccess && env.Err() != nil {
				t.Errorf("expected nil Err, got %v", env.Err())
			}
			if tc.status == StatusError && !apperrors.IsCode(env.Err(), apperrors.ErrCodeProviderError) {
				t.Errorf("expected provider error, got %v", env.Err())
			}
		})
	}
}

func TestEnvelope_ErrMessage(t *testing.T) {
	env := EnvelopeFor(Params{Error: "access_denied", ErrorDescription: "user cancelled"})
	appErr, ok := apperrors.AsAppError(env.Err())
	if !ok {
		t.Fatalf("expected AppError, got %T", env.Err())
	}
	if appErr.Message != "access_denied: user cancelled" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}
