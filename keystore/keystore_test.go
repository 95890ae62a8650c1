package keystore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/kbukum/socialauth/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(nil, Config{URL: srv.URL, AppID: "42"})
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	return c
}

func TestPrivateKey(t *testing.T) {
	var got privateKeyRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/private-key" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]string{"privateKey": "pk_1"})
	})

	key, err := c.PrivateKey(context.Background(), "u@example.com", "idt", "google")
	if err != nil {
		t.Fatalf("PrivateKey failed: %v", err)
	}
	if key != "pk_1" {
		t.Errorf("expected pk_1, got %q", key)
	}
	want := privateKeyRequest{ID: "u@example.com", Token: "idt", Verifier: "google", AppID: "42"}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestPrivateKey_Failures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	if _, err := c.PrivateKey(ctx, "u", "", "google"); !apperrors.IsCode(err, apperrors.ErrCodeKeyReconstructionFailed) {
		t.Errorf("expected KEY_RECONSTRUCTION_FAILED for missing token, got %v", err)
	}
	if _, err := c.PrivateKey(ctx, "u", "t", "google"); !apperrors.IsCode(err, apperrors.ErrCodeKeyReconstructionFailed) {
		t.Errorf("expected KEY_RECONSTRUCTION_FAILED for server error, got %v", err)
	}
}

func TestPublicKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Point{X: "abc", Y: "def"})
	})
	p, err := c.PublicKey(context.Background(), "u", "google")
	if err != nil {
		t.Fatalf("PublicKey failed: %v", err)
	}
	if p.X != "abc" || p.Y != "def" {
		t.Errorf("unexpected point %+v", p)
	}
}

func TestNewHTTPClient_Validates(t *testing.T) {
	if _, err := NewHTTPClient(nil, Config{URL: "not a url"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestFormatPublicKey(t *testing.T) {
	p := Point{X: "ab", Y: "cd"}
	padX := strings.Repeat("0", 62) + "ab"
	padY := strings.Repeat("0", 62) + "cd"

	point := FormatPublicKey(p, FormatPoint)
	if point.Point == nil || point.Point.X != padX || point.Point.Y != padY {
		t.Errorf("unexpected point %+v", point)
	}
	if got := FormatPublicKey(p, FormatCompressed).Encoded; got != "03"+padX {
		t.Errorf("compressed = %q", got)
	}
	if got := FormatPublicKey(p, FormatUncompressed).Encoded; got != "04"+padX+padY {
		t.Errorf("uncompressed = %q", got)
	}
	full := strings.Repeat("f", 64)
	if got := FormatPublicKey(Point{X: full, Y: full}, FormatCompressed).Encoded; got != "03"+full {
		t.Errorf("full-width coordinate changed: %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatPoint, "point": FormatPoint, "compressed": FormatCompressed, "uncompressed": FormatUncompressed}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("der"); err == nil {
		t.Error("expected error for unknown format")
	}
}
