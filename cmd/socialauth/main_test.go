package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/testutil"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "*****"},
		{"0123456789abcdef", "0123********cdef"},
	}
	for _, tc := range tests {
		if got := maskSecret(tc.in); got != tc.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStorageConfig(t *testing.T) {
	c := StorageConfig{Dir: "/tmp/sa"}
	c.ApplyDefaults()
	if c.NameSlotFile != filepath.Join("/tmp/sa", "name-slot.json") || c.SessionFile != filepath.Join("/tmp/sa", "session.json") {
		t.Errorf("unexpected paths %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	c.SessionFile = c.NameSlotFile
	if err := c.Validate(); err == nil {
		t.Error("expected the two halves to be kept apart")
	}
}

// writeConfig writes a config that needs no network: the app address and
// RPC URL are given and telemetry is off.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := `
name: socialauth
environment: development
logging:
  level: disabled
auth:
  app_id: app
  app_address: "0xabc"
  rpc_url: https://rpc.test
  keystore_url: https://keys.test
  clients:
    google: gid
    discord: did
loopback:
  host: 127.0.0.1
  port: 0
storage:
  dir: ` + dir + `
`
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t)
	cfg, err := loadConfig(&rootFlags{configFile: path, uxMode: "redirect"})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Auth.AppID != "app" || cfg.Auth.Clients["google"] != "gid" {
		t.Errorf("unexpected auth config %+v", cfg.Auth)
	}
	if cfg.Auth.UXMode != "redirect" {
		t.Errorf("expected flag override, got %q", cfg.Auth.UXMode)
	}
	if cfg.Storage.NameSlotFile != filepath.Join(filepath.Dir(path), "name-slot.json") {
		t.Errorf("unexpected name slot file %q", cfg.Storage.NameSlotFile)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("auth:\n  ux_mode: tab\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(&rootFlags{configFile: path}); err == nil {
		t.Error("expected validation error")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("expected JSON, got %q", out)
	}
	if info["version"] == "" {
		t.Errorf("expected a version, got %v", info)
	}
}

func TestLoginCommand_UnknownProvider(t *testing.T) {
	if _, err := run(t, "login", "myspace"); err == nil || !strings.Contains(err.Error(), "unknown login type") {
		t.Errorf("expected unknown login type, got %v", err)
	}
}

func TestLoginsCommand(t *testing.T) {
	out, err := run(t, "logins", "--config", writeConfig(t))
	if err != nil {
		t.Fatalf("logins failed: %v", err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "discord,google,passwordless" {
		t.Errorf("unexpected logins %q", out)
	}
}

func TestWhoamiAndLogout_WithoutSession(t *testing.T) {
	path := writeConfig(t)
	if _, err := run(t, "whoami", "--config", path); !apperrors.IsCode(err, apperrors.ErrCodeNotAuthenticated) {
		t.Errorf("expected NotAuthenticated, got %v", err)
	}
	out, err := run(t, "logout", "--config", path)
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if strings.TrimSpace(out) != "logged out" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLogout_RedisSessionHalf(t *testing.T) {
	mini := testutil.NewMiniRedis()
	testutil.T(t).Setup(mini)
	t.Setenv("SOCIALAUTH_REDIS_ENABLED", "true")
	t.Setenv("SOCIALAUTH_REDIS_ADDR", mini.Addr())

	if _, err := run(t, "logout", "--config", writeConfig(t)); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	var sessionKeys []string
	for _, key := range mini.Server().Keys() {
		if strings.HasPrefix(key, "socialauth:session") {
			sessionKeys = append(sessionKeys, key)
		}
	}
	if len(sessionKeys) != 1 {
		t.Errorf("expected the session half in redis, got keys %v", mini.Server().Keys())
	}
}

func TestPubkey_KeyServiceBackend(t *testing.T) {
	backend := testutil.NewBackend()
	testutil.T(t).Setup(backend)
	t.Setenv("SOCIALAUTH_AUTH_GATEWAY_URL", backend.URL())
	t.Setenv("SOCIALAUTH_AUTH_KEYSTORE_URL", backend.URL())

	out, err := run(t, "pubkey", "u@example.com", "google", "--format", "compressed", "--config", writeConfig(t))
	if err != nil {
		t.Fatalf("pubkey failed: %v", err)
	}
	if want := "03" + strings.Repeat("0", 63) + "1"; strings.TrimSpace(out) != want {
		t.Errorf("expected %s, got %q", want, out)
	}
	req, ok := backend.Last("/public-key")
	if !ok || req.Body["verifier"] != "google" || req.Body["appID"] != "0xabc" {
		t.Errorf("unexpected key service request %+v", req)
	}
}
