package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/socialauth/auth"
)

// printer writes command results as text or JSON.
type printer struct {
	w       io.Writer
	json    bool
	showKey bool
}

func (p *printer) value(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) session(s *auth.StoredSession) error {
	out := *s
	if !p.showKey {
		out.PrivateKey = maskSecret(s.PrivateKey)
	}
	if p.json {
		return p.value(out)
	}
	_, err := fmt.Fprintf(p.w, "login type: %s\nid:         %s\nemail:      %s\nname:       %s\nkey:        %s\n",
		out.LoginType, out.UserInfo.ID, out.UserInfo.Email, out.UserInfo.Name, out.PrivateKey)
	return err
}

func (p *printer) lines(items []string) error {
	if p.json {
		return p.value(items)
	}
	_, err := fmt.Fprintln(p.w, strings.Join(items, "\n"))
	return err
}

func (p *printer) line(s string) error {
	if p.json {
		return p.value(map[string]string{"result": s})
	}
	_, err := fmt.Fprintln(p.w, s)
	return err
}

// maskSecret keeps the first and last four characters of s.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
