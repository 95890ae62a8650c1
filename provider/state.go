package provider

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// GenerateState returns 32 random bytes, hex encoded, for use as the
// per-attempt state token.
func GenerateState() (string, error) {
	return randomHex(32)
}

// GenerateNonce returns 16 random bytes, hex encoded, for OIDC replay
// protection.
func GenerateNonce() (string, error) {
	return randomHex(16)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
