package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned by Join when the halves differ in length.
var ErrLengthMismatch = errors.New("session: split halves differ in length")

// halfEncoding encodes persisted halves. Padding is kept.
var halfEncoding = base64.URLEncoding

// Split returns a random pad a and b = a XOR plain. Both halves have the
// length of plain.
func Split(plain []byte) (a, b []byte, err error) {
	a = make([]byte, len(plain))
	if _, err := rand.Read(a); err != nil {
		return nil, nil, fmt.Errorf("session: read pad: %w", err)
	}
	b = make([]byte, len(plain))
	for i := range plain {
		b[i] = a[i] ^ plain[i]
	}
	return a, b, nil
}

// Join reverses Split.
func Join(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// SplitString splits the UTF-8 bytes of s and encodes both halves as
// URL-safe base64.
func SplitString(s string) (a, b string, err error) {
	rawA, rawB, err := Split([]byte(s))
	if err != nil {
		return "", "", err
	}
	return halfEncoding.EncodeToString(rawA), halfEncoding.EncodeToString(rawB), nil
}

// JoinString reverses SplitString.
func JoinString(a, b string) (string, error) {
	if len(a) != len(b) {
		return "", ErrLengthMismatch
	}
	rawA, err := halfEncoding.DecodeString(a)
	if err != nil {
		return "", fmt.Errorf("session: decode half a: %w", err)
	}
	rawB, err := halfEncoding.DecodeString(b)
	if err != nil {
		return "", fmt.Errorf("session: decode half b: %w", err)
	}
	plain, err := Join(rawA, rawB)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
