package keystore

import (
	"fmt"
	"strings"
)

// Format selects a public key encoding.
type Format string

const (
	FormatPoint        Format = "point"
	FormatCompressed   Format = "compressed"
	FormatUncompressed Format = "uncompressed"
)

// ParseFormat validates s as a Format. Empty means point.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatPoint, nil
	case FormatPoint, FormatCompressed, FormatUncompressed:
		return f, nil
	}
	return "", fmt.Errorf("unknown public key format %q", s)
}

// PublicKey is a formatted public key. Point is set for FormatPoint,
// Encoded for the other formats.
type PublicKey struct {
	Point   *Point `json:"point,omitempty"`
	Encoded string `json:"encoded,omitempty"`
}

func (k PublicKey) String() string {
	if k.Point != nil {
		return k.Point.X + "," + k.Point.Y
	}
	return k.Encoded
}

// FormatPublicKey pads each coordinate to 64 hex characters and encodes
// p as requested. The compressed form always carries the 03 prefix.
func FormatPublicKey(p Point, f Format) PublicKey {
	x, y := pad64(p.X), pad64(p.Y)
	switch f {
	case FormatCompressed:
		return PublicKey{Encoded: "03" + x}
	case FormatUncompressed:
		return PublicKey{Encoded: "04" + x + y}
	default:
		return PublicKey{Point: &Point{X: x, Y: y}}
	}
}

func pad64(h string) string {
	if len(h) >= 64 {
		return h
	}
	return strings.Repeat("0", 64-len(h)) + h
}
