package keystore

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
	"github.com/kbukum/socialauth/validation"
)

// Point is an uncompressed secp256k1 public key as hex coordinates.
type Point struct {
	X string `json:"X"`
	Y string `json:"Y"`
}

// Client reconstructs keys for a verified identity.
type Client interface {
	PrivateKey(ctx context.Context, id, idToken, verifier string) (string, error)
	PublicKey(ctx context.Context, id, verifier string) (Point, error)
}

// Config locates the key service.
type Config struct {
	URL   string `yaml:"url" mapstructure:"url" validate:"required,url"`
	AppID string `yaml:"app_id" mapstructure:"app_id" validate:"required"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// HTTPClient is the Client backed by the key service's JSON API.
type HTTPClient struct {
	http *httpclient.Client
	cfg  Config
}

// NewHTTPClient creates a key service client. A nil http client gets a
// default one.
func NewHTTPClient(http *httpclient.Client, cfg Config) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if http == nil {
		var err error
		if http, err = httpclient.New(httpclient.Config{}); err != nil {
			return nil, err
		}
	}
	return &HTTPClient{http: http, cfg: cfg}, nil
}

type privateKeyRequest struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Verifier string `json:"verifier"`
	AppID    string `json:"appID"`
}

type privateKeyResponse struct {
	PrivateKey string `json:"privateKey"`
}

type publicKeyRequest struct {
	ID       string `json:"id"`
	Verifier string `json:"verifier"`
	AppID    string `json:"appID"`
}

// PrivateKey asks the key service for the user's private key.
func (c *HTTPClient) PrivateKey(ctx context.Context, id, idToken, verifier string) (string, error) {
	if id == "" || idToken == "" || verifier == "" {
		return "", apperrors.KeyReconstructionFailed(fmt.Errorf("id, token and verifier are required"))
	}
	resp, err := httpclient.Post[privateKeyResponse](ctx, c.http, c.path("/private-key"), privateKeyRequest{
		ID:       id,
		Token:    idToken,
		Verifier: verifier,
		AppID:    c.cfg.AppID,
	})
	if err != nil {
		return "", apperrors.KeyReconstructionFailed(err)
	}
	if resp.Data.PrivateKey == "" {
		return "", apperrors.KeyReconstructionFailed(fmt.Errorf("empty private key"))
	}
	return resp.Data.PrivateKey, nil
}

// PublicKey asks the key service for the user's public key.
func (c *HTTPClient) PublicKey(ctx context.Context, id, verifier string) (Point, error) {
	resp, err := httpclient.Post[Point](ctx, c.http, c.path("/public-key"), publicKeyRequest{
		ID:       id,
		Verifier: verifier,
		AppID:    c.cfg.AppID,
	})
	if err != nil {
		return Point{}, apperrors.ExternalService("keystore", err)
	}
	if resp.Data.X == "" || resp.Data.Y == "" {
		return Point{}, apperrors.ExternalService("keystore", fmt.Errorf("incomplete public key"))
	}
	return resp.Data, nil
}

func (c *HTTPClient) path(p string) string {
	return strings.TrimRight(c.cfg.URL, "/") + p
}
