package gateway

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/socialauth/errors"
	"github.com/kbukum/socialauth/httpclient"
)

// Client reads app configuration from the gateway.
type Client struct {
	http *httpclient.Client
	base string
}

// New creates a gateway client for baseURL. A nil http client gets a
// default one.
func New(http *httpclient.Client, baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, apperrors.InvalidInput("gateway_url", "required")
	}
	if http == nil {
		var err error
		if http, err = httpclient.New(httpclient.Config{}); err != nil {
			return nil, err
		}
	}
	return &Client{http: http, base: strings.TrimRight(baseURL, "/")}, nil
}

type configResponse struct {
	RPCURL string `json:"RPC_URL"`
}

type addressResponse struct {
	Address string `json:"address"`
}

// RPCURL returns the chain RPC endpoint.
func (c *Client) RPCURL(ctx context.Context) (string, error) {
	resp, err := httpclient.Get[configResponse](ctx, c.http, c.base+"/get-config/")
	if err != nil {
		return "", apperrors.ConfigFetchFailed("error while fetching rpc url", err)
	}
	if resp.Data.RPCURL == "" {
		return "", apperrors.ConfigFetchFailed("error while fetching rpc url", fmt.Errorf("RPC_URL missing"))
	}
	return resp.Data.RPCURL, nil
}

// AppAddress returns the 0x-prefixed address of appID.
func (c *Client) AppAddress(ctx context.Context, appID string) (string, error) {
	resp, err := httpclient.Get[addressResponse](ctx, c.http, c.base+"/get-address/",
		httpclient.WithQueryParam("id", appID),
	)
	if err != nil {
		return "", apperrors.ConfigFetchFailed("error while fetching app address", err)
	}
	addr := resp.Data.Address
	if addr == "" {
		return "", apperrors.ConfigFetchFailed("error while fetching app address", fmt.Errorf("address missing for app %s", appID))
	}
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr, nil
}
