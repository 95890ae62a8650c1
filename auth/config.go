package auth

import (
	"fmt"
	"time"

	"github.com/kbukum/socialauth/validation"
)

// UXMode selects how the provider page is shown.
type UXMode string

const (
	// UXModePopup opens the provider in a separate window and waits for it.
	UXModePopup UXMode = "popup"
	// UXModeRedirect sends the page to the provider and resumes on return.
	UXModeRedirect UXMode = "redirect"
)

// Config configures the login SDK.
type Config struct {
	// AppID identifies the app at the gateway.
	AppID string `yaml:"app_id" mapstructure:"app_id" validate:"required"`
	// AppAddress skips the gateway address lookup when set.
	AppAddress string `yaml:"app_address" mapstructure:"app_address"`
	// Network tags the environment. "test" enables error reporting to the log.
	Network string `yaml:"network" mapstructure:"network" validate:"omitempty,oneof=test dev mainnet"`
	UXMode  UXMode `yaml:"ux_mode" mapstructure:"ux_mode" validate:"omitempty,oneof=popup redirect"`
	// RedirectURI defaults to the callback URL of the opener or page.
	RedirectURI string `yaml:"redirect_uri" mapstructure:"redirect_uri" validate:"omitempty,url"`
	// RPCURL skips the gateway config lookup when set.
	RPCURL      string `yaml:"rpc_url" mapstructure:"rpc_url" validate:"omitempty,url"`
	GatewayURL  string `yaml:"gateway_url" mapstructure:"gateway_url" validate:"omitempty,url"`
	VerifierURL string `yaml:"verifier_url" mapstructure:"verifier_url" validate:"omitempty,url"`
	KeystoreURL string `yaml:"keystore_url" mapstructure:"keystore_url" validate:"omitempty,url"`
	// RequireState rejects responses that carry no state.
	RequireState bool `yaml:"require_state" mapstructure:"require_state"`
	// PollInterval is how often a popup is checked for being closed.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// HTTPTimeout bounds each outbound request.
	HTTPTimeout time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	// Clients maps login type names to OAuth client IDs.
	Clients map[string]string `yaml:"clients" mapstructure:"clients"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Network == "" {
		c.Network = "test"
	}
	if c.UXMode == "" {
		c.UXMode = UXModePopup
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.GatewayURL == "" && (c.RPCURL == "" || c.AppAddress == "") {
		return fmt.Errorf("auth: gateway_url is required unless rpc_url and app_address are set")
	}
	return nil
}
