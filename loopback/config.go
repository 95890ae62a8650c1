package loopback

import (
	"fmt"
	"strings"
	"time"
)

// Config configures the loopback callback server.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	// Port 0 picks a free port at Start.
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize  string `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "64KB"
	// WindowTimeout is how long a login window may stay open before it
	// counts as closed.
	WindowTimeout time.Duration `yaml:"window_timeout" mapstructure:"window_timeout"`
	// RelayRate and RelayBurst bound the relay and beacon endpoints,
	// in requests per second.
	RelayRate  float64 `yaml:"relay_rate" mapstructure:"relay_rate"`
	RelayBurst int     `yaml:"relay_burst" mapstructure:"relay_burst"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "64KB"
	}
	if c.WindowTimeout <= 0 {
		c.WindowTimeout = 5 * time.Minute
	}
	if c.RelayRate <= 0 {
		c.RelayRate = 5
	}
	if c.RelayBurst <= 0 {
		c.RelayBurst = 10
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("loopback.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("loopback timeouts must be non-negative")
	}
	if parseSize(c.MaxBodySize, -1) <= 0 {
		return fmt.Errorf("loopback.max_body_size is invalid (got: %q)", c.MaxBodySize)
	}
	return nil
}

// parseSize parses sizes such as "64KB", "10MB" or "1024" into bytes.
func parseSize(s string, fallback int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	multiplier := int64(1)
	for suffix, m := range map[string]int64{"GB": 1 << 30, "MB": 1 << 20, "KB": 1 << 10} {
		if strings.HasSuffix(s, suffix) {
			multiplier = m
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n * multiplier
}
