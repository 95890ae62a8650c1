package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/socialauth/auth"
	"github.com/kbukum/socialauth/config"
	"github.com/kbukum/socialauth/loopback"
	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/redis"
)

// StorageConfig places the persisted session halves and the pending
// redirect marker.
type StorageConfig struct {
	// Dir holds the file backends. Defaults to the user config directory.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// NameSlotFile holds half a of the persisted session.
	NameSlotFile string `yaml:"name_slot_file" mapstructure:"name_slot_file"`
	// SessionFile holds half b when Redis is disabled.
	SessionFile string `yaml:"session_file" mapstructure:"session_file"`
	// LocalFile holds the pending redirect-mode marker.
	LocalFile string `yaml:"local_file" mapstructure:"local_file"`
}

// ApplyDefaults resolves the file paths under Dir.
func (c *StorageConfig) ApplyDefaults() {
	if c.Dir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.Dir = filepath.Join(dir, "socialauth")
		} else {
			c.Dir = ".socialauth"
		}
	}
	if c.NameSlotFile == "" {
		c.NameSlotFile = filepath.Join(c.Dir, "name-slot.json")
	}
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(c.Dir, "session.json")
	}
	if c.LocalFile == "" {
		c.LocalFile = filepath.Join(c.Dir, "local.json")
	}
}

// Validate keeps the two halves of the session apart.
func (c *StorageConfig) Validate() error {
	if c.NameSlotFile == c.SessionFile {
		return fmt.Errorf("storage: name_slot_file and session_file must differ")
	}
	return nil
}

// CLIConfig is the configuration of the socialauth command.
type CLIConfig struct {
	config.AppConfig `yaml:",inline" mapstructure:",squash"`

	Auth      auth.Config          `yaml:"auth" mapstructure:"auth"`
	Loopback  loopback.Config      `yaml:"loopback" mapstructure:"loopback"`
	Redis     redis.Config         `yaml:"redis" mapstructure:"redis"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Storage   StorageConfig        `yaml:"storage" mapstructure:"storage"`
}

// ApplyDefaults fills every section.
func (c *CLIConfig) ApplyDefaults() {
	c.AppConfig.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Loopback.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	c.Storage.ApplyDefaults()
}

// Validate checks every section.
func (c *CLIConfig) Validate() error {
	if err := c.AppConfig.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("config.auth: %w", err)
	}
	if err := c.Loopback.Validate(); err != nil {
		return fmt.Errorf("config.loopback: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return c.Storage.Validate()
}

// loadConfig reads the config file, the .env file and SOCIALAUTH_*
// variables, then applies flag overrides.
func loadConfig(f *rootFlags) (*CLIConfig, error) {
	var cfg CLIConfig
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	if err := config.LoadConfig("socialauth", &cfg, opts...); err != nil {
		return nil, err
	}
	if f.uxMode != "" {
		cfg.Auth.UXMode = auth.UXMode(f.uxMode)
	}
	if f.debug {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
