// Package config loads socialauth configuration.
//
// Viper reads an optional YAML file, godotenv loads an optional .env file,
// and SOCIALAUTH_* environment variables override individual keys
// (SOCIALAUTH_AUTH_APP_ID sets auth.app_id).
//
// # Usage
//
//	var cfg CLIConfig
//	err := config.LoadConfig("socialauth", &cfg, config.WithConfigFile(path))
package config
