package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds settings for the local shop stub
type ServerConfig struct {
	Port     string `envconfig:"PORT" default:"8081"`
	Login    string `envconfig:"LOGIN" default:"demo_webshop@test.com"`
	Password string `envconfig:"PASSWORD" default:"123123"`
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to process server config: %w", err)
	}
	return cfg, nil
}
