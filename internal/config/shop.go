package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// ErrUnknownEnvironment is returned for environment names with no known API URL
var ErrUnknownEnvironment = errors.New("unknown shop environment")

// environments maps named environments to the API base URL of the shop
var environments = map[string]string{
	"prod":  "https://demowebshop.tricentis.com",
	"local": "http://localhost:8081",
}

// ShopConfig holds the target shop and the account used by the scenarios
type ShopConfig struct {
	APIURL   string `envconfig:"API_URL"`
	WebURL   string `envconfig:"WEB_URL"`
	Login    string `envconfig:"LOGIN"`
	Password string `envconfig:"PASSWORD"`
	Env      string `envconfig:"SHOP_ENV" default:"prod"`
}

// LoadDotEnv loads variables from a .env file when one exists
func LoadDotEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}
}

// LoadShopConfig loads shop configuration from environment variables
func LoadShopConfig() (*ShopConfig, error) {
	var cfg ShopConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process shop config: %w", err)
	}

	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimSuffix(cfg.WebURL, "/")

	return &cfg, nil
}

// Validate checks that the fields needed to reach the shop are set
func (c *ShopConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.WebURL == "" {
		return fmt.Errorf("WEB_URL is required")
	}
	return nil
}

// ValidateCredentials checks that an account is configured
func (c *ShopConfig) ValidateCredentials() error {
	if c.Login == "" {
		return fmt.Errorf("LOGIN is required")
	}
	if c.Password == "" {
		return fmt.Errorf("PASSWORD is required")
	}
	return nil
}

// EnvironmentURL returns the API base URL of a named environment
func EnvironmentURL(name string) (string, error) {
	url, ok := environments[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return url, nil
}

// APIBaseURL returns API_URL when set and the URL of the named environment otherwise
func (c *ShopConfig) APIBaseURL() (string, error) {
	if c.APIURL != "" {
		return c.APIURL, nil
	}
	return EnvironmentURL(c.Env)
}
