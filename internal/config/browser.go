package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// BrowserConfig holds Playwright launch settings
type BrowserConfig struct {
	Headless       bool          `envconfig:"HEADLESS" default:"true"`
	Timeout        time.Duration `envconfig:"BROWSER_TIMEOUT" default:"10s"`
	ExecutablePath string        `envconfig:"PLAYWRIGHT_CHROMIUM_EXECUTABLE_PATH"`
	ArtifactDir    string        `envconfig:"ARTIFACT_DIR" default:"."`
}

// LoadBrowserConfig loads browser configuration from environment variables
func LoadBrowserConfig() (BrowserConfig, error) {
	var cfg BrowserConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return BrowserConfig{}, fmt.Errorf("failed to process browser config: %w", err)
	}
	return cfg, nil
}

// TimeoutMillis returns the timeout in the unit Playwright expects
func (c BrowserConfig) TimeoutMillis() float64 {
	return float64(c.Timeout / time.Millisecond)
}
