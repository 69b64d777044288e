// Package config loads SDK settings from the environment. All variables are
// prefixed FLOWMASTERY_, e.g. FLOWMASTERY_BASE_URL.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings for the API client.
type Config struct {
	// BaseURL is the dashboard backend origin, without the API prefix.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8000"`

	// APIPrefix is prepended to every request path.
	APIPrefix string `envconfig:"API_PREFIX" default:"/api/v1"`

	// BypassToken is sent as the tunnel bypass header on every request so
	// ngrok-fronted development backends skip their interstitial page.
	BypassToken string `envconfig:"BYPASS_TOKEN" default:"true"`

	// Timeout bounds each request end to end, including refresh retries.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"15s"`

	// Debug enables request and response logging. Bodies and cookies are
	// never logged.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Load reads configuration from FLOWMASTERY_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("flowmastery", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
