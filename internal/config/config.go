package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is resolved once at startup from the environment, with an
// optional .env file for development.
type Config struct {
	// APIBaseURL selects the Logbook server.
	APIBaseURL string        `env:"LOGBOOK_API_URL" envDefault:"http://localhost:5000"`
	Timeout    time.Duration `env:"LOGBOOK_TIMEOUT" envDefault:"30s"`

	// DataDir overrides the default ~/.termbook session location.
	DataDir string `env:"LOGBOOK_DATA_DIR"`

	// Direct Google authorization mode: when a client id and secret
	// are configured the OAuth exchange runs locally instead of being
	// delegated to the server.
	GoogleClientID     string `env:"LOGBOOK_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"LOGBOOK_GOOGLE_CLIENT_SECRET"`
	OAuthCallbackPort  int    `env:"LOGBOOK_OAUTH_CALLBACK_PORT" envDefault:"8913"`

	// SearchMatchCount caps how many ranked results a search requests.
	SearchMatchCount int `env:"LOGBOOK_SEARCH_MATCH_COUNT" envDefault:"10"`
}

// Load reads the environment. A missing .env file is fine; explicit
// environment variables always win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}
	if c.OAuthCallbackPort <= 0 || c.OAuthCallbackPort > 65535 {
		return fmt.Errorf("invalid OAuth callback port: %d", c.OAuthCallbackPort)
	}
	if c.SearchMatchCount <= 0 {
		return fmt.Errorf("search match count must be positive, got: %d", c.SearchMatchCount)
	}
	return nil
}

// DirectGoogleAuth reports whether the local OAuth exchange mode is
// configured.
func (c *Config) DirectGoogleAuth() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
