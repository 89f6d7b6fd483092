package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv() {
	os.Unsetenv("LOGBOOK_API_URL")
	os.Unsetenv("LOGBOOK_TIMEOUT")
	os.Unsetenv("LOGBOOK_DATA_DIR")
	os.Unsetenv("LOGBOOK_GOOGLE_CLIENT_ID")
	os.Unsetenv("LOGBOOK_GOOGLE_CLIENT_SECRET")
	os.Unsetenv("LOGBOOK_OAUTH_CALLBACK_PORT")
	os.Unsetenv("LOGBOOK_SEARCH_MATCH_COUNT")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("Expected default API URL, got '%s'", cfg.APIBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.OAuthCallbackPort != 8913 {
		t.Errorf("Expected default callback port 8913, got %d", cfg.OAuthCallbackPort)
	}
	if cfg.SearchMatchCount != 10 {
		t.Errorf("Expected default match count 10, got %d", cfg.SearchMatchCount)
	}
	if cfg.DirectGoogleAuth() {
		t.Error("Expected direct google auth off by default")
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv()
	os.Setenv("LOGBOOK_API_URL", "https://logbook.example.com")
	os.Setenv("LOGBOOK_TIMEOUT", "5s")
	os.Setenv("LOGBOOK_GOOGLE_CLIENT_ID", "cid")
	os.Setenv("LOGBOOK_GOOGLE_CLIENT_SECRET", "secret")
	os.Setenv("LOGBOOK_SEARCH_MATCH_COUNT", "25")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.APIBaseURL != "https://logbook.example.com" {
		t.Errorf("Expected env API URL, got '%s'", cfg.APIBaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.Timeout)
	}
	if cfg.SearchMatchCount != 25 {
		t.Errorf("Expected match count 25, got %d", cfg.SearchMatchCount)
	}
	if !cfg.DirectGoogleAuth() {
		t.Error("Expected direct google auth with id and secret set")
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		APIBaseURL:        "http://localhost:5000",
		Timeout:           time.Second,
		OAuthCallbackPort: 8913,
		SearchMatchCount:  10,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.APIBaseURL = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"bad port", func(c *Config) { c.OAuthCallbackPort = 70000 }},
		{"zero match count", func(c *Config) { c.SearchMatchCount = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
