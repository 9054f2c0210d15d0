// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AI providers accepted in configuration.
const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
	ProviderRemote = "remote"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Storage
	StorePath   string `json:"store_path,omitempty"`   // Local SQLite profile store
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL, used by serve
	UserID      string `json:"user_id,omitempty"`      // Profile owner in a shared store

	// AI
	Provider  string `json:"provider,omitempty"`   // mock, gemini or remote
	APIKey    string `json:"api_key,omitempty"`    // Gemini API key
	ServerURL string `json:"server_url,omitempty"` // form-autofill server for the remote provider
	Token     string `json:"token,omitempty"`      // Bearer token for ServerURL

	// Behavior
	UseAI          bool `json:"use_ai,omitempty"`          // Enrich the profile before filling
	Verbose        bool `json:"verbose,omitempty"`         // Log every per-field decision
	SettleDelayMS  int  `json:"settle_delay_ms,omitempty"` // Pause after injecting the receiver
	TimeoutSeconds int  `json:"timeout_seconds,omitempty"` // Collaborator call timeout
	Concurrency    int  `json:"concurrency,omitempty"`     // Pages scanned in parallel
}

// DefaultConfig returns the values used when neither file nor flags set them.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderMock,
		ServerURL:      "http://localhost:8787",
		SettleDelayMS:  100,
		TimeoutSeconds: 60,
		Concurrency:    4,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", ProviderMock, ProviderGemini, ProviderRemote:
	default:
		return fmt.Errorf("config error: unknown provider %q (want mock, gemini or remote)", c.Provider)
	}

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'server_url' must be an absolute URL: %s", c.ServerURL)
		}
	}
	if c.Provider == ProviderRemote && c.ServerURL == "" {
		return fmt.Errorf("config error: provider 'remote' requires 'server_url'")
	}

	if c.SettleDelayMS < 0 {
		return fmt.Errorf("config error: 'settle_delay_ms' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ServerURL == "" {
		result.ServerURL = defaults.ServerURL
	}
	if result.Token == "" {
		result.Token = defaults.Token
	}

	if result.SettleDelayMS == 0 {
		result.SettleDelayMS = defaults.SettleDelayMS
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so CLI flags always win.

	return result
}

// SettleDelay returns SettleDelayMS as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultConfigPath returns the per-user CLI config file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "form-autofill", "config.json"), nil
}

// SaveConfig writes c to path as indented JSON, creating parent directories.
// The file holds a bearer token, so it is created user-readable only.
func SaveConfig(path string, c *Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from AUTOFILL_STORE, DATABASE_URL, AUTOFILL_USER_ID,
// AI_PROVIDER, GEMINI_API_KEY, AUTOFILL_SERVER_URL and AUTOFILL_TOKEN when set.
func (c *Config) ApplyEnv() {
	c.StorePath = envString("AUTOFILL_STORE", c.StorePath)
	c.DatabaseURL = envString("DATABASE_URL", c.DatabaseURL)
	c.UserID = envString("AUTOFILL_USER_ID", c.UserID)
	c.Provider = strings.ToLower(envString("AI_PROVIDER", c.Provider))
	c.APIKey = envString("GEMINI_API_KEY", c.APIKey)
	c.ServerURL = envString("AUTOFILL_SERVER_URL", c.ServerURL)
	c.Token = envString("AUTOFILL_TOKEN", c.Token)
}
