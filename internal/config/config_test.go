package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"store_path": "/tmp/autofill.db",
		"provider": "remote",
		"server_url": "https://autofill.example.com",
		"token": "abc",
		"settle_delay_ms": 250,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/tmp/autofill.db", cfg.StorePath)
	assert.Equal(t, ProviderRemote, cfg.Provider)
	assert.Equal(t, "https://autofill.example.com", cfg.ServerURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay())
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", DefaultConfig(), ""},
		{"empty", Config{}, ""},
		{"unknown provider", Config{Provider: "openai"}, "unknown provider"},
		{"relative server url", Config{ServerURL: "localhost:8787"}, "absolute URL"},
		{"remote without server", Config{Provider: ProviderRemote}, "requires 'server_url'"},
		{"negative settle", Config{SettleDelayMS: -1}, "settle_delay_ms"},
		{"negative timeout", Config{TimeoutSeconds: -5}, "timeout_seconds"},
		{"negative concurrency", Config{Concurrency: -2}, "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Provider: ProviderGemini, APIKey: "key", Concurrency: 8}

	merged := cfg.MergeWithDefaults(DefaultConfig())
	assert.Equal(t, ProviderGemini, merged.Provider)
	assert.Equal(t, "key", merged.APIKey)
	assert.Equal(t, 8, merged.Concurrency)
	assert.Equal(t, "http://localhost:8787", merged.ServerURL)
	assert.Equal(t, 100*time.Millisecond, merged.SettleDelay())
	assert.Equal(t, time.Minute, merged.Timeout())
	assert.Equal(t, "key", cfg.APIKey, "receiver must be unchanged")
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{StorePath: "a.db"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, cfg, merged)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := &Config{Provider: ProviderRemote, ServerURL: "https://autofill.example.com", Token: "tok"}

	require.NoError(t, SaveConfig(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("AUTOFILL_TOKEN", "from-env")
	t.Setenv("AUTOFILL_STORE", "")

	cfg := Config{StorePath: "keep.db", Token: "from-file"}
	cfg.ApplyEnv()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "keep.db", cfg.StorePath)
}
