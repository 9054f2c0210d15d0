package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Precedence(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "config.json", `{"provider":"gemini","token":"file-token","concurrency":9,"server_url":"https://file.example"}`)
	t.Setenv("AUTOFILL_TOKEN", "env-token")

	resetFlags(rootCmd)
	configPath = env.config
	flagServer = "https://flag.example"
	t.Cleanup(func() { resetFlags(rootCmd) })

	cfg, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderGemini, cfg.Provider, "from file")
	assert.Equal(t, "env-token", cfg.Token, "env beats file")
	assert.Equal(t, "https://flag.example", cfg.ServerURL, "flag beats file")
	assert.Equal(t, 9, cfg.Concurrency)
	assert.Equal(t, 60, cfg.TimeoutSeconds, "default")
}

func TestLoadSettings_MissingExplicitConfig(t *testing.T) {
	resetFlags(rootCmd)
	configPath = filepath.Join(t.TempDir(), "absent.json")
	t.Cleanup(func() { resetFlags(rootCmd) })

	_, err := loadSettings()
	assert.Error(t, err)
}

func TestLoadSettings_InvalidProvider(t *testing.T) {
	env := newCLIEnv(t)
	resetFlags(rootCmd)
	configPath = env.config
	flagAI = "openai"
	t.Cleanup(func() { resetFlags(rootCmd) })

	_, err := loadSettings()
	assert.Error(t, err)
}

func TestProfileOwner(t *testing.T) {
	id, err := profileOwner(config.Config{})
	require.NoError(t, err)
	assert.Equal(t, store.LocalUserID, id)

	id, err = profileOwner(config.Config{UserID: "6f1c1b6e-8b7a-4f5e-9a43-0d6f0b3e2a11"})
	require.NoError(t, err)
	assert.Equal(t, "6f1c1b6e-8b7a-4f5e-9a43-0d6f0b3e2a11", id.String())
}

func TestOpenProvider(t *testing.T) {
	ctx := context.Background()

	p, err := openProvider(ctx, config.Config{Provider: config.ProviderMock})
	require.NoError(t, err)
	assert.IsType(t, enrich.MockCollaborator{}, p.Provider)
	assert.Equal(t, localIdentity, p.identity)
	assert.NoError(t, p.Close())

	p, err = openProvider(ctx, config.Config{Provider: config.ProviderRemote, ServerURL: "http://x", Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "tok", p.identity)

	_, err = openProvider(ctx, config.Config{Provider: config.ProviderGemini})
	assert.Error(t, err, "gemini needs an API key")
}
