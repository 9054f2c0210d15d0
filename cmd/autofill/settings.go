package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/llm"
	"github.com/jonathan/form-autofill/internal/store"
)

// localIdentity authenticates direct (non-remote) collaborator calls made by the CLI.
const localIdentity = "local"

// resolveConfigPath returns --config or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}

// loadSettings merges, lowest precedence first: defaults, the config file, the
// environment and command-line flags.
func loadSettings() (config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return config.Config{}, err
	}

	fileCfg := &config.Config{}
	if loaded, err := config.LoadConfig(path); err == nil {
		fileCfg = loaded
	} else if configPath != "" || !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, err
	}

	cfg := fileCfg.MergeWithDefaults(config.DefaultConfig())
	cfg.ApplyEnv()

	if flagStore != "" {
		cfg.StorePath = flagStore
	}
	if flagUserID != "" {
		cfg.UserID = flagUserID
	}
	if flagAI != "" {
		cfg.Provider = flagAI
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// profileOwner returns the configured user ID, or the local user.
func profileOwner(cfg config.Config) (uuid.UUID, error) {
	if cfg.UserID == "" {
		return store.LocalUserID, nil
	}
	id, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID %q: %w", cfg.UserID, err)
	}
	return id, nil
}

// openLocalStore opens the SQLite profile store.
func openLocalStore(cfg config.Config) (*store.SQLiteStore, error) {
	path := cfg.StorePath
	if path == "" {
		var err error
		if path, err = store.DefaultSQLitePath(); err != nil {
			return nil, err
		}
	}
	return store.OpenSQLite(path)
}

// provider is an AI collaborator plus the identity the CLI presents to it.
type provider struct {
	enrich.Provider
	identity string
	close    func() error
}

func (p *provider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// openProvider builds the configured collaborator.
func openProvider(ctx context.Context, cfg config.Config) (*provider, error) {
	switch cfg.Provider {
	case config.ProviderRemote:
		return &provider{
			Provider: enrich.NewHTTPCollaborator(cfg.ServerURL, cfg.Token),
			identity: cfg.Token,
		}, nil

	case config.ProviderGemini:
		apiKey := cfg.APIKey
		if apiKey == "" {
			return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
		}
		llmCfg := llm.DefaultConfig()
		llmCfg.ApplyModelEnv()
		client, err := llm.NewClient(ctx, llmCfg, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return &provider{
			Provider: enrich.NewGeminiCollaborator(client),
			identity: localIdentity,
			close:    client.Close,
		}, nil

	default:
		return &provider{Provider: enrich.MockCollaborator{}, identity: localIdentity}, nil
	}
}
