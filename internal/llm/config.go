// Package llm wraps the language-model provider used by the enrichment collaborator.
package llm

import (
	"fmt"
	"os"
	"strings"
)

// ModelTier selects a model by how much reasoning a prompt needs.
type ModelTier string

const (
	// TierLite suits plain extraction such as pulling contact details from a resume.
	TierLite ModelTier = "lite"
	// TierStandard suits combining resume, page context and an existing profile.
	TierStandard ModelTier = "standard"
)

// Provider names an LLM backend.
type Provider string

const (
	// ProviderGemini calls Google Gemini.
	ProviderGemini Provider = "gemini"
	// ProviderMock makes no remote calls; collaborators echo the input profile.
	ProviderMock Provider = "mock"
)

// Config holds provider and generation settings.
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:     0.2,
		MaxOutputTokens: 2000,
	}
}

// ConfigFromEnv reads AI_PROVIDER (gemini or mock, default mock) and the optional
// GEMINI_MODEL_LITE / GEMINI_MODEL_STANDARD overrides.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	switch provider := Provider(strings.ToLower(os.Getenv("AI_PROVIDER"))); provider {
	case "", ProviderMock:
		cfg.Provider = ProviderMock
	case ProviderGemini:
		cfg.Provider = ProviderGemini
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q (want gemini or mock)", provider)
	}

	cfg.ApplyModelEnv()
	return cfg, nil
}

// ApplyModelEnv applies the GEMINI_MODEL_LITE and GEMINI_MODEL_STANDARD overrides.
func (c *Config) ApplyModelEnv() {
	if model := os.Getenv("GEMINI_MODEL_LITE"); model != "" {
		c.Models[TierLite] = model
	}
	if model := os.Getenv("GEMINI_MODEL_STANDARD"); model != "" {
		c.Models[TierStandard] = model
	}
}

// GetModel returns the model for tier, falling back to the standard then lite model.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return c.Models[TierLite]
}
