package config

import "fmt"

// ServerConfig configures `autofill serve`.
type ServerConfig struct {
	Port           int
	DatabaseURL    string
	AllowedOrigins []string
	GeminiAPIKey   string
}

// NewServerConfig reads PORT (default 8787), DATABASE_URL, CORS_ALLOWED_ORIGINS
// (comma-separated, default "*") and GEMINI_API_KEY.
func NewServerConfig() (*ServerConfig, error) {
	port, err := envInt("PORT", 8787)
	if err != nil {
		return nil, err
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}

	origins := envList("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &ServerConfig{
		Port:           port,
		DatabaseURL:    envString("DATABASE_URL", ""),
		AllowedOrigins: origins,
		GeminiAPIKey:   envString("GEMINI_API_KEY", ""),
	}, nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
