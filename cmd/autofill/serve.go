package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/llm"
	"github.com/jonathan/form-autofill/internal/server"
	"github.com/jonathan/form-autofill/internal/server/ratelimit"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing registration and login, per-user profiles,
AI resume extraction and auto-fill, and field extraction and filling for HTML
snapshots. Configured from the environment: PORT, DATABASE_URL, JWT_SECRET,
AI_PROVIDER, GEMINI_API_KEY, CORS_ALLOWED_ORIGINS and RATE_LIMIT_*.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort   int
	serveMemory bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep users and profiles in memory instead of PostgreSQL")
	rootCmd.AddCommand(serveCmd)
}

// serverStore is the storage the server needs: profiles plus accounts.
type serverStore interface {
	store.Store
	store.UserStore
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	st, err := openServerStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ai, closeAI, err := serverProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAI()

	srv, err := server.New(cfg, server.Deps{
		Profiles:  st,
		Users:     st,
		AI:        ai,
		JWT:       server.NewJWTService(jwtConfig),
		Passwords: passwordConfig,
		Limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}

func openServerStore(ctx context.Context, cfg *config.ServerConfig) (serverStore, error) {
	if serveMemory {
		log.Printf("[STORE] using in-memory store; data is lost on exit")
		return store.NewMemoryStore(), nil
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required (or use --memory)")
	}

	pg, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return pg, nil
}

// serverProvider builds the collaborator from AI_PROVIDER.
func serverProvider(ctx context.Context, cfg *config.ServerConfig) (enrich.Provider, func(), error) {
	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if llmCfg.Provider == llm.ProviderMock {
		log.Printf("[AI] AI_PROVIDER=mock; auto-fill returns profiles unchanged")
		return enrich.MockCollaborator{}, func() {}, nil
	}

	if cfg.GeminiAPIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return enrich.NewGeminiCollaborator(client), func() { _ = client.Close() }, nil
}
