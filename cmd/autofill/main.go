// Package main provides the autofill command line: fill web forms from a stored
// profile, manage that profile, and run the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autofill",
	Short: "Fill web forms from your profile",
	Long: `autofill extracts the fields of a web form, matches them against a stored
profile and fills them, optionally asking an AI collaborator to complete the
profile from the page and your resume first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	flagStore  string
	flagUserID string
	flagAI     string
	flagAPIKey string
	flagServer string
	flagToken  string
	verbose    bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to JSON config file (default: user config dir)")
	pf.StringVar(&flagStore, "store", "", "Path to the local profile database")
	pf.StringVar(&flagUserID, "user", "", "Profile owner ID in a shared store")
	pf.StringVar(&flagAI, "provider", "", "AI provider: mock, gemini or remote")
	pf.StringVar(&flagAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	pf.StringVar(&flagServer, "server", "", "form-autofill server URL for the remote provider")
	pf.StringVar(&flagToken, "token", "", "Bearer token for the remote provider")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log every field decision")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
