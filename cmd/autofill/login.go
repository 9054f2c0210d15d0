package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a form-autofill server and save the token",
	Long: `Exchange an email and password for a bearer token on the server given by
--server and save it to the config file, switching the AI provider to remote.
With --register a new account is created first.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var (
	loginEmail    string
	loginPassword string
	loginRegister bool
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().BoolVar(&loginRegister, "register", false, "Create the account")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	path := "/auth/login"
	if loginRegister {
		path = "/auth/register"
	}
	resp, err := postCredentials(cfg.ServerURL+path, types.LoginRequest{Email: loginEmail, Password: loginPassword})
	if err != nil {
		return err
	}

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	saved := &config.Config{}
	if existing, err := config.LoadConfig(cfgPath); err == nil {
		saved = existing
	}
	saved.Provider = config.ProviderRemote
	saved.ServerURL = cfg.ServerURL
	saved.Token = resp.Token
	if err := config.SaveConfig(cfgPath, saved); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s; token saved to %s\n", resp.User.Email, cfgPath)
	return nil
}

func postCredentials(url string, creds types.LoginRequest) (*types.LoginResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("login failed: %s", e.Error)
		}
		return nil, fmt.Errorf("login failed: %s", strings.TrimSpace(http.StatusText(resp.StatusCode)))
	}

	var out types.LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.Token == "" || out.User == nil {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &out, nil
}
