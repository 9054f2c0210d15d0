package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// cliEnv is an isolated config file and profile store.
type cliEnv struct {
	dir    string
	config string
	store  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, key := range []string{"AI_PROVIDER", "AUTOFILL_TOKEN", "AUTOFILL_STORE", "AUTOFILL_SERVER_URL", "AUTOFILL_USER_ID", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	env := &cliEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.json"),
		store:  filepath.Join(dir, "store.db"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte(`{"settle_delay_ms": 1}`), 0o600))
	return env
}

// run executes the CLI in-process with the environment's config and store.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", e.config, "--store", e.store}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e *cliEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetFlags restores every flag of cmd and its children to its default, since
// command flags are package-level variables shared across runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

const applicationForm = `<html><head><title>Apply</title></head><body>
<form>
  <label for="fn">First name</label><input id="fn" name="first_name">
  <input name="last_name" placeholder="Last name">
  <input name="email" type="email">
  <input name="city">
  <textarea name="why_us"></textarea>
</form></body></html>`
