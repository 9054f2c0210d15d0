package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit the stored profile",
}

var profileGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the profile, or one value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileGet,
}

var profileSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Set profile values",
	Long:  "Set one or more profile values. An empty value (key=) removes the key.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProfileSet,
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Merge a JSON or YAML profile into the stored one",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileImport,
}

var profileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the profile as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE:  runProfileExport,
}

var profileHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved profile versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runProfileHistory,
}

var (
	importFormat   string
	exportFormat   string
	profileOut     string
	profileReplace bool
	historyLimit   int
)

func init() {
	profileImportCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: json or yaml (default from file extension)")
	profileImportCmd.Flags().BoolVar(&profileReplace, "replace", false, "Replace the profile instead of merging")
	profileExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: json or yaml")
	profileExportCmd.Flags().StringVarP(&profileOut, "out", "o", "", "Output file (default stdout)")
	profileHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of versions to show (0 for all)")

	profileCmd.AddCommand(profileGetCmd, profileSetCmd, profileImportCmd, profileExportCmd, profileHistoryCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}
	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	profile, err := st.Get(cmd.Context(), owner)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return writeJSON(cmd.OutOrStdout(), profile)
	}

	value, ok := profile.Get(args[0])
	if !ok {
		return fmt.Errorf("profile has no %q", args[0])
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}

	updates, removals, err := parseAssignments(args)
	if err != nil {
		return err
	}

	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	profile, err := st.Get(cmd.Context(), owner)
	if err != nil {
		return err
	}
	profile = profile.Merge(updates)
	for _, key := range removals {
		profile.Delete(key)
	}
	if err := st.Set(cmd.Context(), owner, profile); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), profile)
}

// parseAssignments splits key=value arguments. Empty values mark keys for removal.
func parseAssignments(args []string) (types.Profile, []string, error) {
	updates := types.NewProfile()
	var removals []string
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return types.Profile{}, nil, fmt.Errorf("invalid assignment %q (want key=value)", arg)
		}
		if value == "" {
			removals = append(removals, key)
			continue
		}
		updates.Set(key, value)
	}
	return updates, removals, nil
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	format := importFormat
	if format == "" {
		format = formatFromPath(args[0])
	}
	imported, err := decodeProfile(data, format)
	if err != nil {
		return err
	}

	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if profileReplace {
		if err := st.Set(cmd.Context(), owner, imported); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), imported)
	}
	merged, err := st.Patch(cmd.Context(), owner, imported)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), merged)
}

func runProfileExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}
	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	profile, err := st.Get(cmd.Context(), owner)
	if err != nil {
		return err
	}
	data, err := encodeProfile(profile, exportFormat)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), profileOut, data)
}

func runProfileHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}
	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.Versions(cmd.Context(), owner)
	if err != nil {
		return err
	}
	if historyLimit > 0 && len(versions) > historyLimit {
		versions = versions[:historyLimit]
	}
	return writeJSON(cmd.OutOrStdout(), versions)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// decodeProfile parses data as JSON or YAML and checks it against the profile schema.
func decodeProfile(data []byte, format string) (types.Profile, error) {
	var profile types.Profile
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return types.Profile{}, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &profile); err != nil {
			return types.Profile{}, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	default:
		return types.Profile{}, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}

	canonical, err := json.Marshal(profile)
	if err != nil {
		return types.Profile{}, err
	}
	if err := schemas.Validate(schemas.Profile, canonical); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

func encodeProfile(profile types.Profile, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(profile)
	case "json":
		data, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
