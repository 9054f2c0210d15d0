package main

import (
	"fmt"
	"log"

	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage the stored resume",
}

var resumeExtractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Save a resume and fill the profile from it",
	Long: `Store a resume (PDF, text, Markdown or HTML) for later AI fills and ask the
configured AI provider for the contact details it contains. Extracted values
are merged into the profile unless --dry-run is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runResumeExtract,
}

var resumeDryRun bool

func init() {
	resumeExtractCmd.Flags().BoolVar(&resumeDryRun, "dry-run", false, "Print the extracted values without saving anything")
	resumeCmd.AddCommand(resumeExtractCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runResumeExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}
	file, err := loadResumeFile(args[0])
	if err != nil {
		return err
	}

	prov, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer prov.Close()

	extracted, err := prov.ExtractResume(ctx, file)
	if err != nil {
		if enrich.IsAuthError(err) {
			return fmt.Errorf("%w (run `autofill login` or set AUTOFILL_TOKEN)", err)
		}
		return fmt.Errorf("failed to extract resume: %w", err)
	}
	if resumeDryRun {
		return writeJSON(cmd.OutOrStdout(), extracted)
	}

	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveResume(ctx, owner, file); err != nil {
		return err
	}
	merged, err := st.Patch(ctx, owner, extracted)
	if err != nil {
		return err
	}
	log.Printf("[STORE] saved resume %s and %d extracted values", file.FileName, extracted.Len())
	return writeJSON(cmd.OutOrStdout(), merged)
}
