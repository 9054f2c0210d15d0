package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/observability"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill <url|file|->",
	Short: "Fill a form from your profile",
	Long: `Fill every field of a page that matches your stored profile.

With --ai the profile is first completed by the configured AI provider from
the page and your resume; if the provider fails the stored profile is used.
For local files the filled HTML is written to --out (default stdout).`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

var (
	fillUseAI   bool
	fillResume  string
	fillPersist bool
	fillOut     string
	fillReport  bool
)

func init() {
	fillCmd.Flags().BoolVar(&fillUseAI, "ai", false, "Complete the profile with the AI provider before filling")
	fillCmd.Flags().StringVar(&fillResume, "resume", "", "Resume file for --ai (default: the stored resume)")
	fillCmd.Flags().BoolVar(&fillPersist, "save", true, "Save AI-completed values to the profile")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "Where to write the filled HTML for local files")
	fillCmd.Flags().BoolVar(&fillReport, "report", false, "Print the per-field outcome as JSON instead of the HTML")
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	owner, err := profileOwner(cfg)
	if err != nil {
		return err
	}
	st, err := openLocalStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := autofill.Options{UseAI: fillUseAI || cfg.UseAI, Persist: fillPersist}
	var enricher *enrich.Enricher
	if opts.UseAI {
		prov, err := openProvider(ctx, cfg)
		if err != nil {
			return err
		}
		defer prov.Close()
		enricher = enrich.NewEnricher(prov, cfg.Timeout())
		opts.Identity = prov.identity

		if fillResume != "" {
			file, err := loadResumeFile(fillResume)
			if err != nil {
				return err
			}
			opts.Resume = &file
		}
	}

	p, err := openPage(ctx, args[0], cfg, matching.New(matching.WithVerbose(cfg.Verbose)))
	if err != nil {
		return err
	}
	defer p.Close()

	svc := autofill.NewService(st, enricher, clientOptions(cfg)...)
	result, err := svc.Fill(ctx, owner, p.tab, opts)
	if err != nil {
		return err
	}
	if result.CollaboratorErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: AI completion failed, used stored profile: %v\n", result.CollaboratorErr)
	}
	log.Printf("[FILL] %d filled, %d skipped", result.Outcome.Filled, result.Outcome.Skipped)
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintFillOutcome(result.Outcome, result.Enriched)
	}

	if fillReport || p.doc == nil {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	html, err := p.doc.HTML()
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), fillOut, []byte(html))
}

// loadResumeFile reads a resume from disk into the stored-resume shape.
func loadResumeFile(path string) (types.ResumeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeFile{}, fmt.Errorf("failed to read resume: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return types.ResumeFile{}, fmt.Errorf("failed to stat resume: %w", err)
	}
	return types.ResumeFile{
		FileName:   filepath.Base(path),
		FileData:   base64.StdEncoding.EncodeToString(data),
		FileType:   mimetype.Detect(data).String(),
		UploadedAt: info.ModTime().UTC().Format(time.RFC3339),
	}, nil
}
