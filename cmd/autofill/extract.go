package main

import (
	"fmt"

	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/observability"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url|file|->",
	Short: "List the fillable fields of a page",
	Long:  "Extract every input, textarea and select of a page with its label, placeholder and surrounding context, printed as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := openPage(ctx, args[0], cfg, matching.New(matching.WithVerbose(cfg.Verbose)))
	if err != nil {
		return err
	}
	defer p.Close()

	svc := autofill.NewService(nil, nil, clientOptions(cfg)...)
	pageCtx, err := svc.Extract(ctx, p.tab)
	if err != nil {
		return fmt.Errorf("failed to extract fields: %w", err)
	}
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintPageFields(&pageCtx)
	}
	return writeJSON(cmd.OutOrStdout(), pageCtx)
}
