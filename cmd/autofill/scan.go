package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url|file>...",
	Short: "Extract fields from many pages in parallel",
	Long: `Extract the fields of several independent pages concurrently and report,
for each page, how many fields the stored profile would fill.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

var (
	scanConcurrency int
	scanFailFast    bool
)

func init() {
	scanCmd.Flags().IntVarP(&scanConcurrency, "concurrency", "c", 0, "Pages processed at once (default from config)")
	scanCmd.Flags().BoolVar(&scanFailFast, "fail-fast", false, "Stop at the first page that cannot be read")
	rootCmd.AddCommand(scanCmd)
}

// ScanResult summarises one page.
type ScanResult struct {
	Target    string              `json:"target"`
	Title     string              `json:"title,omitempty"`
	Fields    int                 `json:"fields"`
	Matchable int                 `json:"matchable"`
	Matches   []types.MatchResult `json:"matches,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if scanConcurrency > 0 {
		cfg.Concurrency = scanConcurrency
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
		return fmt.Errorf("failed to load profile: %w", err)
	}

	results, err := scanPages(cmd.Context(), args, cfg, profile, scanFailFast)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), results)
}

// scanPages extracts every target with at most cfg.Concurrency pages open at
// once. Results keep the order of targets. Unless failFast is set a page that
// cannot be read is reported in its result instead of aborting the scan.
func scanPages(ctx context.Context, targets []string, cfg config.Config, profile types.Profile, failFast bool) ([]ScanResult, error) {
	results := make([]ScanResult, len(targets))
	matcher := matching.New()
	svc := autofill.NewService(nil, nil, clientOptions(cfg)...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Concurrency))

	for i, target := range targets {
		g.Go(func() error {
			res, err := scanPage(gctx, svc, matcher, target, cfg, profile)
			if err != nil {
				if failFast {
					return fmt.Errorf("%s: %w", target, err)
				}
				log.Printf("[SCAN] %s: %v", target, err)
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanPage(ctx context.Context, svc *autofill.Service, matcher *matching.Matcher, target string, cfg config.Config, profile types.Profile) (ScanResult, error) {
	res := ScanResult{Target: target}

	p, err := openPage(ctx, target, cfg, matcher)
	if err != nil {
		return res, err
	}
	defer p.Close()

	pageCtx, err := svc.Extract(ctx, p.tab)
	if err != nil {
		return res, err
	}

	res.Title = pageCtx.Title
	res.Fields = len(pageCtx.Fields)
	for _, field := range pageCtx.Fields {
		m := matcher.Match(field, profile)
		if m.Matched {
			res.Matchable++
			res.Matches = append(res.Matches, m)
		}
	}
	return res, nil
}
