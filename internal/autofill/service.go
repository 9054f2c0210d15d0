// Package autofill runs the full fill flow: load the profile, reach the page,
// optionally enrich the profile, then fill.
package autofill

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/transport"
	"github.com/jonathan/form-autofill/internal/types"
)

// ErrAINotConfigured is returned when enrichment is requested without a collaborator.
var ErrAINotConfigured = errors.New("AI enrichment is not configured")

// Options controls one fill.
type Options struct {
	UseAI bool
	// Identity is passed to the collaborator; required when UseAI is set.
	Identity string
	// Resume overrides the stored resume for this fill.
	Resume *types.ResumeFile
	// Persist writes an enriched profile back to the store.
	Persist bool
}

// Result is the outcome of one fill.
type Result struct {
	Outcome types.FillOutcome `json:"outcome"`
	// Profile is the profile the page was filled from.
	Profile  types.Profile `json:"profile"`
	Enriched bool          `json:"enriched"`
	// CollaboratorErr is the recovered enrichment failure, if any.
	CollaboratorErr error `json:"-"`
}

// Service wires a profile store, an optional enricher and the page transport.
type Service struct {
	store      store.Store
	enricher   *enrich.Enricher
	clientOpts []transport.ClientOption
}

// NewService creates a Service. enricher may be nil when AI is disabled.
func NewService(s store.Store, enricher *enrich.Enricher, clientOpts ...transport.ClientOption) *Service {
	return &Service{store: s, enricher: enricher, clientOpts: clientOpts}
}

// Extract returns the page context of tab.
func (s *Service) Extract(ctx context.Context, tab transport.Tab) (types.PageContext, error) {
	return transport.NewClient(tab, s.clientOpts...).Extract(ctx)
}

// Fill fills tab from the user's profile. Errors are returned only for the
// store, the transport and missing authentication; a failed enrichment falls
// back to the stored profile and is reported in Result.CollaboratorErr.
func (s *Service) Fill(ctx context.Context, userID uuid.UUID, tab transport.Tab, opts Options) (Result, error) {
	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load profile: %w", err)
	}

	client := transport.NewClient(tab, s.clientOpts...)
	result := Result{Profile: profile}

	if opts.UseAI {
		if s.enricher == nil {
			return Result{}, ErrAINotConfigured
		}
		page, err := client.Extract(ctx)
		if err != nil {
			return Result{}, err
		}

		resumeFile, err := s.resume(ctx, userID, opts.Resume)
		if err != nil {
			return Result{}, err
		}

		enriched, err := s.enricher.Enrich(ctx, enrich.Request{
			Identity: opts.Identity,
			Profile:  profile,
			Fields:   page.Fields,
			Page:     page.Summary(),
			Resume:   resumeFile,
		})
		if err != nil {
			return Result{}, err
		}
		result.Profile = enriched.Profile
		result.Enriched = enriched.Changed
		result.CollaboratorErr = enriched.Err

		if enriched.Changed && opts.Persist {
			if _, err := s.store.Patch(ctx, userID, enriched.Profile); err != nil {
				return Result{}, fmt.Errorf("failed to save enriched profile: %w", err)
			}
			log.Printf("[FILL] saved enriched profile for %s", userID)
		}
	}

	outcome, err := client.Fill(ctx, result.Profile)
	if err != nil {
		return Result{}, err
	}
	result.Outcome = outcome
	return result, nil
}

func (s *Service) resume(ctx context.Context, userID uuid.UUID, override *types.ResumeFile) (*types.ResumeFile, error) {
	if override != nil {
		return override, nil
	}
	rs, ok := s.store.(store.ResumeStore)
	if !ok {
		return nil, nil
	}
	file, err := rs.GetResume(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	return file, nil
}
