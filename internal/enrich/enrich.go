// Package enrich asks an AI collaborator for a best-effort profile overlay and
// applies it without ever losing the caller's existing data.
package enrich

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jonathan/form-autofill/internal/types"
)

// Request is everything the collaborator may use to improve a profile.
type Request struct {
	// Identity is the authenticated caller. An empty identity is rejected before any call.
	Identity string
	Profile  types.Profile
	Fields   []types.FieldDescriptor
	Page     *types.PageSummary
	Resume   *types.ResumeFile
}

// Collaborator returns a raw overlay: any JSON object, of which only the
// overlay attributes with non-empty string values are used.
type Collaborator interface {
	Enrich(ctx context.Context, req Request) (map[string]any, error)
}

// ResumeExtractor builds a profile from a resume file alone.
type ResumeExtractor interface {
	ExtractResume(ctx context.Context, file types.ResumeFile) (types.Profile, error)
}

// Provider is a collaborator that can also read resumes.
type Provider interface {
	Collaborator
	ResumeExtractor
}

// Result is the outcome of an enrichment attempt.
type Result struct {
	Profile types.Profile
	// Changed reports whether Profile differs from the request's profile.
	Changed bool
	// Err holds the recovered collaborator failure, if any. Profile is then the
	// unmodified input.
	Err error
}

// Enricher applies the fallback policy around a Collaborator.
type Enricher struct {
	collaborator Collaborator
	timeout      time.Duration
}

// DefaultTimeout bounds one collaborator call.
const DefaultTimeout = 60 * time.Second

// NewEnricher creates an Enricher. A zero timeout disables the deadline.
func NewEnricher(c Collaborator, timeout time.Duration) *Enricher {
	return &Enricher{collaborator: c, timeout: timeout}
}

// Enrich returns the overlaid profile. Collaborator failures are recovered by
// returning a copy of the profile as it was before the call; the only error
// returned is an AuthError.
func (e *Enricher) Enrich(ctx context.Context, req Request) (Result, error) {
	before := req.Profile.Clone()
	if strings.TrimSpace(req.Identity) == "" {
		return Result{Profile: before}, &AuthError{Message: "no caller identity"}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req.Profile = req.Profile.Clone()
	raw, err := e.collaborator.Enrich(ctx, req)
	if err != nil {
		if IsAuthError(err) {
			return Result{Profile: before}, err
		}
		log.Printf("[AI] collaborator failed, keeping profile: %v", err)
		return Result{Profile: before, Err: &CollaboratorError{Message: "enrichment failed", Cause: err}}, nil
	}

	enriched := Overlay(before, raw)
	return Result{Profile: enriched, Changed: !enriched.Equal(before)}, nil
}

// Overlay copies base and writes every overlay attribute that raw carries as a
// string that is non-empty after trimming. Other keys and value types are ignored.
// When the result has no location but has a city or state, location becomes
// the non-empty parts of city and state joined by ", ".
func Overlay(base types.Profile, raw map[string]any) types.Profile {
	out := base.Clone()
	for _, attr := range types.OverlayAttributes {
		s, ok := raw[attr].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out.Set(attr, s)
		}
	}

	if location, _ := out.String(types.AttrLocation); location == "" {
		var parts []string
		for _, attr := range []string{types.AttrCity, types.AttrState} {
			if v, _ := out.String(attr); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out.Set(types.AttrLocation, strings.Join(parts, ", "))
		}
	}
	return out
}
