package enrich

import (
	"context"

	"github.com/jonathan/form-autofill/internal/types"
)

// MockCollaborator is used when AI_PROVIDER=mock. It never changes a profile.
type MockCollaborator struct{}

func (MockCollaborator) Enrich(ctx context.Context, req Request) (map[string]any, error) {
	return map[string]any{}, nil
}

// ExtractResume reads the file so unreadable resumes are still reported, then
// returns an empty profile.
func (MockCollaborator) ExtractResume(ctx context.Context, file types.ResumeFile) (types.Profile, error) {
	text, err := resumeText(file)
	if err != nil {
		return types.Profile{}, err
	}
	if text == "" {
		return types.Profile{}, ErrNoResumeText
	}
	return types.NewProfile(), nil
}
