package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/form-autofill/internal/llm"
	"github.com/jonathan/form-autofill/internal/prompts"
	"github.com/jonathan/form-autofill/internal/resume"
	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/types"
)

const promptFile = "autofill.json"

// GeminiCollaborator prompts an LLM with the page, profile and resume.
type GeminiCollaborator struct {
	client llm.Client
}

// NewGeminiCollaborator wraps an LLM client.
func NewGeminiCollaborator(client llm.Client) *GeminiCollaborator {
	return &GeminiCollaborator{client: client}
}

// promptField is the part of a descriptor the model sees. Current values are withheld.
type promptField struct {
	Selector    string `json:"selector"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Kind        string `json:"type"`
	Context     string `json:"context,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Enrich asks the model for an overlay covering the page's fields.
func (g *GeminiCollaborator) Enrich(ctx context.Context, req Request) (map[string]any, error) {
	prompt, err := buildSmartFillPrompt(req)
	if err != nil {
		return nil, err
	}

	response, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	return parseOverlay(response)
}

// ExtractResume asks the model for contact attributes found in a resume.
func (g *GeminiCollaborator) ExtractResume(ctx context.Context, file types.ResumeFile) (types.Profile, error) {
	text, err := resumeText(file)
	if err != nil {
		return types.Profile{}, err
	}
	if text == "" {
		return types.Profile{}, ErrNoResumeText
	}
	return ExtractResume(ctx, g.client, text)
}

// ExtractResume builds a profile from resume text alone.
func ExtractResume(ctx context.Context, client llm.Client, text string) (types.Profile, error) {
	prompt := prompts.Format(prompts.MustGet(promptFile, "extract-resume"), map[string]string{
		"Resume": resume.Truncate(text, resume.MaxPromptChars),
	})

	response, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return types.Profile{}, &CollaboratorError{Message: "resume extraction failed", Cause: err}
	}
	raw, err := parseOverlay(response)
	if err != nil {
		return types.Profile{}, &CollaboratorError{Message: "resume extraction failed", Cause: err}
	}
	return Overlay(types.NewProfile(), raw), nil
}

func buildSmartFillPrompt(req Request) (string, error) {
	fields := make([]promptField, len(req.Fields))
	for i, f := range req.Fields {
		fields[i] = promptField{
			Selector:    f.Selector,
			Name:        f.Name,
			ID:          f.ID,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Kind:        f.Kind,
			Context:     f.Context,
			Required:    f.Required,
		}
	}
	fieldsJSON, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal fields: %w", err)
	}
	profileJSON, err := json.MarshalIndent(req.Profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}

	page := types.PageSummary{}
	if req.Page != nil {
		page = *req.Page
	}

	resumeBlock := prompts.MustGet(promptFile, "no-resume")
	if req.Resume != nil {
		text, err := resumeText(*req.Resume)
		if err != nil {
			// An unreadable resume is treated as no resume.
			log.Printf("[AI] ignoring resume %s: %v", req.Resume.FileName, err)
		} else if text != "" {
			resumeBlock = prompts.Format(prompts.MustGet(promptFile, "resume-block"), map[string]string{
				"ResumeText": resume.Truncate(text, resume.MaxPromptChars),
			})
		}
	}

	return prompts.Format(prompts.MustGet(promptFile, "smart-fill"), map[string]string{
		"Title":           orDefault(page.Title, "Unknown"),
		"URL":             orDefault(page.URL, "Unknown"),
		"FormTitle":       orDefault(page.FormTitle, "N/A"),
		"FormDescription": orDefault(page.FormDescription, "N/A"),
		"Fields":          string(fieldsJSON),
		"Resume":          resumeBlock,
		"Profile":         string(profileJSON),
	}), nil
}

func resumeText(file types.ResumeFile) (string, error) {
	return resume.Decode(file.FileData, file.FileType)
}

// parseOverlay validates a model response against the overlay schema and decodes it.
func parseOverlay(response string) (map[string]any, error) {
	payload := []byte(llm.CleanJSONBlock(response))
	if err := schemas.Validate(schemas.Overlay, payload); err != nil {
		return nil, fmt.Errorf("unusable overlay: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode overlay: %w", err)
	}
	return raw, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
