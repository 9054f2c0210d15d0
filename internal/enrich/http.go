package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/form-autofill/internal/types"
)

// HTTPCollaborator calls a remote form-autofill server's AI endpoints.
type HTTPCollaborator struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPCollaborator creates a collaborator for the server at baseURL,
// authenticating with a bearer token.
func NewHTTPCollaborator(baseURL, token string) *HTTPCollaborator {
	return &HTTPCollaborator{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// Enrich posts the request to /ai/auto-fill and returns the filled profile.
func (h *HTTPCollaborator) Enrich(ctx context.Context, req Request) (map[string]any, error) {
	body := types.AutoFillRequest{
		UserData:    req.Profile,
		PageFields:  req.Fields,
		PageContext: req.Page,
		ResumeData:  req.Resume,
	}
	if body.PageFields == nil {
		body.PageFields = []types.FieldDescriptor{}
	}

	var resp struct {
		Success    bool            `json:"success"`
		FilledData json.RawMessage `json:"filledData"`
		Error      string          `json:"error"`
	}
	if err := h.post(ctx, "/ai/auto-fill", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("auto-fill failed: %s", resp.Error)
	}

	raw := map[string]any{}
	if len(resp.FilledData) > 0 && string(resp.FilledData) != "null" {
		if err := json.Unmarshal(resp.FilledData, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode filledData: %w", err)
		}
	}
	return raw, nil
}

// ExtractResume posts the file to /ai/extract-resume.
func (h *HTTPCollaborator) ExtractResume(ctx context.Context, file types.ResumeFile) (types.Profile, error) {
	body := types.ExtractResumeRequest{FileName: file.FileName, FileData: file.FileData, FileType: file.FileType}

	var resp types.ExtractResumeResponse
	if err := h.post(ctx, "/ai/extract-resume", body, &resp); err != nil {
		if IsAuthError(err) {
			return types.Profile{}, err
		}
		return types.Profile{}, &CollaboratorError{Message: "resume extraction failed", Cause: err}
	}
	if !resp.Success {
		return types.Profile{}, &CollaboratorError{Message: resp.Error}
	}
	return resp.ExtractedData, nil
}

func (h *HTTPCollaborator) post(ctx context.Context, path string, body, out any) error {
	if h.token == "" {
		return &AuthError{Message: "no access token; run `autofill login` first"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: serverMessage(data, "token rejected")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, serverMessage(data, http.StatusText(resp.StatusCode)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// serverMessage pulls the message out of an error body, falling back when there is none.
func serverMessage(body []byte, fallback string) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}
