package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/form-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCollaborator_Enrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/auto-fill", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body types.AutoFillRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.PageFields, 1)
		assert.Equal(t, "Apply", body.PageContext.Title)

		filled := body.UserData.Clone()
		filled.Set("city", "Reno")
		_ = json.NewEncoder(w).Encode(types.AutoFillResponse{Success: true, FilledData: filled})
	}))
	defer srv.Close()

	h := NewHTTPCollaborator(srv.URL+"/", "tok")
	raw, err := h.Enrich(context.Background(), Request{
		Identity: "tok",
		Profile:  types.NewProfile("firstName", "Ada"),
		Fields:   []types.FieldDescriptor{{Kind: "text", Name: "city", Selector: `[name="city"]`}},
		Page:     &types.PageSummary{Title: "Apply"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Reno", raw["city"])
	assert.Equal(t, "Ada", raw["firstName"])
}

func TestHTTPCollaborator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid token"}`, true},
		{"server error", http.StatusBadGateway, `{"error":"upstream"}`, false},
		{"not successful", http.StatusOK, `{"success":false,"error":"nope"}`, false},
		{"garbage", http.StatusOK, `<html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPCollaborator(srv.URL, "tok").Enrich(context.Background(), Request{Identity: "tok"})
			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, IsAuthError(err))
		})
	}
}

func TestHTTPCollaborator_NoToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewHTTPCollaborator(srv.URL, "").Enrich(context.Background(), Request{Identity: "x"})
	assert.True(t, IsAuthError(err))
	assert.False(t, called)
}

func TestHTTPCollaborator_ExtractResume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/extract-resume", r.URL.Path)
		var body types.ExtractResumeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.FileName == "empty.pdf" {
			_ = json.NewEncoder(w).Encode(types.ExtractResumeResponse{Error: ErrNoResumeText.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(types.ExtractResumeResponse{
			Success:       true,
			ExtractedData: types.NewProfile("email", "ada@example.com"),
		})
	}))
	defer srv.Close()

	h := NewHTTPCollaborator(srv.URL, "tok")
	p, err := h.ExtractResume(context.Background(), types.ResumeFile{FileName: "cv.txt", FileData: "YQ=="})
	require.NoError(t, err)
	email, _ := p.String("email")
	assert.Equal(t, "ada@example.com", email)

	_, err = h.ExtractResume(context.Background(), types.ResumeFile{FileName: "empty.pdf", FileData: "YQ=="})
	var collabErr *CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Contains(t, collabErr.Error(), "could not extract text")
}
