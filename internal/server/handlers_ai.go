package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/resume"
	"github.com/jonathan/form-autofill/internal/types"
)

// handleExtractResume builds a profile from an uploaded resume. Unreadable
// files are reported in the body with success=false rather than as an HTTP error.
func (s *Server) handleExtractResume(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	var req types.ExtractResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.aiTimeout)
	defer cancel()

	profile, err := s.ai.ExtractResume(ctx, types.ResumeFile{
		FileName: req.FileName,
		FileData: req.FileData,
		FileType: req.FileType,
	})
	if err != nil {
		var decodeErr *resume.DecodeError
		if errors.Is(err, enrich.ErrNoResumeText) || errors.As(err, &decodeErr) {
			log.Printf("[AI] unreadable resume %q: %v", req.FileName, err)
			jsonResponse(w, http.StatusOK, types.ExtractResumeResponse{
				Success:       false,
				ExtractedData: types.NewProfile(),
				Error:         enrich.ErrNoResumeText.Error(),
			})
			return
		}
		if !enrich.IsAuthError(err) {
			var collabErr *enrich.CollaboratorError
			if !errors.As(err, &collabErr) {
				err = &enrich.CollaboratorError{Message: "resume extraction failed", Cause: err}
			}
		}
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, types.ExtractResumeResponse{Success: true, ExtractedData: profile})
}

// handleAutoFill overlays AI suggestions onto the submitted profile. When the
// collaborator fails the submitted profile is returned unchanged.
func (s *Server) handleAutoFill(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.AutoFillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.enricher.Enrich(r.Context(), enrich.Request{
		Identity: id.String(),
		Profile:  req.UserData,
		Fields:   req.PageFields,
		Page:     req.PageContext,
		Resume:   req.ResumeData,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, types.AutoFillResponse{Success: true, FilledData: result.Profile})
}
