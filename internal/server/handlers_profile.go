package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/server/middleware"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/types"
)

// ProfileRequest carries a whole profile (PUT) or an overlay (PATCH).
type ProfileRequest struct {
	Data json.RawMessage `json:"data" validate:"required"`
}

// ProfileResponse is returned by GET /profile.
type ProfileResponse struct {
	SchemaVersion int           `json:"schema_version"`
	Data          types.Profile `json:"data"`
}

// ProfileWriteResponse is returned by PUT and PATCH /profile.
type ProfileWriteResponse struct {
	OK   bool          `json:"ok"`
	Data types.Profile `json:"data"`
}

// userID returns the authenticated caller, writing a 401 when absent.
func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

// readProfile decodes a ProfileRequest and checks its data against the profile schema.
func readProfile(w http.ResponseWriter, r *http.Request) (types.Profile, error) {
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return types.Profile{}, err
	}
	if err := schemas.Validate(schemas.Profile, req.Data); err != nil {
		return types.Profile{}, err
	}
	var profile types.Profile
	if err := json.Unmarshal(req.Data, &profile); err != nil {
		return types.Profile{}, &ErrValidation{Field: "data", Message: err.Error()}
	}
	return profile, nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	profile, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to load profile: %w", err))
		return
	}
	jsonResponse(w, http.StatusOK, ProfileResponse{SchemaVersion: store.SchemaVersion, Data: profile})
}

// handlePatchProfile merges the overlay into the stored profile and snapshots the result.
func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	overlay, err := readProfile(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	merged, err := s.profiles.Patch(r.Context(), id, overlay)
	if err != nil {
		writeError(w, fmt.Errorf("failed to patch profile: %w", err))
		return
	}
	jsonResponse(w, http.StatusOK, ProfileWriteResponse{OK: true, Data: merged})
}

// handlePutProfile replaces the stored profile.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	profile, err := readProfile(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.profiles.Set(r.Context(), id, profile); err != nil {
		writeError(w, fmt.Errorf("failed to save profile: %w", err))
		return
	}
	jsonResponse(w, http.StatusOK, ProfileWriteResponse{OK: true, Data: profile})
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	versions, err := s.profiles.Versions(r.Context(), id)
	if err != nil {
		writeError(w, fmt.Errorf("failed to list versions: %w", err))
		return
	}
	if versions == nil {
		versions = []store.Version{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"versions": versions})
}
