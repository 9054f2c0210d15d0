package server

import (
	"context"
	"net/http"

	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/transport"
	"github.com/jonathan/form-autofill/internal/types"
)

// ExtractFieldsRequest is a page snapshot to describe.
type ExtractFieldsRequest struct {
	HTML string `json:"html" validate:"required"`
	URL  string `json:"url" validate:"omitempty,url"`
}

// FillFieldsRequest is a page snapshot to fill. The stored profile is used
// when UserData is omitted.
type FillFieldsRequest struct {
	HTML     string         `json:"html" validate:"required"`
	URL      string         `json:"url" validate:"omitempty,url"`
	UserData *types.Profile `json:"userData,omitempty"`
}

// FillFieldsResponse carries the outcome and the filled page.
type FillFieldsResponse struct {
	Outcome types.FillOutcome `json:"outcome"`
	HTML    string            `json:"html"`
	Events  []dom.Event       `json:"events"`
}

// loadedTab wraps doc in an in-process tab whose receiver is already injected,
// so the readiness probe answers at once and no settle delay is paid.
func (s *Server) loadedTab(ctx context.Context, doc dom.Document) (*transport.LocalTab, error) {
	tab := transport.NewLocalTab(doc, s.matcher)
	if err := tab.Inject(ctx); err != nil {
		return nil, err
	}
	return tab, nil
}

func (s *Server) handleExtractFields(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	var req ExtractFieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := dom.ParseHTMLString(req.HTML, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	tab, err := s.loadedTab(r.Context(), doc)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := s.fills.Extract(r.Context(), tab)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleFillFields(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req FillFieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := dom.ParseHTMLString(req.HTML, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	tab, err := s.loadedTab(r.Context(), doc)
	if err != nil {
		writeError(w, err)
		return
	}

	var outcome types.FillOutcome
	if req.UserData != nil {
		outcome, err = transport.NewClient(tab, s.clientOpts...).Fill(r.Context(), *req.UserData)
	} else {
		var result autofill.Result
		result, err = s.fills.Fill(r.Context(), id, tab, autofill.Options{})
		outcome = result.Outcome
	}
	if err != nil {
		writeError(w, err)
		return
	}

	html, err := doc.HTML()
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, FillFieldsResponse{Outcome: outcome, HTML: html, Events: doc.Events()})
}
