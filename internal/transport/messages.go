// Package transport delivers extract and fill requests to a page-resident
// receiver, injecting the receiver on demand when a tab has none.
package transport

import "github.com/jonathan/form-autofill/internal/types"

// Actions understood by the receiver.
const (
	ActionPing          = "ping"
	ActionExtractFields = "extractFields"
	ActionFillFields    = "fillFields"
)

// Message is a request to the page-resident receiver.
type Message struct {
	Action string         `json:"action"`
	Data   *types.Profile `json:"data,omitempty"`
}

// Response is the receiver's reply.
type Response struct {
	Success bool                    `json:"success"`
	Error   string                  `json:"error,omitempty"`
	Pong    bool                    `json:"pong,omitempty"`
	Fields  []types.FieldDescriptor `json:"fields,omitempty"`
	Page    *types.PageContext      `json:"page,omitempty"`
	Outcome *types.FillOutcome      `json:"outcome,omitempty"`
}

func failure(message string) Response {
	return Response{Success: false, Error: message}
}
