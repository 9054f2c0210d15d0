package transport

import (
	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/extract"
	"github.com/jonathan/form-autofill/internal/matching"
)

// Receiver answers messages against one document.
type Receiver struct {
	doc     dom.Document
	matcher *matching.Matcher
}

// NewReceiver creates a receiver for doc. A nil matcher uses the default keyword table.
func NewReceiver(doc dom.Document, matcher *matching.Matcher) *Receiver {
	if matcher == nil {
		matcher = matching.New()
	}
	return &Receiver{doc: doc, matcher: matcher}
}

// Handle dispatches one message. Unknown actions are answered unsuccessfully.
func (r *Receiver) Handle(msg Message) Response {
	switch msg.Action {
	case ActionPing:
		return Response{Success: true, Pong: true}

	case ActionExtractFields:
		page := extract.Page(r.doc)
		return Response{Success: true, Fields: page.Fields, Page: &page}

	case ActionFillFields:
		if msg.Data == nil {
			return failure("no profile supplied")
		}
		// Fields are re-extracted so the fill sees the page as it is now.
		fields := extract.Fields(r.doc)
		outcome, err := r.matcher.Fill(r.doc, fields, *msg.Data)
		if err != nil {
			return failure(err.Error())
		}
		return Response{Success: true, Outcome: &outcome}

	default:
		return failure("Unknown action")
	}
}
