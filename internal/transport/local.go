package transport

import (
	"context"
	"sync"

	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/matching"
)

// LocalTab is an in-process tab over a parsed document.
// It starts without a receiver, like a page the extension has not reached yet.
type LocalTab struct {
	mu       sync.Mutex
	doc      dom.Document
	matcher  *matching.Matcher
	receiver *Receiver
	injects  int
}

// NewLocalTab creates a tab for doc with no receiver loaded.
func NewLocalTab(doc dom.Document, matcher *matching.Matcher) *LocalTab {
	return &LocalTab{doc: doc, matcher: matcher}
}

// Send delivers msg to the injected receiver.
func (t *LocalTab) Send(ctx context.Context, msg Message) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.receiver == nil {
		return Response{}, ErrReceiverAbsent
	}
	return t.receiver.Handle(msg), nil
}

// Inject loads a receiver. Injecting twice replaces the receiver.
func (t *LocalTab) Inject(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.receiver = NewReceiver(t.doc, t.matcher)
	t.injects++
	return nil
}

// Injections reports how many times a receiver was injected.
func (t *LocalTab) Injections() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.injects
}
