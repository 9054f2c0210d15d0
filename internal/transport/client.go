package transport

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jonathan/form-autofill/internal/types"
)

// Tab is a page that may or may not have a receiver loaded.
type Tab interface {
	// Send delivers msg to the receiver, or returns ErrReceiverAbsent.
	Send(ctx context.Context, msg Message) (Response, error)
	// Inject loads the receiver into the page.
	Inject(ctx context.Context) error
}

// DefaultSettleDelay is the pause between injecting a receiver and using it.
const DefaultSettleDelay = 100 * time.Millisecond

// Client performs the readiness handshake before each request.
type Client struct {
	tab     Tab
	settle  time.Duration
	verbose bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.settle = d
	}
}

// WithVerboseLogging logs each handshake step.
func WithVerboseLogging(verbose bool) ClientOption {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// NewClient creates a Client for tab.
func NewClient(tab Tab, opts ...ClientOption) *Client {
	c := &Client{tab: tab, settle: DefaultSettleDelay}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure makes sure a receiver is listening. A receiver that answers the probe
// at all is ready. When none is present it is injected and given the settle
// delay; the next real request then decides whether the tab is usable.
func (c *Client) Ensure(ctx context.Context) error {
	_, err := c.tab.Send(ctx, Message{Action: ActionPing})
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrReceiverAbsent) {
		return &UnavailableError{Action: ActionPing, Cause: err}
	}

	if c.verbose {
		log.Printf("[TRANSPORT] receiver absent, injecting")
	}
	if err := c.tab.Inject(ctx); err != nil {
		return &UnavailableError{Action: "inject", Cause: err}
	}

	timer := time.NewTimer(c.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &UnavailableError{Action: "inject", Cause: ctx.Err()}
	case <-timer.C:
	}
	return nil
}

// Extract returns the page context with every fillable field.
func (c *Client) Extract(ctx context.Context) (types.PageContext, error) {
	resp, err := c.request(ctx, Message{Action: ActionExtractFields})
	if err != nil {
		return types.PageContext{}, err
	}
	if resp.Page != nil {
		return *resp.Page, nil
	}
	return types.PageContext{Fields: resp.Fields}, nil
}

// Fill asks the receiver to fill the page from profile.
func (c *Client) Fill(ctx context.Context, profile types.Profile) (types.FillOutcome, error) {
	resp, err := c.request(ctx, Message{Action: ActionFillFields, Data: &profile})
	if err != nil {
		return types.FillOutcome{}, err
	}
	if resp.Outcome == nil {
		return types.FillOutcome{}, nil
	}
	return *resp.Outcome, nil
}

func (c *Client) request(ctx context.Context, msg Message) (Response, error) {
	if err := c.Ensure(ctx); err != nil {
		return Response{}, err
	}

	resp, err := c.tab.Send(ctx, msg)
	if err != nil {
		return Response{}, &UnavailableError{Action: msg.Action, Cause: err}
	}
	if !resp.Success {
		return resp, &RequestError{Action: msg.Action, Message: resp.Error}
	}
	return resp, nil
}
