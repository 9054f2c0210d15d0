package transport

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/extract"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/types"
)

//go:embed receiver.js
var receiverScript string

const probeScript = `!!(window.__formAutofill && window.__formAutofill.version)`

// BrowserOptions configures a headless browser tab.
type BrowserOptions struct {
	// Timeout bounds navigation and the whole lifetime of the tab.
	Timeout time.Duration
	Verbose bool
}

// BrowserTab is a page loaded in headless Chrome.
// Fields are read from a DOM snapshot and writes are pushed to the live page
// through the injected receiver script. Requires Chrome/Chromium on the system.
type BrowserTab struct {
	ctx     context.Context
	cancel  func()
	matcher *matching.Matcher
	verbose bool
}

// OpenBrowserTab starts a headless browser and navigates to url.
func OpenBrowserTab(ctx context.Context, url string, matcher *matching.Matcher, opts BrowserOptions) (*BrowserTab, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if matcher == nil {
		matcher = matching.New()
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	tabCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)

	tab := &BrowserTab{
		ctx: tabCtx,
		cancel: func() {
			cancelTimeout()
			cancelBrowser()
			cancelAlloc()
		},
		matcher: matcher,
		verbose: opts.Verbose,
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		tab.Close()
		return nil, fmt.Errorf("browser navigation failed: %w", err)
	}
	return tab, nil
}

// Close shuts the browser down.
func (b *BrowserTab) Close() {
	b.cancel()
}

// Inject evaluates the receiver script in the page.
func (b *BrowserTab) Inject(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var ok bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(receiverScript, &ok)); err != nil {
		return fmt.Errorf("failed to inject receiver: %w", err)
	}
	if !ok {
		return fmt.Errorf("receiver script did not initialize")
	}
	return nil
}

// Send answers msg when the receiver is loaded in the page.
func (b *BrowserTab) Send(ctx context.Context, msg Message) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	var present bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(probeScript, &present)); err != nil {
		return Response{}, fmt.Errorf("liveness probe failed: %w", err)
	}
	if !present {
		return Response{}, ErrReceiverAbsent
	}

	switch msg.Action {
	case ActionPing:
		return Response{Success: true, Pong: true}, nil

	case ActionExtractFields:
		doc, err := b.snapshot()
		if err != nil {
			return Response{}, err
		}
		page := extract.Page(doc)
		return Response{Success: true, Fields: page.Fields, Page: &page}, nil

	case ActionFillFields:
		if msg.Data == nil {
			return failure("no profile supplied"), nil
		}
		doc, err := b.snapshot()
		if err != nil {
			return Response{}, err
		}
		planned, err := b.matcher.Fill(doc, extract.Fields(doc), *msg.Data)
		if err != nil {
			return failure(err.Error()), nil
		}
		outcome := b.apply(doc, planned)
		return Response{Success: true, Outcome: &outcome}, nil

	default:
		return failure("Unknown action"), nil
	}
}

// snapshot parses the live DOM into a document.
func (b *BrowserTab) snapshot() (*dom.HTMLDocument, error) {
	var html, location string
	err := chromedp.Run(b.ctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}
	if b.verbose {
		log.Printf("[BROWSER] Snapshot of %s: %d bytes", location, len(html))
	}
	return dom.ParseHTMLString(html, location)
}

// apply replays the writes the matcher made on the snapshot against the live page.
// A select keeps the option chosen on the snapshot and, like the snapshot, gets no events.
func (b *BrowserTab) apply(doc *dom.HTMLDocument, planned types.FillOutcome) types.FillOutcome {
	var outcome types.FillOutcome
	for _, f := range planned.Fields {
		if f.Status == types.StatusFilled {
			value, notify := f.Value, true
			if el := doc.Query(f.Selector); el != nil && el.Tag() == "select" {
				value, notify = el.Value(), false
			}

			found, err := b.write(f.Selector, value, notify)
			if err != nil || !found {
				if b.verbose {
					log.Printf("[BROWSER] write to %s failed: found=%t err=%v", f.Selector, found, err)
				}
				f.Status = types.StatusNotFound
			}
		}
		outcome.Add(f)
	}
	return outcome
}

func (b *BrowserTab) write(selector, value string, notify bool) (bool, error) {
	var found bool
	err := chromedp.Run(b.ctx, chromedp.Evaluate(writeScript(selector, value, notify), &found))
	return found, err
}

func writeScript(selector, value string, notify bool) string {
	return fmt.Sprintf("window.__formAutofill.write(%s, %s, %t)", jsString(selector), jsString(value), notify)
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
