package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/transport"
)

// page is an opened target: a live browser tab for URLs, or a parsed document
// for local HTML files.
type page struct {
	tab transport.Tab
	// doc is set for local files so the filled HTML can be written out.
	doc   *dom.HTMLDocument
	close func()
}

func (p *page) Close() {
	if p.close != nil {
		p.close()
	}
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// openPage opens target, which is an http(s) URL, a local HTML file or "-" for stdin.
func openPage(ctx context.Context, target string, cfg config.Config, matcher *matching.Matcher) (*page, error) {
	if isRemote(target) {
		tab, err := transport.OpenBrowserTab(ctx, target, matcher, transport.BrowserOptions{
			Timeout: cfg.Timeout(),
			Verbose: cfg.Verbose,
		})
		if err != nil {
			return nil, err
		}
		return &page{tab: tab, close: tab.Close}, nil
	}

	doc, err := readDocument(target)
	if err != nil {
		return nil, err
	}
	return &page{tab: transport.NewLocalTab(doc, matcher), doc: doc}, nil
}

func readDocument(target string) (*dom.HTMLDocument, error) {
	var r io.Reader
	pageURL := ""
	if target == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", target, err)
		}
		defer f.Close()
		r = f
		if abs, err := filepath.Abs(target); err == nil {
			pageURL = "file://" + filepath.ToSlash(abs)
		}
	}
	return dom.ParseHTML(r, pageURL)
}

// clientOptions returns the transport settings from cfg.
func clientOptions(cfg config.Config) []transport.ClientOption {
	return []transport.ClientOption{
		transport.WithSettleDelay(cfg.SettleDelay()),
		transport.WithVerboseLogging(cfg.Verbose),
	}
}
