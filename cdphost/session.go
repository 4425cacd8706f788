// Package cdphost backs host.Document with a live Chrome tab over the
// DevTools protocol. It mirrors the teacher's ChromeDPBackend browser
// lifecycle (exec allocator, context, launch flags) but exposes the
// result as a host.Document tree snapshot rather than a ref/selector
// action surface; the only write it sends back to the tab is SetAttr.
package cdphost

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/css"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// LaunchOptions configures the underlying Chrome process, the same knobs
// the teacher's LaunchOptions exposes, trimmed to what a snapshot-only
// session needs.
type LaunchOptions struct {
	Headless       bool
	ExecutablePath string
	UserDataDir    string
}

// Session owns one Chrome tab's lifecycle.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	log         zerolog.Logger
}

// Launch starts a Chrome process and opens one tab.
func Launch(opts LaunchOptions) (*Session, error) {
	return LaunchWithLogger(opts, zerolog.Nop())
}

// LaunchWithLogger is Launch with an explicit logger.
func LaunchWithLogger(opts LaunchOptions, log zerolog.Logger) (*Session, error) {
	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	}
	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Headless)
	}
	if opts.ExecutablePath != "" {
		chromedpOpts = append(chromedpOpts, chromedp.ExecPath(opts.ExecutablePath))
	}
	if opts.UserDataDir != "" {
		chromedpOpts = append(chromedpOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:], chromedpOpts...)...,
	)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx, css.Enable()); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("cdphost: launch: %w", err)
	}

	log.Debug().Bool("headless", opts.Headless).Msg("chrome session launched")

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}, nil
}

// Close tears down the tab and its browser process.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// Navigate loads url, waits for the page to settle, and returns a
// host.Document snapshot of the resulting DOM.
func (s *Session) Navigate(url string) (*Document, error) {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return nil, fmt.Errorf("cdphost: navigate %s: %w", url, err)
	}
	return s.Document()
}

// Document snapshots the current page's full DOM tree — depth -1,
// piercing into same-process iframe documents — into a Document the
// collector can walk without further round trips per node.
func (s *Session) Document() (*Document, error) {
	var root *cdp.Node
	var pageURL string

	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			n, err := dom.GetDocument().WithDepth(-1).WithPierce(true).Do(ctx)
			if err != nil {
				return err
			}
			root = n
			return nil
		}),
		chromedp.Location(&pageURL),
	)
	if err != nil {
		return nil, fmt.Errorf("cdphost: get document: %w", err)
	}

	return newDocument(s.ctx, root, pageURL, s.log), nil
}
