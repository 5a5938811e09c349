// internal/render/dynamic/session.go
package dynamic

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/config"
)

// Session is a browser context with an allocator of its own. Concurrent jobs
// each hold one so cookies and page state never leak between them, unlike
// pooled contexts which are reused.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// SessionOptions configures a dedicated browser session
type SessionOptions struct {
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
}

// NewSession launches a dedicated browser and warms it up
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOptions(opts.Headless, opts.UserAgent, opts.Proxy, opts.ChromePath)...,
	)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	log.Debug().Bool("headless", opts.Headless).Msg("Browser session started")

	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// Ctx returns the session's browser context
func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Close shuts the session's browser down
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
	log.Debug().Msg("Browser session closed")
}
