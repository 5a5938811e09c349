// internal/render/dynamic/browser_pool.go
package dynamic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/config"
	"github.com/court-tools/rankpull/internal/render"
)

// BrowserPool manages a pool of reusable Chrome browser contexts for
// sequential page pulls within one job. Contexts keep state between uses, so
// concurrent jobs must use dedicated Sessions instead of sharing a pool.
type BrowserPool struct {
	size        int
	contexts    chan *BrowserContext
	allocCtx    context.Context
	allocCancel context.CancelFunc
	mu          sync.Mutex
	closed      bool
}

// BrowserContext wraps a chromedp context with its cancel function
type BrowserContext struct {
	Ctx    context.Context
	Cancel context.CancelFunc
}

// BrowserPoolOptions configures the browser pool
type BrowserPoolOptions struct {
	Size       int
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
}

// NewBrowserPool creates a pool of pre-warmed browser contexts
func NewBrowserPool(opts BrowserPoolOptions) (*BrowserPool, error) {
	if opts.Size <= 0 {
		opts.Size = config.DefaultBrowserPoolSize
	}
	if opts.Size > 10 {
		opts.Size = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}

	log.Debug().Int("size", opts.Size).Msg("Creating browser pool")

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOptions(opts.Headless, opts.UserAgent, opts.Proxy, opts.ChromePath)...,
	)

	pool := &BrowserPool{
		size:        opts.Size,
		contexts:    make(chan *BrowserContext, opts.Size),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}

	for i := 0; i < opts.Size; i++ {
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Warm up the context so the first real navigation is fast
		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			browserCancel()
			pool.Close()
			return nil, fmt.Errorf("failed to warm up browser context %d: %w", i, err)
		}

		pool.contexts <- &BrowserContext{
			Ctx:    browserCtx,
			Cancel: browserCancel,
		}

		log.Debug().Int("context_id", i).Msg("Browser context initialized")
	}

	log.Info().Int("pool_size", opts.Size).Msg("Browser pool ready")

	return pool, nil
}

// Acquire gets a browser context from the pool, blocking up to timeout when
// none is available.
func (bp *BrowserPool) Acquire(timeout time.Duration) (*BrowserContext, error) {
	if timeout > 0 {
		select {
		case ctx := <-bp.contexts:
			return bp.checkout(ctx)
		case <-time.After(timeout):
			return nil, fmt.Errorf("timeout waiting for available browser context")
		}
	}

	return bp.checkout(<-bp.contexts)
}

// checkout verifies the pool is still open for a context taken off the channel
func (bp *BrowserPool) checkout(ctx *BrowserContext) (*BrowserContext, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		ctx.Cancel()
		return nil, render.ErrPoolClosed
	}
	log.Debug().Msg("Browser context acquired from pool")
	return ctx, nil
}

// Release returns a browser context to the pool
func (bp *BrowserPool) Release(ctx *BrowserContext) {
	bp.mu.Lock()
	if bp.closed {
		ctx.Cancel()
		bp.mu.Unlock()
		return
	}
	bp.mu.Unlock()

	// Best-effort reset to limit state carryover between uses
	chromedp.Run(ctx.Ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		chromedp.Navigate("about:blank").Do(ctx)
		return nil
	}))

	select {
	case bp.contexts <- ctx:
		log.Debug().Msg("Browser context released to pool")
	default:
		ctx.Cancel()
		log.Warn().Msg("Browser pool full, discarding context")
	}
}

// Close shuts down all browser contexts and the allocator
func (bp *BrowserPool) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	bp.closed = true

	log.Debug().Msg("Closing browser pool")

	close(bp.contexts)
	for ctx := range bp.contexts {
		ctx.Cancel()
	}
	bp.allocCancel()

	log.Info().Msg("Browser pool closed")

	return nil
}

// Size returns the pool size
func (bp *BrowserPool) Size() int {
	return bp.size
}

// Available returns the number of idle contexts in the pool
func (bp *BrowserPool) Available() int {
	return len(bp.contexts)
}
