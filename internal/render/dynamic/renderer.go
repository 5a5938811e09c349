// internal/render/dynamic/renderer.go
package dynamic

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/auth"
	"github.com/court-tools/rankpull/internal/cache"
	"github.com/court-tools/rankpull/internal/config"
	"github.com/court-tools/rankpull/internal/ratelimit"
	"github.com/court-tools/rankpull/internal/render"
	"github.com/court-tools/rankpull/pkg/models"
)

// Renderer drives headless Chrome for pages that assemble their tables in
// script. After navigation it waits for a table element and then lets the
// page settle, because tournament ranking widgets mount well after the
// initial document load.
type Renderer struct {
	cache      cache.Cache
	limiter    ratelimit.RateLimiter
	pool       *BrowserPool
	session    *Session
	headless   bool
	tableWait  time.Duration
	settle     time.Duration
	timeout    time.Duration
	userAgent  string
	chromePath string
	mu         sync.Mutex
}

// Options configures a Renderer. Exactly one of Pool or Session is normally
// set; with neither, every fetch launches a throwaway browser.
type Options struct {
	Cache      cache.Cache
	Limiter    ratelimit.RateLimiter
	Pool       *BrowserPool
	Session    *Session
	Headless   bool
	TableWait  time.Duration
	Settle     time.Duration
	Timeout    time.Duration
	UserAgent  string
	ChromePath string
}

// New creates a browser Renderer with dependency injection
func New(opts Options) *Renderer {
	if opts.TableWait <= 0 {
		opts.TableWait = config.DefaultTableWaitTimeout
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultHTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	return &Renderer{
		cache:      opts.Cache,
		limiter:    opts.Limiter,
		pool:       opts.Pool,
		session:    opts.Session,
		headless:   opts.Headless,
		tableWait:  opts.TableWait,
		settle:     opts.Settle,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		chromePath: opts.ChromePath,
	}
}

// Name returns the name of this renderer
func (r *Renderer) Name() string {
	return "spa"
}

// SetPool swaps the browser pool used by the renderer (thread-safe)
func (r *Renderer) SetPool(pool *BrowserPool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool = pool
}

func (r *Renderer) currentPool() *BrowserPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool
}

// Fetch renders the page in a browser context and returns the settled markup
func (r *Renderer) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("renderer", r.Name()).
		Msg("Starting fetch")

	cacheKey := r.Name() + ":" + opts.URL
	if r.cache != nil && !opts.NoCache {
		if cached, ok := r.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}

	if r.limiter != nil {
		waitCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := r.limiter.Wait(waitCtx, opts.URL)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel, release, err := r.browserContext(timeout, opts.Proxy)
	if err != nil {
		return nil, err
	}
	defer release()
	defer cancel()

	data := &models.PageData{
		URL:       opts.URL,
		FetchedAt: time.Now(),
		Headers:   make(map[string]string),
	}

	var htmlContent, title string
	var statusCode int64
	var netMu sync.Mutex

	// Capture the document response for status and headers. Prefer an exact
	// URL match; redirects land on the first document response otherwise.
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		netMu.Lock()
		defer netMu.Unlock()
		if resp.Response.URL == opts.URL || (resp.Type == network.ResourceTypeDocument && statusCode == 0) {
			statusCode = resp.Response.Status
			for key, value := range resp.Response.Headers {
				if s, ok := value.(string); ok {
					data.Headers[key] = s
				}
			}
		}
	})

	tasks := []chromedp.Action{network.Enable()}
	if opts.SessionName != "" {
		tasks = append(tasks, r.sessionCookies(opts.SessionName, opts.URL)...)
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		r.waitForTable(),
		r.settleDelay(opts.SettleSeconds),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)

	navigateStart := time.Now()
	err = chromedp.Run(ctx, tasks...)
	log.Debug().Dur("elapsed_ms", time.Since(navigateStart)).Msg("chromedp.Run completed")

	if err != nil {
		code := render.CodeBrowser
		if errors.Is(err, context.DeadlineExceeded) {
			code = render.CodeTimeout
		}
		return nil, render.NewRenderError(code, "browser render failed", err)
	}

	netMu.Lock()
	data.StatusCode = int(statusCode)
	netMu.Unlock()
	if data.StatusCode == 0 {
		// Navigation succeeded but no document response was observed
		log.Debug().Str("url", opts.URL).Msg("No document response captured, assuming 200")
		data.StatusCode = 200
	}

	data.Title = title
	data.HTML = htmlContent
	data.TableCount = strings.Count(htmlContent, "<table")
	data.ResponseTime = time.Since(start).Milliseconds()

	if r.cache != nil && data.OK() {
		r.cache.Set(cacheKey, data, 0)
	}

	log.Info().
		Str("url", opts.URL).
		Int("status", data.StatusCode).
		Int("tables", data.TableCount).
		Int64("response_time_ms", data.ResponseTime).
		Msg("Fetch completed")

	return data, nil
}

// browserContext picks the browser context for one fetch: the dedicated
// session when present, otherwise a pooled context, otherwise a throwaway
// browser.
func (r *Renderer) browserContext(timeout time.Duration, proxy string) (context.Context, context.CancelFunc, func(), error) {
	if r.session != nil {
		ctx, cancel := context.WithTimeout(r.session.Ctx(), timeout)
		return ctx, cancel, func() {}, nil
	}

	if pool := r.currentPool(); pool != nil {
		bctx, err := pool.Acquire(timeout)
		if err != nil {
			return nil, nil, nil, render.NewRenderError(render.CodeBrowser, "no browser context available", err)
		}
		ctx, cancel := context.WithTimeout(bctx.Ctx, timeout)
		return ctx, cancel, func() { pool.Release(bctx) }, nil
	}

	session, err := NewSession(SessionOptions{
		Headless:   r.headless,
		UserAgent:  r.userAgent,
		Proxy:      proxy,
		ChromePath: r.chromePath,
	})
	if err != nil {
		return nil, nil, nil, render.NewRenderError(render.CodeBrowser, "starting browser failed", err)
	}
	ctx, cancel := context.WithTimeout(session.Ctx(), timeout)
	return ctx, cancel, session.Close, nil
}

// waitForTable blocks until a table element is attached or the wait budget
// runs out. Timing out is not fatal; pages without tables settle elsewhere
// and the extraction layer reports them.
func (r *Renderer) waitForTable() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, r.tableWait)
		defer cancel()

		if err := chromedp.WaitReady("table", chromedp.ByQuery).Do(waitCtx); err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				log.Warn().Dur("waited", r.tableWait).Msg("No table appeared within the wait budget, proceeding")
				return nil
			}
			return err
		}
		return nil
	})
}

// settleDelay holds the page after readiness so late script work can finish
func (r *Renderer) settleDelay(extraSeconds int) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		delay := r.settle + time.Duration(extraSeconds)*time.Second
		if delay <= 0 {
			return nil
		}
		log.Debug().Dur("delay", delay).Msg("Letting the page settle")
		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// sessionCookies returns actions that install saved login cookies into the
// browser before navigation.
func (r *Renderer) sessionCookies(name, pageURL string) []chromedp.Action {
	session, err := auth.LoadSession(name)
	if err != nil {
		log.Warn().Err(err).Str("session", name).Msg("Failed to load session")
		return nil
	}

	host := ""
	if u, uerr := url.Parse(pageURL); uerr == nil {
		host = u.Hostname()
	}

	actions := make([]chromedp.Action, 0, len(session.Cookies))
	for _, c := range session.Cookies {
		cookie := c
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			domain := cookie.Domain
			if domain == "" {
				domain = host
			}
			p := network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(domain).
				WithPath(cookie.Path).
				WithSecure(cookie.Secure).
				WithHTTPOnly(cookie.HTTPOnly)
			if cookie.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(cookie.Expires), 0))
				p = p.WithExpires(&expires)
			}
			return p.Do(ctx)
		}))
	}

	log.Debug().Int("cookies", len(actions)).Str("session", name).Msg("Session cookies prepared")
	return actions
}
