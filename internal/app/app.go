// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/cache"
	"github.com/court-tools/rankpull/internal/config"
	"github.com/court-tools/rankpull/internal/jobs"
	"github.com/court-tools/rankpull/internal/proxy"
	"github.com/court-tools/rankpull/internal/ratelimit"
	"github.com/court-tools/rankpull/internal/render"
	"github.com/court-tools/rankpull/internal/render/dynamic"
	"github.com/court-tools/rankpull/internal/render/static"
	"github.com/court-tools/rankpull/internal/retry"
	"github.com/court-tools/rankpull/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	BrowserPool *dynamic.BrowserPool
	poolMu      sync.Mutex
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Static      *static.Fetcher
	Dynamic     *dynamic.Renderer
	Auto        render.Renderer
	Proxies     *proxy.Pool
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates and initializes the in-memory page cache
//   - Creates the rate limiter for domain-based request throttling
//   - Initializes the HTTP client with proper timeouts
//   - Creates the static, browser, and auto-detecting fetchers
//
// The browser pool is not started here; it is created lazily via
// EnsureBrowserPool the first time a browser render is actually needed.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.LogFormat == "json" {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Str("format", cfg.LogFormat).
		Msg("Logger initialized")

	// Create cache
	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Memory cache initialized")

	// Create rate limiter
	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	// Create HTTP client
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	// Create fetchers
	staticFetcher := static.New(
		memCache,
		rateLimiter,
		httpClient,
		retry.DefaultConfig(),
		cfg.UserAgent,
	)

	// Create the browser renderer without an active pool. The pool is created
	// lazily when a browser render is actually requested.
	browserRenderer := dynamic.New(dynamic.Options{
		Cache:      memCache,
		Limiter:    rateLimiter,
		Headless:   cfg.BrowserHeadless,
		TableWait:  cfg.TableWait,
		Settle:     cfg.SettleDelay,
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  cfg.UserAgent,
		ChromePath: cfg.ChromePath,
	})

	autoRenderer := render.NewAuto(staticFetcher, browserRenderer)
	logger.Debug().Msg("Fetchers initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Static:      staticFetcher,
		Dynamic:     browserRenderer,
		Auto:        autoRenderer,
		Proxies:     proxy.NewPool(cfg.ProxyList()),
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// RendererFor returns the renderer matching the requested mode. Callers that
// may hit the browser path (spa or auto) should call EnsureBrowserPool first
// so renders reuse pooled contexts instead of launching throwaway browsers.
func (a *Application) RendererFor(mode models.RenderMode) render.Renderer {
	switch mode {
	case models.ModeStatic:
		return a.Static
	case models.ModeSPA:
		return a.Dynamic
	default:
		return a.Auto
	}
}

// EnsureBrowserPool lazily creates the browser pool if it has not already been
// initialized. Callers should provide a context with an appropriate timeout.
func (a *Application) EnsureBrowserPool(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}

	a.poolMu.Lock()
	defer a.poolMu.Unlock()

	if a.BrowserPool != nil {
		return nil
	}

	logger := a.Logger
	logger.Debug().Msg("Initializing browser pool on demand")
	pool, err := dynamic.NewBrowserPool(dynamic.BrowserPoolOptions{
		Size:       a.Config.BrowserPoolSize,
		Headless:   a.Config.BrowserHeadless,
		UserAgent:  a.Config.UserAgent,
		Proxy:      a.Config.Proxy,
		ChromePath: a.Config.ChromePath,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create browser pool on demand")
		return err
	}

	a.BrowserPool = pool
	// Attach to the browser renderer so it can reuse pooled contexts
	if a.Dynamic != nil {
		a.Dynamic.SetPool(pool)
	}

	logger.Info().Int("pool_size", pool.Size()).Msg("Browser pool initialized on demand")
	return nil
}

// FetcherFactory returns a factory that builds one isolated fetcher per job
// worker. Static mode shares the HTTP fetcher; spa and auto workers each get
// a dedicated browser session, so cookie state survives a job's refetches but
// never leaks between concurrent jobs. When proxies are configured they
// rotate across workers.
func (a *Application) FetcherFactory(mode models.RenderMode) jobs.FetcherFactory {
	return func(ctx context.Context) (jobs.Fetcher, func(), error) {
		px := a.Proxies.Next()

		if mode == models.ModeStatic {
			f := &workerFetcher{inner: a.Static, proxies: a.Proxies, proxy: px, injectProxy: true}
			return f, func() {}, nil
		}

		session, err := dynamic.NewSession(dynamic.SessionOptions{
			Headless:   a.Config.BrowserHeadless,
			UserAgent:  a.Config.UserAgent,
			Proxy:      px,
			ChromePath: a.Config.ChromePath,
		})
		if err != nil {
			if px != "" {
				a.Proxies.MarkFailed(px)
			}
			return nil, nil, fmt.Errorf("starting worker browser: %w", err)
		}

		browser := dynamic.New(dynamic.Options{
			Cache:      a.Cache,
			Limiter:    a.RateLimiter,
			Session:    session,
			Headless:   a.Config.BrowserHeadless,
			TableWait:  a.Config.TableWait,
			Settle:     a.Config.SettleDelay,
			Timeout:    a.Config.HTTPTimeout,
			UserAgent:  a.Config.UserAgent,
			ChromePath: a.Config.ChromePath,
		})

		var inner render.Renderer = browser
		if mode != models.ModeSPA {
			inner = render.NewAuto(a.Static, browser)
		}
		// The session already carries the proxy from launch.
		f := &workerFetcher{inner: inner, proxies: a.Proxies, proxy: px}
		return f, session.Close, nil
	}
}

// workerFetcher wraps a renderer for one batch worker and reports proxy
// health back to the pool as fetches succeed or fail.
type workerFetcher struct {
	inner       render.Renderer
	proxies     *proxy.Pool
	proxy       string
	injectProxy bool
}

func (w *workerFetcher) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	if w.injectProxy && w.proxy != "" && opts.Proxy == "" {
		opts.Proxy = w.proxy
	}
	data, err := w.inner.Fetch(opts)
	if w.proxy != "" {
		if err != nil {
			w.proxies.MarkFailed(w.proxy)
		} else {
			w.proxies.MarkHealthy(w.proxy)
		}
	}
	return data, err
}

// Close gracefully shuts down the application and all its resources.
//
// It closes the browser pool first because pooled contexts may still hold
// pages open, then the cache and the HTTP client's idle connections.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	// Close browser pool (will interrupt any running operations)
	if a.BrowserPool != nil {
		if err := a.BrowserPool.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser pool")
		}
	}

	// Close cache
	if a.Cache != nil {
		a.Cache.Close()
	}

	// Close HTTP client (connection pooling cleanup)
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
