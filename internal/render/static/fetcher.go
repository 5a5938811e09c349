// internal/render/static/fetcher.go
package static

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/auth"
	"github.com/court-tools/rankpull/internal/cache"
	"github.com/court-tools/rankpull/internal/ratelimit"
	"github.com/court-tools/rankpull/internal/render"
	"github.com/court-tools/rankpull/internal/retry"
	"github.com/court-tools/rankpull/pkg/models"
)

// Fetcher retrieves server-rendered pages over plain HTTP and parses them
// with goquery. Ranking sites that render their tables on the server need
// nothing more, and this path is far cheaper than a browser.
type Fetcher struct {
	cache     cache.Cache
	limiter   ratelimit.RateLimiter
	client    *http.Client
	retry     retry.Config
	userAgent string
}

// New creates a static Fetcher with dependency injection
func New(c cache.Cache, lim ratelimit.RateLimiter, client *http.Client, rc retry.Config, ua string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		cache:     c,
		limiter:   lim,
		client:    client,
		retry:     rc,
		userAgent: ua,
	}
}

// Name returns the name of this renderer
func (f *Fetcher) Name() string {
	return "static"
}

// Fetch retrieves and parses one page. Retryable HTTP statuses are retried
// with backoff; once retries are exhausted, or for plainly non-retryable
// statuses, the page comes back with its status code and a nil error so the
// pagination loop can decide between skipping and failing.
func (f *Fetcher) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("renderer", f.Name()).
		Msg("Starting fetch")

	cacheKey := f.Name() + ":" + opts.URL
	if f.cache != nil && !opts.NoCache {
		if cached, ok := f.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	client := f.sessionClient(&opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, render.NewRenderError(render.CodeNetwork, "building request failed", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, err
		}
	}

	var resp *http.Response
	err = retry.WithRetry(ctx, f.retry, func() error {
		r, derr := client.Do(req)
		if derr != nil {
			return derr
		}
		if f.retryableStatus(r.StatusCode) {
			r.Body.Close()
			return retry.NewHTTPError(r.StatusCode, r.Status, "")
		}
		resp = r
		return nil
	})
	if err != nil {
		var herr retry.HTTPError
		if errors.As(err, &herr) {
			log.Warn().
				Str("url", opts.URL).
				Int("status", herr.StatusCode).
				Msg("Retries exhausted on HTTP error status")
			return &models.PageData{
				URL:          opts.URL,
				StatusCode:   herr.StatusCode,
				FetchedAt:    time.Now(),
				ResponseTime: time.Since(start).Milliseconds(),
			}, nil
		}
		return nil, render.NewRenderError(render.CodeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, render.NewRenderError(render.CodeNetwork, "reading response body failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, render.NewRenderError(render.CodeParse, "parsing markup failed", err)
	}

	responseTime := time.Since(start).Milliseconds()

	data := &models.PageData{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		Title:        strings.TrimSpace(doc.Find("title").First().Text()),
		HTML:         string(body),
		Headers:      make(map[string]string),
		TableCount:   doc.Find("table").Length(),
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			data.Headers[key] = values[0]
		}
	}

	if f.cache != nil && data.OK() {
		f.cache.Set(cacheKey, data, 0)
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", data.StatusCode).
		Int("tables", data.TableCount).
		Int64("response_time_ms", responseTime).
		Msg("Fetch completed")

	return data, nil
}

// sessionClient returns the HTTP client to use for this request. When a
// saved session is named, its cookies go into a jar on a per-request copy of
// the client so they never leak into unrelated fetches; its headers merge
// into the request options. A per-request proxy goes onto a transport copy
// the same way.
func (f *Fetcher) sessionClient(opts *models.RequestOptions) *http.Client {
	client := *f.client

	if opts.Proxy != "" {
		if proxyURL, perr := url.Parse(opts.Proxy); perr == nil {
			if base, ok := client.Transport.(*http.Transport); ok && base != nil {
				t := base.Clone()
				t.Proxy = http.ProxyURL(proxyURL)
				client.Transport = t
			} else {
				client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
			}
		} else {
			log.Warn().Str("proxy", opts.Proxy).Msg("Ignoring unparseable proxy URL")
		}
	}

	if opts.SessionName == "" {
		return &client
	}

	session, err := auth.LoadSession(opts.SessionName)
	if err != nil {
		log.Warn().Err(err).Str("session", opts.SessionName).Msg("Failed to load session")
		return &client
	}

	if jar, jerr := cookiejar.New(nil); jerr == nil {
		if parsed, perr := url.Parse(opts.URL); perr == nil {
			cookies := make([]*http.Cookie, 0, len(session.Cookies))
			for _, c := range session.Cookies {
				cookies = append(cookies, &http.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Expires:  time.Unix(int64(c.Expires), 0),
					HttpOnly: c.HTTPOnly,
					Secure:   c.Secure,
				})
			}
			jar.SetCookies(parsed, cookies)
			client.Jar = jar
			log.Debug().Int("cookies", len(cookies)).Str("session", opts.SessionName).Msg("Session cookies injected")
		}
	}

	if len(session.Headers) > 0 {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		for key, value := range session.Headers {
			opts.Headers[key] = value
		}
	}

	return &client
}

func (f *Fetcher) retryableStatus(code int) bool {
	for _, c := range f.retry.RetryableStatusCodes {
		if c == code {
			return true
		}
	}
	return false
}
