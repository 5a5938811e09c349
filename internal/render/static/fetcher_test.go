// internal/render/static/fetcher_test.go
package static

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/court-tools/rankpull/internal/cache"
	"github.com/court-tools/rankpull/internal/render"
	"github.com/court-tools/rankpull/internal/retry"
	"github.com/court-tools/rankpull/pkg/models"
)

const rankingPage = `<!DOCTYPE html>
<html>
<head><title>Mens Singles Rankings</title></head>
<body>
	<table>
		<tr><th>Rank</th><th>Player</th></tr>
		<tr><td>1</td><td>Alice Archer</td></tr>
	</table>
</body>
</html>`

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:          3,
		InitialBackoff:       5 * time.Millisecond,
		MaxBackoff:           50 * time.Millisecond,
		Multiplier:           2.0,
		RetryableStatusCodes: []int{http.StatusServiceUnavailable},
	}
}

func newTestFetcher() *Fetcher {
	return New(nil, nil, &http.Client{Timeout: 5 * time.Second}, fastRetry(), "rankpull-test")
}

func TestFetcher_Fetch_TablePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rankingPage))
	}))
	defer server.Close()

	data, err := newTestFetcher().Fetch(models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if data.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", data.StatusCode)
	}
	if data.Title != "Mens Singles Rankings" {
		t.Errorf("expected page title, got %q", data.Title)
	}
	if data.TableCount != 1 {
		t.Errorf("expected 1 table, got %d", data.TableCount)
	}
}

func TestFetcher_Fetch_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(rankingPage))
	}))
	defer server.Close()

	data, err := newTestFetcher().Fetch(models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if data.StatusCode != 200 || data.TableCount != 1 {
		t.Errorf("expected the successful page, got status %d", data.StatusCode)
	}
}

func TestFetcher_Fetch_ExhaustedRetriesReturnStatus(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	data, err := newTestFetcher().Fetch(models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("an exhausted retry must surface the status, not an error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if data.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", data.StatusCode)
	}
	if data.OK() {
		t.Error("a 503 page must not report OK")
	}
}

func TestFetcher_Fetch_NotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html><body>no such ranking</body></html>"))
	}))
	defer server.Close()

	data, err := newTestFetcher().Fetch(models.RequestOptions{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if attempts != 1 {
		t.Errorf("404 is not retryable, expected 1 attempt, got %d", attempts)
	}
	if data.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", data.StatusCode)
	}
}

func TestFetcher_Fetch_CustomHeaders(t *testing.T) {
	var gotCustom, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCustom = r.Header.Get("X-Requested-With")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(rankingPage))
	}))
	defer server.Close()

	opts := models.RequestOptions{
		URL:     server.URL,
		Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
	}
	if _, err := newTestFetcher().Fetch(opts); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotCustom != "XMLHttpRequest" {
		t.Errorf("custom header not sent, got %q", gotCustom)
	}
	if gotAgent != "rankpull-test" {
		t.Errorf("expected configured user agent, got %q", gotAgent)
	}
}

func TestFetcher_Fetch_SecondFetchServedFromCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(rankingPage))
	}))
	defer server.Close()

	c := cache.NewMemoryCache(0)
	defer c.Close()
	fetcher := New(c, nil, &http.Client{Timeout: 5 * time.Second}, fastRetry(), "rankpull-test")

	opts := models.RequestOptions{URL: server.URL}
	if _, err := fetcher.Fetch(opts); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if _, err := fetcher.Fetch(opts); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected the second fetch to hit the cache, server saw %d requests", hits)
	}

	opts.NoCache = true
	if _, err := fetcher.Fetch(opts); err != nil {
		t.Fatalf("bypass fetch failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("expected NoCache to bypass the cache, server saw %d requests", hits)
	}
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestFetcher().Fetch(models.RequestOptions{URL: server.URL, Timeout: 2 * time.Second})
	if err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
	var rerr *render.RenderError
	if !errors.As(err, &rerr) || rerr.Code != render.CodeNetwork {
		t.Errorf("expected a NETWORK render error, got %v", err)
	}
}

func TestFetcher_Name(t *testing.T) {
	if got := newTestFetcher().Name(); got != "static" {
		t.Errorf("expected name 'static', got %q", got)
	}
}
