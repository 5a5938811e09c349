// internal/auth/login.go
package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures the interactive login behavior
type LoginOptions struct {
	// SessionName is the name to save the session as
	SessionName string
	// URL to navigate to for login (ranking portal login page)
	URL string
	// WaitSelector is the CSS selector to wait for after login (e.g., "#member-home")
	WaitSelector string
	// Timeout for the entire login process
	Timeout time.Duration
	// CustomHeaders to store with the session
	Headers map[string]string
	// ChromePath overrides browser discovery when set
	ChromePath string
	// RemoteDebuggingPort enables Chrome DevTools on this port (e.g., 9222)
	RemoteDebuggingPort int
}

// InteractiveLogin launches a visible browser for manual login and captures
// the resulting cookies as a reusable session.
func InteractiveLogin(opts LoginOptions) (*SessionData, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}

	// A visible browser needs a display server.
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, fmt.Errorf("interactive login requires a display server (DISPLAY not set)\n\n" +
			"💡 In headless environments, use:\n" +
			"   rankpull sessions import <name> --url=<url>\n\n" +
			"   This imports cookies copied from your browser's DevTools.")
	}

	log.Info().
		Str("session", opts.SessionName).
		Str("url", opts.URL).
		Msg("Starting interactive login")

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1280, 720),
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	if opts.RemoteDebuggingPort > 0 {
		allocOpts = append(allocOpts,
			chromedp.Flag("remote-debugging-port", fmt.Sprintf("%d", opts.RemoteDebuggingPort)),
			chromedp.Flag("remote-debugging-address", "0.0.0.0"),
		)
		log.Info().Int("port", opts.RemoteDebuggingPort).Msg("Remote debugging enabled")
		fmt.Printf("\n🔧 Remote debugging enabled on port %d\n", opts.RemoteDebuggingPort)
		fmt.Printf("   Open chrome://inspect in your local Chrome and target localhost:%d\n", opts.RemoteDebuggingPort)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	defer browserCancel()

	log.Info().Msg("Opening browser for login")
	fmt.Println("\n🌐 Browser opened. Complete the login there, including any human check.")

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(opts.URL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if opts.WaitSelector != "" {
		log.Info().Str("selector", opts.WaitSelector).Msg("Waiting for login completion")
		fmt.Printf("   Waiting for element: %s\n", opts.WaitSelector)

		err = chromedp.Run(browserCtx,
			chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery),
		)
		if err != nil {
			return nil, fmt.Errorf("login timeout or failed: %w", err)
		}
	} else {
		fmt.Println("\n   Press Enter here once you are logged in...")
		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			log.Debug().Err(err).Msg("Stdin closed while waiting, continuing")
		}
	}

	log.Info().Msg("Login completed, extracting cookies")

	var cookies []*network.Cookie
	err = chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var cerr error
			cookies, cerr = network.GetCookies().Do(ctx)
			return cerr
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found - login may have failed")
	}

	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies extracted")
	fmt.Printf("\n✓ Captured %d cookies\n", len(cookies))

	sessionCookies := make([]Cookie, len(cookies))
	for i, c := range cookies {
		sessionCookies[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
	}

	session := &SessionData{
		Name:      opts.SessionName,
		URL:       opts.URL,
		Cookies:   sessionCookies,
		Headers:   opts.Headers,
		CreatedAt: time.Now(),
	}

	// The session lives as long as its longest-lived cookie.
	maxExpires := 0.0
	for _, c := range cookies {
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		session.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}

	return session, nil
}
