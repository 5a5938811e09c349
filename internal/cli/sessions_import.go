// internal/cli/sessions_import.go
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/auth"
)

var (
	importURL    string
	importFormat string
)

// sessionsImportCmd represents the sessions import command
var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import cookies from your browser to create a session",
	Long: `Creates a login session from cookies copied out of your browser's
developer tools.

This is the way in on headless machines (CI boxes, Codespaces, servers)
where the interactive login browser cannot open a window:

1. Open the site in your regular browser and log in
2. Open DevTools (F12) → Application → Cookies
3. Copy the cookies the site set
4. Import them here`,
	Example: `  # Type cookies in one by one
  rankpull sessions import county --url=https://rankings.example.org

  # From a curl/Netscape cookie jar
  rankpull sessions import county --url=https://rankings.example.org --format=netscape < cookies.txt

  # From JSON
  rankpull sessions import county --url=https://rankings.example.org --format=json < cookies.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsImport,
}

func init() {
	sessionsCmd.AddCommand(sessionsImportCmd)

	sessionsImportCmd.Flags().StringVar(&importURL, "url", "", "Site URL this session belongs to (required)")
	sessionsImportCmd.Flags().StringVar(&importFormat, "format", "interactive", "Import format: interactive, json, netscape")
	sessionsImportCmd.MarkFlagRequired("url")
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	sessionName := args[0]

	fmt.Printf("\n🔐 Import Session: %s\n", sessionName)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	var cookies []auth.Cookie
	var err error

	switch importFormat {
	case "interactive":
		cookies, err = importInteractive()
	case "json":
		cookies, err = importJSON()
	case "netscape":
		cookies, err = importNetscape()
	default:
		return fmt.Errorf("unsupported format: %s (use: interactive, json, netscape)", importFormat)
	}

	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies imported")
	}

	session := &auth.SessionData{
		Name:      sessionName,
		URL:       importURL,
		Cookies:   cookies,
		Headers:   make(map[string]string),
		CreatedAt: time.Now(),
	}

	// The session outlives its shortest-lived cookies; keep the latest
	// expiry, matching what the login command records.
	for _, c := range cookies {
		if c.Expires > 0 {
			if expiry := time.Unix(int64(c.Expires), 0); expiry.After(session.ExpiresAt) {
				session.ExpiresAt = expiry
			}
		}
	}

	if err := auth.SaveSessionWithManifest(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("\n✓ Session '%s' created successfully!\n", sessionName)
	fmt.Printf("  Cookies: %d\n", len(cookies))
	if !session.ExpiresAt.IsZero() {
		fmt.Printf("  Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Printf("\nUse with:\n")
	fmt.Printf("  rankpull rankings <url> --session=%s\n", sessionName)
	fmt.Printf("  rankpull entries <url> --session=%s\n\n", sessionName)

	return nil
}

// defaultCookieDomain derives the likely cookie domain from the session URL.
func defaultCookieDomain() string {
	u, err := url.Parse(importURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "." + strings.TrimPrefix(u.Hostname(), "www.")
}

func importInteractive() ([]auth.Cookie, error) {
	fmt.Println("📋 Cookie Import Guide:")
	fmt.Println()
	fmt.Println("1. Open the site in your browser and log in")
	fmt.Println("2. Press F12 to open DevTools")
	fmt.Println("3. Go to: Application → Storage → Cookies")
	fmt.Println("4. For each session cookie, copy the Name and Value")
	fmt.Println()

	domain := defaultCookieDomain()
	scanner := bufio.NewScanner(os.Stdin)
	var cookies []auth.Cookie

	for {
		fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

		fmt.Print("\nCookie Name (or press Enter to finish): ")
		if !scanner.Scan() {
			break
		}
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			break
		}

		fmt.Print("Cookie Value: ")
		if !scanner.Scan() {
			break
		}
		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			fmt.Println("⚠️  Skipping cookie with empty value")
			continue
		}

		fmt.Printf("Domain [%s]: ", domain)
		if !scanner.Scan() {
			break
		}
		cookieDomain := strings.TrimSpace(scanner.Text())
		if cookieDomain == "" {
			cookieDomain = domain
		}

		cookie := auth.Cookie{
			Name:     name,
			Value:    value,
			Domain:   cookieDomain,
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		}
		cookies = append(cookies, cookie)
		fmt.Printf("✓ Added: %s (domain: %s)\n", cookie.Name, cookie.Domain)
	}

	if len(cookies) == 0 {
		fmt.Println("\n⚠️  No cookies added")
	} else {
		fmt.Printf("\n✓ Total cookies added: %d\n", len(cookies))
	}

	return cookies, nil
}

func importJSON() ([]auth.Cookie, error) {
	var cookies []auth.Cookie
	if err := json.NewDecoder(os.Stdin).Decode(&cookies); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return cookies, nil
}

// importNetscape reads the classic curl cookie jar format: one cookie per
// line with domain, include-subdomains flag, path, secure flag, expiry as
// epoch seconds, name, and value separated by whitespace.
func importNetscape() ([]auth.Cookie, error) {
	var cookies []auth.Cookie
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}

		cookie := auth.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   fields[3] == "TRUE",
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: false,
		}

		if expiry, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expiry > 0 {
			cookie.Expires = float64(expiry)
		}

		cookies = append(cookies, cookie)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cookies, nil
}
