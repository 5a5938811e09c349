package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// HTTP/Fetching
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string
	Proxies     []string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Browser
	BrowserPoolSize int
	BrowserHeadless bool
	ChromePath      string
	TableWait       time.Duration
	SettleDelay     time.Duration

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Pull sizing
	MaxPlayers     int
	ResultsPerPage int
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the command being run so its flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		BrowserPoolSize:   DefaultBrowserPoolSize,
		BrowserHeadless:   DefaultBrowserHeadless,
		TableWait:         DefaultTableWaitTimeout,
		SettleDelay:       DefaultSettleDelay,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		MaxPlayers:        DefaultMaxPlayers,
		ResultsPerPage:    DefaultResultsPerPage,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("RANKPULL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RANKPULL_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("RANKPULL_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RANKPULL_PROXIES"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Proxies = append(cfg.Proxies, p)
			}
		}
	}
	if v := os.Getenv("RANKPULL_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("RANKPULL_MAX_PLAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPlayers = n
		}
	}
	if v := os.Getenv("RANKPULL_RESULTS_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ResultsPerPage = n
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("chrome"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.ChromePath = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("log-level"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.LogLevel = s
			}
		}
		if f := cmd.Flags().Lookup("log-format"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.LogFormat = s
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
		if f := cmd.Flags().Lookup("headful"); f != nil {
			if f.Value.String() == "true" {
				cfg.BrowserHeadless = false
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ProxyList returns every configured proxy, folding the single Proxy value
// into the rotation list when no explicit list was given.
func (c *Config) ProxyList() []string {
	if len(c.Proxies) > 0 {
		return c.Proxies
	}
	if c.Proxy != "" {
		return []string{c.Proxy}
	}
	return nil
}
