package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.BrowserPoolSize <= 0 || c.BrowserPoolSize > DefaultMaxBrowserPoolSize {
		return fmt.Errorf("browser pool size must be between 1 and %d", DefaultMaxBrowserPoolSize)
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.MaxPlayers < 1 || c.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("max players must be between 1 and %d", MaxPlayersLimit)
	}
	if c.ResultsPerPage < 1 || c.ResultsPerPage > ResultsPerPageLimit {
		return fmt.Errorf("results per page must be between 1 and %d", ResultsPerPageLimit)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
