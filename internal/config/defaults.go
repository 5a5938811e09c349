package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultUserAgent          = "rankpull/1.0 (+https://github.com/court-tools/rankpull)"
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultTableWaitTimeout   = 20 * time.Second
	DefaultSettleDelay        = 2 * time.Second
	DefaultRateLimitRPS       = 2.0
	DefaultRateLimitBurst     = 4
	DefaultBrowserPoolSize    = 2
	DefaultMaxBrowserPoolSize = 8
	DefaultBrowserHeadless    = true
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheMaxSizeBytes  = 100 * 1024 * 1024 // 100MB
	DefaultMaxPlayers         = 1000
	DefaultResultsPerPage     = 25
	MaxPlayersLimit           = 5000
	ResultsPerPageLimit       = 100
)
