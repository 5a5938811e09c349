package models

import "time"

// PageData represents a rendered page as handed to the extraction pipeline.
type PageData struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Title        string            `json:"title,omitempty"`
	HTML         string            `json:"html,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	TableCount   int               `json:"table_count"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
}

// OK reports whether the page came back with a 2xx status.
func (p *PageData) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// RenderMode selects how a page is fetched.
type RenderMode string

const (
	ModeAuto   RenderMode = "auto"
	ModeStatic RenderMode = "static"
	ModeSPA    RenderMode = "spa"
)

// RequestOptions contains options for fetching a single page.
type RequestOptions struct {
	URL           string
	Mode          RenderMode
	Headers       map[string]string
	SessionName   string
	Timeout       time.Duration
	SettleSeconds int
	Proxy         string

	// NoCache forces a live fetch even when a cached copy exists. Set on
	// refetches after a human handoff, where the cached markup predates
	// whatever the operator did in the browser.
	NoCache bool
}
