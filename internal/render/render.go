// Package render turns a URL into settled page markup. Three renderers are
// available: a plain HTTP fetcher for server-rendered pages, a headless
// Chrome renderer for pages that assemble their tables in script, and an
// auto renderer that starts static and escalates when the markup looks
// script-assembled.
package render

import "github.com/court-tools/rankpull/pkg/models"

// Renderer is the interface all page renderers implement.
type Renderer interface {
	// Fetch retrieves the page and returns it with post-settle markup.
	Fetch(opts models.RequestOptions) (*models.PageData, error)

	// Name returns the name of the renderer implementation.
	Name() string
}
