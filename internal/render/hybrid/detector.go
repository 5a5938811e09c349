// internal/render/hybrid/detector.go
package hybrid

import (
	"strings"
)

// DetectFramework reports the JS framework the markup appears to use, or ""
// when none is recognizable.
func DetectFramework(html string) string {
	html = strings.ToLower(html)

	switch {
	case strings.Contains(html, "data-reactroot") || strings.Contains(html, "react-dom") || strings.Contains(html, "__react"):
		return "react"
	case strings.Contains(html, "data-v-app") || strings.Contains(html, "vue.js") || strings.Contains(html, "__vue"):
		return "vue"
	case strings.Contains(html, "ng-app") || strings.Contains(html, "ng-version"):
		return "angular"
	case strings.Contains(html, "data-svelte") || strings.Contains(html, "svelte-"):
		return "svelte"
	case strings.Contains(html, "knockout") || strings.Contains(html, "data-bind="):
		return "knockout"
	}

	return ""
}

// NeedsBrowser determines whether a page without a static table likely
// assembles its content client side. Tournament platforms mount their
// ranking grids from script, so a sparse body behind many scripts is the
// strongest signal.
func NeedsBrowser(html string) bool {
	lower := strings.ToLower(html)
	scripts := strings.Count(lower, "<script")

	if DetectFramework(html) != "" {
		return true
	}

	if scripts > 5 {
		return true
	}

	// Minimal body markup with scripts present is typical of SPA shells.
	if strings.Count(lower, "<div") < 3 && scripts > 0 {
		return true
	}

	// Inline scripts that stage row data for a table widget.
	if HasInlineTableData(html) {
		return true
	}

	return false
}
