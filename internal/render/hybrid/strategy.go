// internal/render/hybrid/strategy.go
package hybrid

// Strategy represents how a page should be rendered
type Strategy int

const (
	// StrategyStatic keeps the plain HTTP result
	StrategyStatic Strategy = iota

	// StrategyBrowser rerenders the page in headless Chrome
	StrategyBrowser
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyStatic:
		return "static"
	case StrategyBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// Choose picks the render strategy from statically served markup. A page
// that already carries a table is done; one without a table only earns a
// browser render when its markup looks script-assembled.
func Choose(html string, tableCount int) Strategy {
	if tableCount > 0 {
		return StrategyStatic
	}
	if NeedsBrowser(html) {
		return StrategyBrowser
	}
	return StrategyStatic
}
