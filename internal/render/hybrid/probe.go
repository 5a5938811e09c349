// internal/render/hybrid/probe.go
package hybrid

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
)

// HasInlineTableData executes the page's inline scripts in a sandboxed VM
// and reports whether any of them staged row-shaped data for a client-side
// table widget. Ranking pages often ship their rows as a script global and
// mount the grid after load; catching that here avoids waiting for a static
// table that will never exist.
func HasInlineTableData(html string) bool {
	for _, value := range probeInlineGlobals(html) {
		if looksTabular(value) {
			return true
		}
	}
	return false
}

// probeInlineGlobals runs every inline script against a minimal mock browser
// environment and collects the non-standard globals left behind.
func probeInlineGlobals(html string) map[string]interface{} {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	vm := goja.New()

	// Just enough of a browser to let data-staging scripts run
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{},
	})
	vm.Set("location", map[string]interface{}{})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		// Most page scripts fail on the missing DOM; that is expected.
		_, _ = vm.RunString(src)
	})

	globals := make(map[string]interface{})
	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		if val := vm.Get(key); val != nil {
			if exported := val.Export(); exported != nil {
				globals[key] = exported
			}
		}
	}
	return globals
}

// looksTabular reports whether a script global resembles staged rows: a
// slice of objects, a container holding one, or a JSON array blob.
func looksTabular(v interface{}) bool {
	switch val := v.(type) {
	case []interface{}:
		if len(val) == 0 {
			return false
		}
		_, ok := val[0].(map[string]interface{})
		return ok
	case map[string]interface{}:
		for _, nested := range val {
			if rows, ok := nested.([]interface{}); ok && looksTabular(rows) {
				return true
			}
		}
		return false
	case string:
		return strings.HasPrefix(strings.TrimSpace(val), "[{")
	}
	return false
}

// isStandardGlobal filters the globals every VM starts with
func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	return standards[key]
}
