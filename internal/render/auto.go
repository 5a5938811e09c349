// internal/render/auto.go
package render

import (
	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/render/hybrid"
	"github.com/court-tools/rankpull/pkg/models"
)

// Auto combines the static and browser renderers. It fetches statically
// first and rerenders through the browser when the static markup carries no
// table but looks like it builds one client side.
type Auto struct {
	static  Renderer
	dynamic Renderer
}

// NewAuto creates an Auto renderer over the given static and browser renderers.
func NewAuto(static, dynamic Renderer) *Auto {
	return &Auto{
		static:  static,
		dynamic: dynamic,
	}
}

// Name returns the name of the renderer
func (a *Auto) Name() string {
	return "auto"
}

// Fetch retrieves the page, escalating from static to browser rendering when
// the page characteristics call for it.
func (a *Auto) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	data, err := a.static.Fetch(opts)
	if err != nil {
		log.Warn().Err(err).Str("url", opts.URL).Msg("Static fetch failed, falling back to browser")
		return a.dynamic.Fetch(opts)
	}

	strategy := hybrid.Choose(data.HTML, data.TableCount)
	if strategy == hybrid.StrategyStatic {
		return data, nil
	}

	log.Debug().
		Str("url", opts.URL).
		Str("strategy", strategy.String()).
		Str("framework", hybrid.DetectFramework(data.HTML)).
		Msg("Escalating to browser render")

	rendered, rerr := a.dynamic.Fetch(opts)
	if rerr != nil {
		log.Warn().Err(rerr).Str("url", opts.URL).Msg("Browser render failed, keeping static result")
		return data, nil
	}
	return rendered, nil
}
