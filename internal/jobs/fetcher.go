// internal/jobs/fetcher.go
package jobs

import (
	"context"

	"github.com/court-tools/rankpull/pkg/models"
)

// Fetcher is the renderer collaborator as the jobs see it: a URL goes in,
// post-settle markup comes out. Implementations own readiness waiting, settle
// delays and retries; jobs only interpret the returned page.
type Fetcher interface {
	Fetch(opts models.RequestOptions) (*models.PageData, error)
}

// FetcherFactory produces a Fetcher scoped to one worker together with its
// release function. Browser-backed fetchers hold a live browser context, so
// concurrent jobs must each obtain their own instead of sharing one.
type FetcherFactory func(ctx context.Context) (Fetcher, func(), error)
