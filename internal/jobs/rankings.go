// internal/jobs/rankings.go
package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/internal/reqctx"
	urlutil "github.com/court-tools/rankpull/internal/utils/url"
	"github.com/court-tools/rankpull/pkg/models"
)

// rankArtifactColumn appears when a page renders the rank twice and the
// scanner disambiguates the duplicate label.
const rankArtifactColumn = "Rank.1"

// RankingsJob fetches a paginated ranking list page by page, extracts the
// ranking table from each page and accumulates rows until MaxPlayers is
// reached. Pages that come back without usable rows are skipped with a
// warning, never retried; the job only fails when no page yielded anything.
type RankingsJob struct {
	Fetcher        Fetcher
	BaseURL        string
	MaxPlayers     int
	ResultsPerPage int

	// Options is the per-page request template; the URL field is filled in
	// for every page.
	Options models.RequestOptions

	// Checkpoint, when set, runs after the first page load. The first page is
	// fetched again afterwards because pre-handoff markup is not stable.
	Checkpoint Checkpoint

	// OnPage is called after each page attempt with the rows it contributed.
	OnPage func(page, pages, rows int)
}

// PagesNeeded returns how many pages must be fetched to cover target rows at
// the given page size.
func PagesNeeded(target, pageSize int) int {
	if target <= 0 || pageSize <= 0 {
		return 0
	}
	return (target + pageSize - 1) / pageSize
}

// Run drives the pagination state machine and returns the final result set:
// accumulated rows in page order, truncated to exactly MaxPlayers, with the
// duplicate rank artifact column removed.
func (j *RankingsJob) Run(ctx context.Context) (result extract.Table, err error) {
	defer recoverJobError(&err)

	rc := reqctx.FromContext(ctx)
	pages := PagesNeeded(j.MaxPlayers, j.ResultsPerPage)
	log.Info().
		Str("run_id", rc.RunID).
		Str("url", j.BaseURL).
		Int("max_players", j.MaxPlayers).
		Int("results_per_page", j.ResultsPerPage).
		Int("pages", pages).
		Msg("Starting rankings job")

	var collected []extract.Table
	total := 0

	for page := 1; page <= pages; page++ {
		select {
		case <-ctx.Done():
			return extract.Table{}, ctx.Err()
		default:
		}

		pageURL := urlutil.RankingsPageURL(j.BaseURL, page, j.ResultsPerPage)
		data, ferr := j.fetchPage(ctx, page, pageURL)
		if ferr != nil {
			return extract.Table{}, ferr
		}

		rows := 0
		switch {
		case !data.OK():
			log.Warn().Int("page", page).Int("status", data.StatusCode).Msg("Page fetch returned non-OK status, skipping")
		default:
			pageTable, ok := extract.First(extract.Scan(data.HTML), extract.Rankings)
			switch {
			case !ok:
				log.Warn().Int("page", page).Msg("No ranking table found on page, skipping")
			case pageTable.Empty():
				log.Warn().Int("page", page).Msg("No ranking rows found on page, skipping")
			default:
				rows = pageTable.Len()
				collected = append(collected, pageTable)
				total += rows
				log.Info().Int("page", page).Int("rows", rows).Int("total", total).Msg("Ranking rows extracted")
			}
		}

		if j.OnPage != nil {
			j.OnPage(page, pages, rows)
		}
		if total >= j.MaxPlayers {
			break
		}
	}

	if len(collected) == 0 {
		return extract.Table{}, NewJobError(CodeNoRows, "no ranking rows found on any page", ErrNoRows)
	}

	result = extract.Concat(collected).Truncate(j.MaxPlayers).DropColumn(rankArtifactColumn)
	log.Info().
		Str("run_id", rc.RunID).
		Int("rows", result.Len()).
		Dur("elapsed", rc.Elapsed()).
		Msg("Rankings job finished")
	return result, nil
}

// fetchPage fetches one page, running the human handoff after the first load.
func (j *RankingsJob) fetchPage(ctx context.Context, page int, pageURL string) (*models.PageData, error) {
	opts := j.Options
	opts.URL = pageURL

	data, err := j.Fetcher.Fetch(opts)
	if err != nil {
		return nil, NewJobError(CodeRender, fmt.Sprintf("fetching page %d failed", page), err)
	}

	if page == 1 && j.Checkpoint != nil {
		if cerr := j.Checkpoint(ctx, pageURL); cerr != nil {
			return nil, NewJobError(CodeCheckpoint, "handoff aborted", cerr)
		}
		opts.NoCache = true
		data, err = j.Fetcher.Fetch(opts)
		if err != nil {
			return nil, NewJobError(CodeRender, "refetching first page after handoff failed", err)
		}
	}
	return data, nil
}
