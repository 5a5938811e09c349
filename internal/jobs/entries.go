// internal/jobs/entries.go
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/internal/reqctx"
	"github.com/court-tools/rankpull/pkg/models"
)

// EntriesJob fetches one tournament event page and extracts the valid player
// names from its online-entries table.
type EntriesJob struct {
	Fetcher Fetcher
	URL     string
	Options models.RequestOptions

	// Checkpoint, when set, runs after the page load; the page is fetched
	// again afterwards because pre-handoff markup is not stable.
	Checkpoint Checkpoint
}

// Run fetches the event page once and returns the Name-only result set.
// There is no next page to continue to, so every miss is terminal for the job.
func (j *EntriesJob) Run(ctx context.Context) (result extract.Table, err error) {
	defer recoverJobError(&err)

	rc := reqctx.FromContext(ctx)
	log.Info().Str("run_id", rc.RunID).Str("url", j.URL).Msg("Starting entries job")

	opts := j.Options
	opts.URL = j.URL

	data, ferr := j.Fetcher.Fetch(opts)
	if ferr != nil {
		return extract.Table{}, NewJobError(CodeRender, "fetching event page failed", ferr)
	}

	if j.Checkpoint != nil {
		if cerr := j.Checkpoint(ctx, j.URL); cerr != nil {
			return extract.Table{}, NewJobError(CodeCheckpoint, "handoff aborted", cerr)
		}
		opts.NoCache = true
		data, ferr = j.Fetcher.Fetch(opts)
		if ferr != nil {
			return extract.Table{}, NewJobError(CodeRender, "refetching event page after handoff failed", ferr)
		}
	}

	if !data.OK() {
		return extract.Table{}, NewJobError(CodeRender, fmt.Sprintf("event page returned HTTP %d", data.StatusCode), nil)
	}

	table, ok := extract.First(extract.Scan(data.HTML), extract.Entries)
	if !ok {
		return extract.Table{}, NewJobError(CodeNoMatch, "no online entries table with Name and date columns", ErrNoMatchingTable)
	}

	log.Info().
		Str("run_id", rc.RunID).
		Str("url", j.URL).
		Int("players", table.Len()).
		Dur("elapsed", rc.Elapsed()).
		Msg("Entries job finished")
	return table, nil
}

// EntriesResult is the outcome of one entries job within a batch.
type EntriesResult struct {
	URL   string
	Table extract.Table
	Err   error
}

// EntriesBatch runs one entries job per URL on a bounded worker pool. Each
// worker obtains its own fetcher from the factory so browser sessions are
// never shared between concurrent jobs. Batches run without a human
// checkpoint; several concurrent prompts on one terminal cannot work.
type EntriesBatch struct {
	NewFetcher  FetcherFactory
	URLs        []string
	Options     models.RequestOptions
	Concurrency int

	// OnResult is called as each job finishes, in completion order.
	OnResult func(EntriesResult)
}

type batchItem struct {
	index int
	url   string
}

type batchResult struct {
	index int
	res   EntriesResult
}

// Run processes every URL and returns the results in input order.
func (b *EntriesBatch) Run(ctx context.Context) []EntriesResult {
	if len(b.URLs) == 0 {
		return nil
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(b.URLs) {
		concurrency = len(b.URLs)
	}

	items := make(chan batchItem, len(b.URLs))
	results := make(chan batchResult, len(b.URLs))

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go b.worker(ctx, w, items, results, &wg)
	}

	for i, u := range b.URLs {
		items <- batchItem{index: i, url: u}
	}
	close(items)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]EntriesResult, len(b.URLs))
	for r := range results {
		out[r.index] = r.res
		if b.OnResult != nil {
			b.OnResult(r.res)
		}
	}
	return out
}

// worker consumes batch items until the channel drains, running one job per
// URL on a fetcher of its own.
func (b *EntriesBatch) worker(ctx context.Context, id int, items <-chan batchItem, results chan<- batchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	fetcher, release, err := b.NewFetcher(ctx)
	if err != nil {
		for it := range items {
			results <- batchResult{it.index, EntriesResult{URL: it.url, Err: NewJobError(CodeRender, "no fetcher available", err)}}
		}
		return
	}
	defer release()

	log.Debug().Int("worker_id", id).Msg("Entries worker started")
	for it := range items {
		select {
		case <-ctx.Done():
			results <- batchResult{it.index, EntriesResult{URL: it.url, Err: ctx.Err()}}
			continue
		default:
		}

		jctx := reqctx.WithRun(ctx)
		job := &EntriesJob{Fetcher: fetcher, URL: it.url, Options: b.Options}
		table, jerr := job.Run(jctx)
		results <- batchResult{it.index, EntriesResult{URL: it.url, Table: table, Err: reqctx.NewRunError(jctx, jerr)}}
	}
	log.Debug().Int("worker_id", id).Msg("Entries worker finished")
}
