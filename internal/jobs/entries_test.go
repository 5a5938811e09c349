// internal/jobs/entries_test.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/court-tools/rankpull/pkg/models"
)

// entriesMarkup builds an event page with one online-entries table.
func entriesMarkup(names ...string) string {
	var sb strings.Builder
	sb.WriteString("<table><tr><th>Name</th><th>Entry date</th><th>Status</th></tr>")
	for _, n := range names {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>01/06/2026</td><td></td></tr>", n)
	}
	sb.WriteString("</table>")
	return sb.String()
}

// sequenceFetcher replays canned responses in call order.
type sequenceFetcher struct {
	mu        sync.Mutex
	responses []*models.PageData
	calls     int
}

func (f *sequenceFetcher) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.responses) {
		return nil, errors.New("no more canned responses")
	}
	d := f.responses[f.calls]
	f.calls++
	return d, nil
}

func TestEntriesJob_ExtractsPlayerNames(t *testing.T) {
	markup := `<table><tr><th>Draw</th><th>Round</th></tr><tr><td>MS</td><td>1</td></tr></table>` +
		`<table>
			<tr><th>Name</th><th>Entry date</th><th>Status</th></tr>
			<tr><td>  Alex Smith </td><td>01/06/2026</td><td></td></tr>
			<tr><td>Gia Holt</td><td>02/06/2026</td><td>Withdrawn</td></tr>
			<tr><td>nan</td><td>03/06/2026</td><td></td></tr>
			<tr><td>Mia Torres</td><td>03/06/2026</td><td>Confirmed</td></tr>
		</table>`
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		"https://example.com/event": okPage(markup),
	}}
	job := &EntriesJob{Fetcher: fetcher, URL: "https://example.com/event"}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(got.Columns) != 1 || got.Columns[0] != "Name" {
		t.Fatalf("expected a Name-only result, got columns %v", got.Columns)
	}
	want := []string{"Alex Smith", "Mia Torres"}
	if got.Len() != len(want) {
		t.Fatalf("expected %d players, got %d: %v", len(want), got.Len(), got.Rows)
	}
	for i, name := range want {
		if got.Rows[i]["Name"] != name {
			t.Errorf("player %d: expected %q, got %q", i, name, got.Rows[i]["Name"])
		}
	}
}

func TestEntriesJob_NoEntriesTable(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		"https://example.com/event": okPage(rankingMarkup(1, 3)),
	}}
	job := &EntriesJob{Fetcher: fetcher, URL: "https://example.com/event"}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeNoMatch {
		t.Fatalf("expected CodeNoMatch, got %v", err)
	}
	if !errors.Is(err, ErrNoMatchingTable) {
		t.Errorf("expected ErrNoMatchingTable in chain, got %v", err)
	}
}

func TestEntriesJob_HTTPErrorFailsJob(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		"https://example.com/event": {StatusCode: 503, HTML: "<p>down</p>"},
	}}
	job := &EntriesJob{Fetcher: fetcher, URL: "https://example.com/event"}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeRender {
		t.Errorf("expected CodeRender for HTTP 503, got %v", err)
	}
}

func TestEntriesJob_FetchErrorFailsJob(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("tab crashed")}
	job := &EntriesJob{Fetcher: fetcher, URL: "https://example.com/event"}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeRender {
		t.Errorf("expected CodeRender, got %v", err)
	}
}

func TestEntriesJob_CheckpointRefetchesPage(t *testing.T) {
	// The first load shows a login wall; only the post-handoff load carries
	// the entries table. The job must use the second load.
	fetcher := &sequenceFetcher{responses: []*models.PageData{
		okPage("<p>Please sign in to view entries</p>"),
		okPage(entriesMarkup("Alex Smith", "Mia Torres")),
	}}

	checkpoints := 0
	job := &EntriesJob{
		Fetcher: fetcher,
		URL:     "https://example.com/event",
		Checkpoint: func(ctx context.Context, url string) error {
			checkpoints++
			return nil
		},
	}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if checkpoints != 1 {
		t.Errorf("expected one checkpoint, got %d", checkpoints)
	}
	if fetcher.calls != 2 {
		t.Errorf("expected a refetch after the handoff, got %d fetches", fetcher.calls)
	}
	if got.Len() != 2 {
		t.Errorf("expected 2 players from the refetched page, got %d", got.Len())
	}
}

func TestEntriesJob_CheckpointErrorAbortsJob(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		"https://example.com/event": okPage(entriesMarkup("Alex Smith")),
	}}
	job := &EntriesJob{
		Fetcher: fetcher,
		URL:     "https://example.com/event",
		Checkpoint: func(ctx context.Context, url string) error {
			return errors.New("aborted")
		},
	}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeCheckpoint {
		t.Errorf("expected CodeCheckpoint, got %v", err)
	}
}

func batchFixture(t *testing.T) (*EntriesBatch, *stubFetcher) {
	t.Helper()
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		"https://example.com/event/1": okPage(entriesMarkup("Alice Archer")),
		"https://example.com/event/2": okPage(entriesMarkup("Ben Briggs", "Cara Diaz")),
		"https://example.com/event/3": okPage(entriesMarkup("Dan Egan")),
	}}
	batch := &EntriesBatch{
		NewFetcher: func(ctx context.Context) (Fetcher, func(), error) {
			return fetcher, func() {}, nil
		},
		URLs: []string{
			"https://example.com/event/1",
			"https://example.com/event/2",
			"https://example.com/event/3",
		},
		Concurrency: 2,
	}
	return batch, fetcher
}

func TestEntriesBatch_ResultsInInputOrder(t *testing.T) {
	batch, _ := batchFixture(t)

	results := batch.Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range batch.URLs {
		if results[i].URL != want {
			t.Errorf("result %d: expected url %s, got %s", i, want, results[i].URL)
		}
		if results[i].Err != nil {
			t.Errorf("result %d: unexpected error %v", i, results[i].Err)
		}
	}
	if results[1].Table.Len() != 2 {
		t.Errorf("expected 2 players for event 2, got %d", results[1].Table.Len())
	}
}

func TestEntriesBatch_EachWorkerGetsOwnFetcher(t *testing.T) {
	batch, fetcher := batchFixture(t)

	var mu sync.Mutex
	created, released := 0, 0
	batch.NewFetcher = func(ctx context.Context) (Fetcher, func(), error) {
		mu.Lock()
		created++
		mu.Unlock()
		return fetcher, func() {
			mu.Lock()
			released++
			mu.Unlock()
		}, nil
	}

	batch.Run(context.Background())
	if created != 2 {
		t.Errorf("expected one fetcher per worker, got %d", created)
	}
	if released != created {
		t.Errorf("expected every fetcher released, created=%d released=%d", created, released)
	}
}

func TestEntriesBatch_FactoryErrorFailsAllJobs(t *testing.T) {
	batch, _ := batchFixture(t)
	batch.Concurrency = 1
	batch.NewFetcher = func(ctx context.Context) (Fetcher, func(), error) {
		return nil, nil, errors.New("no browser")
	}

	results := batch.Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		var jerr *JobError
		if !errors.As(r.Err, &jerr) || jerr.Code != CodeRender {
			t.Errorf("result %d: expected CodeRender, got %v", i, r.Err)
		}
	}
}

func TestEntriesBatch_MixedResults(t *testing.T) {
	batch, fetcher := batchFixture(t)
	fetcher.pages["https://example.com/event/2"] = okPage("<p>no table on this one</p>")

	failures := 0
	batch.OnResult = func(r EntriesResult) {
		if r.Err != nil {
			failures++
		}
	}

	results := batch.Run(context.Background())
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("expected events 1 and 3 to succeed: %v, %v", results[0].Err, results[2].Err)
	}
	var jerr *JobError
	if !errors.As(results[1].Err, &jerr) || jerr.Code != CodeNoMatch {
		t.Errorf("expected event 2 to fail with CodeNoMatch, got %v", results[1].Err)
	}
	if failures != 1 {
		t.Errorf("expected one failure reported through OnResult, got %d", failures)
	}
}

func TestEntriesBatch_NoURLs(t *testing.T) {
	batch := &EntriesBatch{
		NewFetcher: func(ctx context.Context) (Fetcher, func(), error) {
			t.Error("factory must not run for an empty batch")
			return nil, nil, nil
		},
	}
	if results := batch.Run(context.Background()); results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}
