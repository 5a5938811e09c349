// internal/jobs/rankings_test.go
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

const testBaseURL = "https://example.com/ranking/category.aspx?id=49130&category=4545"

// stubFetcher serves canned pages keyed by URL; unknown URLs come back 404.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]*models.PageData
	err   error
	calls []string
}

func (f *stubFetcher) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts.URL)
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.pages[opts.URL]; ok {
		return d, nil
	}
	return &models.PageData{URL: opts.URL, StatusCode: 404}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func okPage(html string) *models.PageData {
	return &models.PageData{StatusCode: 200, HTML: html, TableCount: strings.Count(html, "<table")}
}

// rankingMarkup builds a page with count ranking rows starting at startRank.
func rankingMarkup(startRank, count int) string {
	var sb strings.Builder
	sb.WriteString("<table><tr><th>Rank</th><th>Player</th><th>Singles points</th></tr>")
	for i := 0; i < count; i++ {
		rank := startRank + i
		fmt.Fprintf(&sb, "<tr><td>%d</td><td>Player %d</td><td>%d</td></tr>", rank, rank, 2000-rank)
	}
	sb.WriteString("</table>")
	return sb.String()
}

func TestPagesNeeded(t *testing.T) {
	cases := []struct {
		target, pageSize, want int
	}{
		{60, 25, 3},
		{40, 25, 2},
		{25, 25, 1},
		{26, 25, 2},
		{1, 25, 1},
		{0, 25, 0},
		{10, 0, 0},
	}
	for _, tc := range cases {
		if got := PagesNeeded(tc.target, tc.pageSize); got != tc.want {
			t.Errorf("PagesNeeded(%d, %d): expected %d, got %d", tc.target, tc.pageSize, got, tc.want)
		}
	}
}

func TestRankingsJob_FetchesExactlyNeededPages(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL:                okPage(rankingMarkup(1, 25)),
		testBaseURL + "&p=2&ps=25": okPage(rankingMarkup(26, 25)),
		testBaseURL + "&p=3&ps=25": okPage(rankingMarkup(51, 10)),
		testBaseURL + "&p=4&ps=25": okPage(rankingMarkup(61, 25)), // must never be requested
	}}

	var pagesSeen []int
	job := &RankingsJob{
		Fetcher:        fetcher,
		BaseURL:        testBaseURL,
		MaxPlayers:     60,
		ResultsPerPage: 25,
		OnPage:         func(page, pages, rows int) { pagesSeen = append(pagesSeen, page) },
	}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Len() != 60 {
		t.Errorf("expected 60 rows, got %d", got.Len())
	}
	wantCalls := []string{testBaseURL, testBaseURL + "&p=2&ps=25", testBaseURL + "&p=3&ps=25"}
	if len(fetcher.calls) != len(wantCalls) {
		t.Fatalf("expected %d fetches, got %v", len(wantCalls), fetcher.calls)
	}
	for i, want := range wantCalls {
		if fetcher.calls[i] != want {
			t.Errorf("fetch %d: expected %s, got %s", i, want, fetcher.calls[i])
		}
	}
	if len(pagesSeen) != 3 {
		t.Errorf("expected 3 page callbacks, got %v", pagesSeen)
	}
	if got.HasColumn("Rank.1") {
		t.Error("artifact column present in a result that never had duplicates")
	}
}

func TestRankingsJob_TruncatesToTarget(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL:                okPage(rankingMarkup(1, 25)),
		testBaseURL + "&p=2&ps=25": okPage(rankingMarkup(26, 25)),
	}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 40, ResultsPerPage: 25}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Len() != 40 {
		t.Fatalf("expected exactly 40 rows, got %d", got.Len())
	}
	if got.Rows[0]["Rank"] != "1" || got.Rows[39]["Rank"] != "40" {
		t.Errorf("expected rows 1-40, got first=%s last=%s", got.Rows[0]["Rank"], got.Rows[39]["Rank"])
	}
}

func TestRankingsJob_StopsEarlyOnceTargetReached(t *testing.T) {
	// Pages can return more rows than the nominal page size; the third
	// planned page must not be fetched once the first two cover the target.
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL:                okPage(rankingMarkup(1, 35)),
		testBaseURL + "&p=2&ps=25": okPage(rankingMarkup(36, 30)),
		testBaseURL + "&p=3&ps=25": okPage(rankingMarkup(66, 25)),
	}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 60, ResultsPerPage: 25}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("expected 2 fetches, got %v", fetcher.calls)
	}
	if got.Len() != 60 || got.Rows[59]["Rank"] != "60" {
		t.Errorf("expected truncation to rank 60, got %d rows", got.Len())
	}
}

func TestRankingsJob_SkipsPagesWithoutRows(t *testing.T) {
	// Page 2 is a 404, page 3 has no table at all; both are skipped and the
	// job still succeeds with what page 1 gave.
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL:                okPage(rankingMarkup(1, 25)),
		testBaseURL + "&p=3&ps=25": okPage("<html><body>nothing here</body></html>"),
	}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 75, ResultsPerPage: 25}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.Len() != 25 {
		t.Errorf("expected the 25 rows from page 1, got %d", got.Len())
	}
	if fetcher.callCount() != 3 {
		t.Errorf("expected all 3 planned pages to be attempted, got %v", fetcher.calls)
	}
}

func TestRankingsJob_FailsWhenNothingFound(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL: okPage("<p>maintenance</p>"),
	}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 10, ResultsPerPage: 25}

	_, err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected a job failure")
	}
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeNoRows {
		t.Errorf("expected CodeNoRows, got %v", err)
	}
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows in chain, got %v", err)
	}
}

func TestRankingsJob_DropsDuplicateRankColumn(t *testing.T) {
	markup := `<table>
		<tr><th>Rank</th><th>Player</th><th>Rank</th></tr>
		<tr><td>1</td><td>Alice Archer</td><td>1</td></tr>
		<tr><td>2</td><td>Ben Briggs</td><td>2</td></tr>
	</table>`
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL: okPage(markup),
	}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 2, ResultsPerPage: 25}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.HasColumn("Rank.1") {
		t.Errorf("artifact column survived: %v", got.Columns)
	}
	if got.Len() != 2 || got.Rows[0]["Player"] != "Alice Archer" {
		t.Errorf("rows damaged by artifact removal: %v", got.Rows)
	}
}

func TestRankingsJob_CheckpointRunsAfterFirstPageOnly(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL:                okPage(rankingMarkup(1, 25)),
		testBaseURL + "&p=2&ps=25": okPage(rankingMarkup(26, 25)),
	}}

	checkpoints := 0
	job := &RankingsJob{
		Fetcher:        fetcher,
		BaseURL:        testBaseURL,
		MaxPlayers:     50,
		ResultsPerPage: 25,
		Checkpoint: func(ctx context.Context, url string) error {
			checkpoints++
			if url != testBaseURL {
				t.Errorf("checkpoint got wrong url: %s", url)
			}
			return nil
		},
	}

	got, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if checkpoints != 1 {
		t.Errorf("expected exactly one checkpoint, got %d", checkpoints)
	}
	// first page is fetched, handed off, then fetched again
	wantCalls := []string{testBaseURL, testBaseURL, testBaseURL + "&p=2&ps=25"}
	if len(fetcher.calls) != len(wantCalls) {
		t.Fatalf("expected calls %v, got %v", wantCalls, fetcher.calls)
	}
	for i, want := range wantCalls {
		if fetcher.calls[i] != want {
			t.Errorf("call %d: expected %s, got %s", i, want, fetcher.calls[i])
		}
	}
	if got.Len() != 50 {
		t.Errorf("expected 50 rows, got %d", got.Len())
	}
}

func TestRankingsJob_CheckpointErrorAbortsJob(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]*models.PageData{
		testBaseURL: okPage(rankingMarkup(1, 25)),
	}}
	job := &RankingsJob{
		Fetcher:        fetcher,
		BaseURL:        testBaseURL,
		MaxPlayers:     10,
		ResultsPerPage: 25,
		Checkpoint: func(ctx context.Context, url string) error {
			return errors.New("operator walked away")
		},
	}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeCheckpoint {
		t.Errorf("expected CodeCheckpoint, got %v", err)
	}
}

func TestRankingsJob_FetchErrorFailsJob(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("browser crashed")}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 10, ResultsPerPage: 25}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeRender {
		t.Errorf("expected CodeRender, got %v", err)
	}
}

type panickyFetcher struct{}

func (panickyFetcher) Fetch(models.RequestOptions) (*models.PageData, error) {
	panic("boom")
}

func TestRankingsJob_RecoversPanic(t *testing.T) {
	job := &RankingsJob{Fetcher: panickyFetcher{}, BaseURL: testBaseURL, MaxPlayers: 10, ResultsPerPage: 25}

	_, err := job.Run(context.Background())
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Code != CodeUnexpected {
		t.Errorf("expected a recovered CodeUnexpected failure, got %v", err)
	}
}

func TestRankingsJob_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &stubFetcher{pages: map[string]*models.PageData{}}
	job := &RankingsJob{Fetcher: fetcher, BaseURL: testBaseURL, MaxPlayers: 10, ResultsPerPage: 25}

	_, err := job.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if fetcher.callCount() != 0 {
		t.Errorf("expected no fetches after cancellation, got %v", fetcher.calls)
	}
}
