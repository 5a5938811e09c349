// internal/cli/entries.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/app"
	"github.com/court-tools/rankpull/internal/jobs"
	"github.com/court-tools/rankpull/internal/ui"
	headerutil "github.com/court-tools/rankpull/internal/utils/headers"
	"github.com/court-tools/rankpull/internal/utils/output"
	urlutil "github.com/court-tools/rankpull/internal/utils/url"
	"github.com/court-tools/rankpull/pkg/models"
)

var (
	entriesOutput      string
	entriesMode        string
	entriesSession     string
	entriesInteractive bool
	entriesConcurrency int
	entriesHeaders     []string
	entriesSettle      int
)

// entriesCmd represents the entries command
var entriesCmd = &cobra.Command{
	Use:   "entries <url>...",
	Short: "Extract player entry lists from tournament pages",
	Long: `Extracts the list of entered players from tournament event pages.

Each page's online entries table is located, junk rows are dropped, and the
player names are saved one file per URL. Several URLs are processed
concurrently, each in its own browser session.

The --interactive handoff works with a single URL only; concurrent prompts
on one terminal cannot work.`,
	Example: `  # Entry list of one event
  rankpull entries https://tournaments.example.org/event/4121

  # Several events at once, three at a time
  rankpull entries https://tournaments.example.org/event/4121 https://tournaments.example.org/event/4180 --concurrency=3

  # Behind a login wall, handing the first page over
  rankpull entries https://tournaments.example.org/event/4121 --interactive`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)

	entriesCmd.Flags().StringVarP(&entriesOutput, "output", "o", "tournament_players.csv", "Output file; multiple URLs get a numbered suffix")
	entriesCmd.Flags().StringVarP(&entriesMode, "mode", "m", "auto", "Fetch mode: auto, static, or spa")
	entriesCmd.Flags().StringVarP(&entriesSession, "session", "s", "", "Saved login session to fetch with")
	entriesCmd.Flags().BoolVarP(&entriesInteractive, "interactive", "i", false, "Pause on the page for manual login or cookie prompts (single URL only)")
	entriesCmd.Flags().IntVarP(&entriesConcurrency, "concurrency", "c", 2, "Event pages to process at once")
	entriesCmd.Flags().StringArrayVarP(&entriesHeaders, "header", "H", nil, "Custom header as 'Key: Value' (repeatable)")
	entriesCmd.Flags().IntVar(&entriesSettle, "settle", 0, "Extra seconds to let the page settle after rendering")
}

func runEntries(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	urls := args
	for _, u := range urls {
		if err := urlutil.ValidateURL(u); err != nil {
			return fmt.Errorf("invalid URL %q: %w", u, err)
		}
	}

	mode, err := parseMode(entriesMode)
	if err != nil {
		return err
	}

	if entriesInteractive && len(urls) > 1 {
		return fmt.Errorf("--interactive works with a single URL, got %d", len(urls))
	}

	opts := models.RequestOptions{
		Mode:          mode,
		Headers:       headerutil.ParseHeaders(entriesHeaders),
		SessionName:   entriesSession,
		SettleSeconds: entriesSettle,
	}

	start := time.Now()

	var results []jobs.EntriesResult
	if entriesInteractive {
		result, rerr := runEntriesInteractive(cmd, a, urls[0], mode, opts)
		if rerr != nil {
			return rerr
		}
		results = []jobs.EntriesResult{result}
	} else {
		bar := progressbar.NewOptions(len(urls),
			progressbar.OptionSetDescription("Extracting entries"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		batch := &jobs.EntriesBatch{
			NewFetcher:  a.FetcherFactory(mode),
			URLs:        urls,
			Options:     opts,
			Concurrency: entriesConcurrency,
			OnResult: func(jobs.EntriesResult) {
				_ = bar.Add(1)
			},
		}
		results = batch.Run(cmd.Context())
		_ = bar.Finish()
	}

	fmt.Println()
	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%s %s\n  %s\n", ui.Error("✗"), res.URL, ui.ColorDim+res.Err.Error()+ui.ColorReset)
			continue
		}

		path := entriesOutputPath(entriesOutput, i+1, len(results))
		if err := output.SaveTable(res.Table, path); err != nil {
			failed++
			fmt.Printf("%s %s\n  %s\n", ui.Error("✗"), res.URL, ui.ColorDim+err.Error()+ui.ColorReset)
			continue
		}

		fmt.Printf("%s %s players from %s\n  saved to %s\n",
			ui.Success("✓"),
			ui.Bold(fmt.Sprintf("%d", res.Table.Len())),
			res.URL,
			ui.ColorCyan+path+ui.ColorReset)
	}

	fmt.Printf("\n%s\n", ui.ColorDim+fmt.Sprintf("%d of %d pages done in %s", len(results)-failed, len(results), time.Since(start).Round(time.Millisecond))+ui.ColorReset)

	if failed == len(results) {
		return fmt.Errorf("no entry list could be extracted")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(results))
	}
	return nil
}

// runEntriesInteractive runs a single entries job with the human handoff in a
// visible browser.
func runEntriesInteractive(cmd *cobra.Command, a *app.Application, url string, mode models.RenderMode, opts models.RequestOptions) (jobs.EntriesResult, error) {
	if mode == models.ModeStatic {
		return jobs.EntriesResult{}, fmt.Errorf("--interactive needs a browser; drop --mode=static")
	}
	a.Config.BrowserHeadless = false

	fetcher, cleanup, err := a.FetcherFactory(models.ModeSPA)(cmd.Context())
	if err != nil {
		return jobs.EntriesResult{}, err
	}
	defer cleanup()

	job := &jobs.EntriesJob{
		Fetcher:    fetcher,
		URL:        url,
		Options:    opts,
		Checkpoint: jobs.PromptCheckpoint(os.Stdin, os.Stdout),
	}
	table, err := job.Run(cmd.Context())
	return jobs.EntriesResult{URL: url, Table: table, Err: err}, nil
}

// entriesOutputPath returns the per-URL output path: the base path as-is for
// a single URL, with a numbered suffix before the extension otherwise.
func entriesOutputPath(base string, index, total int) string {
	if total <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), index, ext)
}
