// internal/cli/rankings.go
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/config"
	"github.com/court-tools/rankpull/internal/jobs"
	"github.com/court-tools/rankpull/internal/ui"
	headerutil "github.com/court-tools/rankpull/internal/utils/headers"
	"github.com/court-tools/rankpull/internal/utils/output"
	urlutil "github.com/court-tools/rankpull/internal/utils/url"
	"github.com/court-tools/rankpull/pkg/models"
)

var (
	rankingsOutput      string
	rankingsMaxPlayers  int
	rankingsPerPage     int
	rankingsMode        string
	rankingsSession     string
	rankingsInteractive bool
	rankingsHeaders     []string
	rankingsSettle      int
)

// rankingsCmd represents the rankings command
var rankingsCmd = &cobra.Command{
	Use:   "rankings <url>",
	Short: "Download a paginated rankings table",
	Long: `Downloads a player rankings table that is spread across result pages.

The page is refetched with increasing page numbers until the requested
number of players has been collected, and the combined table is saved with
the rank, name, and points columns cleaned up.

Use --interactive when the site greets you with a cookie banner or login
wall: the first page opens in a visible browser, you deal with the prompt,
and the download continues from there.`,
	Example: `  # First 200 ranked players as CSV
  rankpull rankings https://rankings.example.org/adult --max-players=200

  # Member-only list through a saved login session
  rankpull rankings https://rankings.example.org/adult --session=county --mode=spa

  # Hand the first page over for the cookie banner, save a spreadsheet
  rankpull rankings https://rankings.example.org/adult --interactive -o rankings.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runRankings,
}

func init() {
	rootCmd.AddCommand(rankingsCmd)

	rankingsCmd.Flags().StringVarP(&rankingsOutput, "output", "o", "rankings_downloaded.csv", "Output file (.csv, .xlsx, or .json)")
	rankingsCmd.Flags().IntVar(&rankingsMaxPlayers, "max-players", 0, "Players to collect (default 1000)")
	rankingsCmd.Flags().IntVar(&rankingsPerPage, "results-per-page", 0, "Rows the site shows per page (default 25)")
	rankingsCmd.Flags().StringVarP(&rankingsMode, "mode", "m", "auto", "Fetch mode: auto, static, or spa")
	rankingsCmd.Flags().StringVarP(&rankingsSession, "session", "s", "", "Saved login session to fetch with")
	rankingsCmd.Flags().BoolVarP(&rankingsInteractive, "interactive", "i", false, "Pause on the first page for manual login or cookie prompts")
	rankingsCmd.Flags().StringArrayVarP(&rankingsHeaders, "header", "H", nil, "Custom header as 'Key: Value' (repeatable)")
	rankingsCmd.Flags().IntVar(&rankingsSettle, "settle", 0, "Extra seconds to let the page settle after rendering")
}

func runRankings(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	baseURL := args[0]
	if err := urlutil.ValidateURL(baseURL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	mode, err := parseMode(rankingsMode)
	if err != nil {
		return err
	}

	maxPlayers := rankingsMaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = a.Config.MaxPlayers
	}
	if maxPlayers > config.MaxPlayersLimit {
		return fmt.Errorf("max players %d exceeds the limit of %d", maxPlayers, config.MaxPlayersLimit)
	}

	perPage := rankingsPerPage
	if perPage <= 0 {
		perPage = a.Config.ResultsPerPage
	}
	if perPage > config.ResultsPerPageLimit {
		return fmt.Errorf("results per page %d exceeds the limit of %d", perPage, config.ResultsPerPageLimit)
	}

	if rankingsInteractive {
		if mode == models.ModeStatic {
			return fmt.Errorf("--interactive needs a browser; drop --mode=static")
		}
		// The operator has to see the page to act on it
		mode = models.ModeSPA
		a.Config.BrowserHeadless = false
	}

	// One fetcher for the whole job keeps cookie state across pages
	fetcher, cleanup, err := a.FetcherFactory(mode)(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	opts := models.RequestOptions{
		Mode:          mode,
		Headers:       headerutil.ParseHeaders(rankingsHeaders),
		SessionName:   rankingsSession,
		SettleSeconds: rankingsSettle,
	}

	pages := jobs.PagesNeeded(maxPlayers, perPage)
	bar := progressbar.NewOptions(pages,
		progressbar.OptionSetDescription("Collecting pages"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	job := &jobs.RankingsJob{
		Fetcher:        fetcher,
		BaseURL:        baseURL,
		MaxPlayers:     maxPlayers,
		ResultsPerPage: perPage,
		Options:        opts,
		OnPage: func(page, pages, rows int) {
			_ = bar.Add(1)
		},
	}
	if rankingsInteractive {
		job.Checkpoint = jobs.PromptCheckpoint(os.Stdin, os.Stdout)
	}

	start := time.Now()
	table, err := job.Run(cmd.Context())
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if err := output.SaveTable(table, rankingsOutput); err != nil {
		return fmt.Errorf("saving output: %w", err)
	}

	fmt.Printf("\n%s Saved %s players to %s %s\n",
		ui.Success("✓"),
		ui.Bold(fmt.Sprintf("%d", table.Len())),
		ui.ColorCyan+rankingsOutput+ui.ColorReset,
		ui.ColorDim+fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond))+ui.ColorReset)
	return nil
}

// parseMode validates a --mode flag value.
func parseMode(s string) (models.RenderMode, error) {
	switch models.RenderMode(strings.ToLower(strings.TrimSpace(s))) {
	case models.ModeAuto, models.RenderMode(""):
		return models.ModeAuto, nil
	case models.ModeStatic:
		return models.ModeStatic, nil
	case models.ModeSPA:
		return models.ModeSPA, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use auto, static, or spa)", s)
	}
}
