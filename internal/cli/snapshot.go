// internal/cli/snapshot.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/ui"
	headerutil "github.com/court-tools/rankpull/internal/utils/headers"
	"github.com/court-tools/rankpull/internal/utils/output"
	urlutil "github.com/court-tools/rankpull/internal/utils/url"
	"github.com/court-tools/rankpull/pkg/models"
)

var (
	snapshotOutput  string
	snapshotMode    string
	snapshotSession string
	snapshotHeaders []string
	snapshotSettle  int
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <url>",
	Short: "Save a rendered copy of a page for inspection",
	Long: `Fetches a single page and saves what the extractor would see.

Useful when a rankings or entries pull comes back empty: the snapshot shows
whether the table made it into the rendered markup at all. The format
follows the output extension: .html keeps cleaned markup, .md converts the
page to Markdown, .json wraps the page metadata.`,
	Example: `  # Cleaned markup of the rendered page
  rankpull snapshot https://rankings.example.org/adult -o page.html

  # Readable Markdown, forcing the browser path
  rankpull snapshot https://rankings.example.org/adult -o page.md --mode=spa

  # Page metadata only
  rankpull snapshot https://rankings.example.org/adult -o page.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "snapshot.html", "Output file (.html, .md, or .json)")
	snapshotCmd.Flags().StringVarP(&snapshotMode, "mode", "m", "auto", "Fetch mode: auto, static, or spa")
	snapshotCmd.Flags().StringVarP(&snapshotSession, "session", "s", "", "Saved login session to fetch with")
	snapshotCmd.Flags().StringArrayVarP(&snapshotHeaders, "header", "H", nil, "Custom header as 'Key: Value' (repeatable)")
	snapshotCmd.Flags().IntVar(&snapshotSettle, "settle", 0, "Extra seconds to let the page settle after rendering")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	pageURL := args[0]
	if err := urlutil.ValidateURL(pageURL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	mode, err := parseMode(snapshotMode)
	if err != nil {
		return err
	}

	if mode != models.ModeStatic {
		if perr := a.EnsureBrowserPool(cmd.Context()); perr != nil {
			log.Warn().Err(perr).Msg("Browser pool unavailable, falling back to per-fetch browsers")
		}
	}

	opts := models.RequestOptions{
		URL:           pageURL,
		Mode:          mode,
		Headers:       headerutil.ParseHeaders(snapshotHeaders),
		SessionName:   snapshotSession,
		SettleSeconds: snapshotSettle,
		Proxy:         a.Proxies.Next(),
	}

	start := time.Now()
	data, err := a.RendererFor(mode).Fetch(opts)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}
	if !data.OK() {
		log.Warn().Int("status", data.StatusCode).Msg("Page returned a non-OK status, saving anyway")
	}

	if err := output.SaveSnapshot(data, snapshotOutput); err != nil {
		return err
	}

	fmt.Printf("\n%s Saved %s %s\n\n",
		ui.Success("✓"),
		ui.ColorCyan+snapshotOutput+ui.ColorReset,
		ui.ColorDim+fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond))+ui.ColorReset)
	fmt.Printf("  URL:     %s\n", data.URL)
	fmt.Printf("  Status:  %d\n", data.StatusCode)
	if data.Title != "" {
		fmt.Printf("  Title:   %s\n", data.Title)
	}
	fmt.Printf("  Tables:  %d\n\n", data.TableCount)
	return nil
}
