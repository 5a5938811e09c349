// internal/cli/match.go
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/roster"
	"github.com/court-tools/rankpull/internal/ui"
	"github.com/court-tools/rankpull/internal/utils/output"
)

var (
	matchNames    string
	matchRankings string
	matchOutput   string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a pasted player list against a downloaded rankings file",
	Long: `Looks up player names in a rankings file downloaded earlier and writes
one row per name with the player's rank, points, county, and age group.

The names come from a text file or stdin and can be pasted straight from a
draw sheet or an online entry list; header lines, seeding numbers, and
position labels like "Maindraw 12" are stripped automatically. Names that
are not in the rankings file keep an empty row so nobody silently
disappears from the output.`,
	Example: `  # Names copied from a draw sheet
  rankpull match --names players.txt --rankings rankings_downloaded.csv

  # Paste names straight in
  cat draw.txt | rankpull match --names - --rankings rankings_downloaded.csv -o matched.csv`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	markStandalone(matchCmd)

	matchCmd.Flags().StringVar(&matchNames, "names", "", "Text file with player names, or - for stdin (required)")
	matchCmd.Flags().StringVar(&matchRankings, "rankings", "", "Rankings CSV to look names up in (required)")
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "matched_players.csv", "Output file (.csv, .xlsx, or .json)")
	matchCmd.MarkFlagRequired("names")
	matchCmd.MarkFlagRequired("rankings")
}

func runMatch(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if matchNames == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(matchNames)
	}
	if err != nil {
		return fmt.Errorf("reading names: %w", err)
	}

	names := roster.ParsePlayers(string(raw))
	if len(names) == 0 {
		return fmt.Errorf("no player names found in the input")
	}

	rankings, err := output.LoadCSV(matchRankings)
	if err != nil {
		return fmt.Errorf("reading rankings: %w", err)
	}

	matched := roster.Match(names, rankings)

	// Unmatched names have every cell beyond Name empty
	found := 0
	for _, row := range matched.Rows {
		for _, col := range matched.Columns {
			if col != "Name" && row[col] != "" {
				found++
				break
			}
		}
	}

	if err := output.SaveTable(matched, matchOutput); err != nil {
		return fmt.Errorf("saving output: %w", err)
	}

	fmt.Printf("\n%s Matched %s of %d players, saved to %s\n",
		ui.Success("✓"),
		ui.Bold(fmt.Sprintf("%d", found)),
		len(names),
		ui.ColorCyan+matchOutput+ui.ColorReset)
	if found < len(names) {
		fmt.Println(ui.Info(fmt.Sprintf("  %d players were not found in the rankings file", len(names)-found)))
	}
	fmt.Println()
	return nil
}
