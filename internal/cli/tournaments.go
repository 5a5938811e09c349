// internal/cli/tournaments.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/chooser"
	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/internal/ui"
	"github.com/court-tools/rankpull/internal/utils/output"
)

var (
	tournamentsInput     string
	tournamentsGrades    []string
	tournamentsSurfaces  []string
	tournamentsMaxTravel float64
	tournamentsOutput    string
)

// tournamentsCmd represents the tournaments command
var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "Rank candidate tournaments by suitability",
	Long: `Scores a planning spreadsheet of candidate tournaments and sorts it
with the most suitable first.

The input CSV needs name, week, grade, surface, difficulty (1 to 10), and
travel hours columns; verbose spreadsheet headers are recognized too.
Lower scores win: easier draws and shorter travel push a tournament up,
and matching a preferred grade or surface earns a bonus.`,
	Example: `  rankpull tournaments --input plan.csv --grade 3 --surface hard

  # Drop anything over two hours away and save the ranked list
  rankpull tournaments --input plan.csv --max-travel 2 -o ranked.csv`,
	RunE: runTournaments,
}

func init() {
	rootCmd.AddCommand(tournamentsCmd)
	markStandalone(tournamentsCmd)

	tournamentsCmd.Flags().StringVar(&tournamentsInput, "input", "", "Planning CSV with candidate tournaments (required)")
	tournamentsCmd.Flags().StringSliceVar(&tournamentsGrades, "grade", nil, "Preferred grade (repeatable)")
	tournamentsCmd.Flags().StringSliceVar(&tournamentsSurfaces, "surface", nil, "Preferred surface (repeatable)")
	tournamentsCmd.Flags().Float64Var(&tournamentsMaxTravel, "max-travel", 0, "Drop tournaments further than this many hours away")
	tournamentsCmd.Flags().StringVarP(&tournamentsOutput, "output", "o", "", "Save the ranked list (.csv, .xlsx, or .json) instead of printing")
	tournamentsCmd.MarkFlagRequired("input")
}

func runTournaments(cmd *cobra.Command, args []string) error {
	table, err := output.LoadCSV(tournamentsInput)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	prefs := chooser.Preferences{
		Grades:    tournamentsGrades,
		Surfaces:  tournamentsSurfaces,
		MaxTravel: tournamentsMaxTravel,
	}

	ranked := chooser.Rank(chooser.Filter(chooser.Normalize(table), prefs), prefs)
	if ranked.Empty() {
		return fmt.Errorf("no tournaments left after filtering")
	}

	if tournamentsOutput != "" {
		if err := output.SaveTable(ranked, tournamentsOutput); err != nil {
			return fmt.Errorf("saving output: %w", err)
		}
		fmt.Printf("\n%s Ranked %s tournaments, saved to %s\n",
			ui.Success("✓"),
			ui.Bold(fmt.Sprintf("%d", ranked.Len())),
			ui.ColorCyan+tournamentsOutput+ui.ColorReset)
		return nil
	}

	printTable(ranked)
	return nil
}

// printTable writes a result table to stdout with aligned columns.
func printTable(t extract.Table) {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
		for _, row := range t.Rows {
			if n := len(row[col]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	fmt.Println()
	for i, col := range t.Columns {
		fmt.Printf("%s%-*s%s  ", ui.ColorBold, widths[i], col, ui.ColorReset)
	}
	fmt.Println()

	for _, row := range t.Rows {
		for i, col := range t.Columns {
			fmt.Printf("%-*s  ", widths[i], row[col])
		}
		fmt.Println()
	}
	fmt.Println()
}
