// internal/cli/points.go
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/internal/points"
	"github.com/court-tools/rankpull/internal/ui"
)

var (
	pointsSingles string
	pointsDoubles string
	pointsAsOf    string
)

// pointsCmd represents the points command
var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Work out a ranking total from pasted points breakdowns",
	Long: `Sums the six best singles results plus a quarter of the six best
doubles results, the way seeding totals are worked out.

The input files hold the points breakdown copied from a player's profile
page: a header line with week and points columns, then one row per result.
Asterisks and thousands separators in the points are ignored. With --as-of
only results inside the 52 weeks before that ranking week count.`,
	Example: `  rankpull points --singles singles.txt --doubles doubles.txt

  # Only count results in the 52 weeks before week 49 of 2025
  rankpull points --singles singles.txt --doubles doubles.txt --as-of 49-2025`,
	RunE: runPoints,
}

func init() {
	rootCmd.AddCommand(pointsCmd)
	markStandalone(pointsCmd)

	pointsCmd.Flags().StringVar(&pointsSingles, "singles", "", "Text file with the singles points breakdown")
	pointsCmd.Flags().StringVar(&pointsDoubles, "doubles", "", "Text file with the doubles points breakdown")
	pointsCmd.Flags().StringVar(&pointsAsOf, "as-of", "", "Ranking week the total is for, as week-year (e.g., 49-2025)")
}

func runPoints(cmd *cobra.Command, args []string) error {
	if pointsSingles == "" && pointsDoubles == "" {
		return fmt.Errorf("provide --singles and/or --doubles input files")
	}

	var asOf time.Time
	if pointsAsOf != "" {
		week, year, err := points.ParseWeek(pointsAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		asOf = points.WeekStart(week, year)
	}

	singles, err := loadPointsTable(pointsSingles)
	if err != nil {
		return err
	}
	doubles, err := loadPointsTable(pointsDoubles)
	if err != nil {
		return err
	}

	if !asOf.IsZero() {
		singles = points.FilterWindow(singles, asOf)
		doubles = points.FilterWindow(doubles, asOf)
	}

	summary := points.BestSix(singles, doubles)

	fmt.Printf("\n%s\n", ui.Bold("Ranking points"))
	if !asOf.IsZero() {
		fmt.Println(ui.Info(fmt.Sprintf("  counting results in the 52 weeks before %s", asOf.Format("2 Jan 2006"))))
	}
	fmt.Println()

	printCountedResults("Singles", summary.SinglesUsed, strconv.Itoa(summary.SinglesTotal))
	printCountedResults("Doubles", summary.DoublesUsed,
		fmt.Sprintf("%d × 0.25 = %s", summary.DoublesRaw, formatPoints(summary.DoublesWeighted)))

	fmt.Printf("  %s %s\n\n", ui.Bold("Total:"), ui.Success(formatPoints(summary.FinalTotal)))
	return nil
}

// loadPointsTable reads and parses one breakdown file; an empty path yields
// an empty table so a missing pane just contributes nothing.
func loadPointsTable(path string) (extract.Table, error) {
	if path == "" {
		return extract.Table{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return extract.Table{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return points.ParseTable(string(raw)), nil
}

func printCountedResults(label string, used extract.Table, total string) {
	fmt.Printf("  %s (best %d): %s\n", label, used.Len(), ui.Bold(total))
	for _, row := range used.Rows {
		if w := row["Week"]; w != "" {
			fmt.Printf("    • week %s: %s points\n", w, row["Points"])
		} else {
			fmt.Printf("    • %s points\n", row["Points"])
		}
	}
	fmt.Println()
}

// formatPoints renders a total without trailing zeros: whole totals print as
// integers, quarter-point doubles totals keep their fraction.
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
