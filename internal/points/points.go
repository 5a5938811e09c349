// Package points reproduces the weekly ranking arithmetic: parse pasted
// results tables, keep the rolling 52-week window, and combine the best six
// singles results with a quarter-weighted best six doubles.
package points

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/court-tools/rankpull/internal/extract"
)

var (
	weekPattern = regexp.MustCompile(`^(\d{1,4})\D+(\d{1,4})$`)
	gapSplit    = regexp.MustCompile(`\s{2,}`)
	nonDigits   = regexp.MustCompile(`\D`)
)

// ParseWeek reads a tournament week label in either order, "49-2025" or
// "2025-49". The four-digit field is the year; week numbers run 1 to 53.
func ParseWeek(s string) (week, year int, err error) {
	m := weekPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("unrecognized week label %q", s)
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	switch {
	case a > 100:
		year, week = a, b
	case b > 100:
		week, year = a, b
	default:
		return 0, 0, fmt.Errorf("cannot tell week from year in %q", s)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("week %d out of range in %q", week, s)
	}
	return week, year, nil
}

// WeekStart returns the Monday of the given ISO week.
func WeekStart(week, year int) time.Time {
	// January 4 always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// ParseTable reads a results table pasted from a player profile page. The
// first non-empty line is the header; cells split on tabs when the header has
// them, otherwise on runs of two or more spaces. Rows are padded or truncated
// to the header width, and week/points column labels are canonicalized.
func ParseTable(raw string) extract.Table {
	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimRight(ln, " \t\r"))
		}
	}
	if len(lines) == 0 {
		return extract.Table{}
	}

	tabSep := strings.Contains(lines[0], "\t")
	cols := normalizeColumns(splitLine(lines[0], tabSep))

	table := extract.Table{Columns: cols}
	for _, ln := range lines[1:] {
		parts := splitLine(ln, tabSep)
		row := make(extract.Row, len(cols))
		for i, col := range cols {
			if i < len(parts) {
				row[col] = parts[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// splitLine splits one pasted line into cells. Tab-separated lines keep
// empty cells so columns stay aligned; space-separated lines cannot, so
// empties are dropped there.
func splitLine(ln string, tabSep bool) []string {
	if tabSep {
		raw := strings.Split(ln, "\t")
		cells := make([]string, len(raw))
		for i, c := range raw {
			cells[i] = strings.TrimSpace(c)
		}
		return cells
	}
	var cells []string
	for _, c := range gapSplit.Split(strings.TrimSpace(ln), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// normalizeColumns canonicalizes portal header variants: any label
// containing "week" becomes Week and any containing "point" becomes Points.
func normalizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		cl := strings.TrimSpace(c)
		low := strings.ToLower(cl)
		switch {
		case strings.Contains(low, "week"):
			out[i] = "Week"
		case strings.Contains(low, "point"):
			out[i] = "Points"
		default:
			out[i] = cl
		}
	}
	return out
}

// FilterWindow keeps rows whose tournament week started within the 52 weeks
// before asOf, inclusive on both ends. Rows without a parseable week are
// dropped, except that when no row parses at all the table comes back
// unchanged rather than empty.
func FilterWindow(t extract.Table, asOf time.Time) extract.Table {
	if !t.HasColumn("Week") {
		return t
	}

	const window = 52 * 7 * 24 * time.Hour

	starts := make([]time.Time, t.Len())
	parsed := make([]bool, t.Len())
	anyParsed := false
	for i, row := range t.Rows {
		week, year, err := ParseWeek(row["Week"])
		if err != nil {
			continue
		}
		starts[i] = WeekStart(week, year)
		parsed[i] = true
		anyParsed = true
	}
	if !anyParsed {
		return t
	}

	out := extract.Table{Columns: append([]string(nil), t.Columns...)}
	for i, row := range t.Rows {
		if !parsed[i] {
			continue
		}
		delta := asOf.Sub(starts[i])
		if delta < 0 || delta > window {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Summary is the outcome of a best-six calculation.
type Summary struct {
	SinglesTotal    int
	DoublesRaw      int
	DoublesWeighted float64
	FinalTotal      float64
	SinglesUsed     extract.Table
	DoublesUsed     extract.Table
}

// BestSix combines results the way the weekly rankings do for older age
// groups: the best six singles results count in full and the best six
// doubles results count at 25%.
func BestSix(singles, doubles extract.Table) Summary {
	singlesUsed, singlesTotal := bestN(singles, 6)
	doublesUsed, doublesRaw := bestN(doubles, 6)

	weighted := float64(doublesRaw) * 0.25
	return Summary{
		SinglesTotal:    singlesTotal,
		DoublesRaw:      doublesRaw,
		DoublesWeighted: weighted,
		FinalTotal:      float64(singlesTotal) + weighted,
		SinglesUsed:     singlesUsed,
		DoublesUsed:     doublesUsed,
	}
}

// bestN keeps the n highest-scoring rows that carry a parseable Points value.
func bestN(t extract.Table, n int) (extract.Table, int) {
	type scored struct {
		row extract.Row
		pts int
	}
	var rows []scored
	for _, row := range t.Rows {
		pts, ok := parsePoints(row["Points"])
		if !ok {
			continue
		}
		rows = append(rows, scored{row: row, pts: pts})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].pts > rows[j].pts })
	if len(rows) > n {
		rows = rows[:n]
	}

	out := extract.Table{Columns: append([]string(nil), t.Columns...)}
	total := 0
	for _, r := range rows {
		out.Rows = append(out.Rows, r.row)
		total += r.pts
	}
	return out, total
}

// parsePoints strips everything that is not a digit, so "1,500*" scores as
// 1500. Values without any digit do not count.
func parsePoints(v string) (int, bool) {
	digits := nonDigits.ReplaceAllString(v, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
