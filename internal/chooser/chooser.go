// Package chooser ranks candidate tournaments from a planning CSV by a
// suitability score built from draw difficulty, travel time, and grade or
// surface preferences. Lower scores read as better fits.
package chooser

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/court-tools/rankpull/internal/extract"
)

// Preferences narrow the candidate list and bias the scoring.
type Preferences struct {
	Grades    []string // keep only these grades when non-empty
	Surfaces  []string // keep only these surfaces when non-empty
	MaxTravel float64  // hours; zero or negative means no limit
}

const (
	difficultyWeight  = 2.0
	travelWeight      = 1.0
	preferenceBonus   = 1.0
	defaultDifficulty = 5.0
	defaultTravel     = 2.0
)

// Normalize canonicalizes planning-sheet headers so hand-built CSVs with
// verbose labels ("Estimated Draw Strength (1 easy - 10 very hard)") score
// the same as minimal ones.
func Normalize(t extract.Table) extract.Table {
	renames := make(map[string]string)
	for _, col := range t.Columns {
		if canon := canonicalLabel(col); canon != col {
			renames[col] = canon
		}
	}
	out := t
	for old, canon := range renames {
		out = out.RenameColumn(old, canon)
	}
	return out
}

func canonicalLabel(col string) string {
	low := strings.ToLower(strings.TrimSpace(col))
	switch {
	case strings.Contains(low, "name") || strings.Contains(low, "tournament"):
		return "Name"
	case strings.Contains(low, "week") || strings.Contains(low, "start"):
		return "Week"
	case strings.Contains(low, "grade"):
		return "Grade"
	case strings.Contains(low, "surface"):
		return "Surface"
	case strings.Contains(low, "difficulty") || strings.Contains(low, "strength"):
		return "Difficulty"
	case strings.Contains(low, "travel"):
		return "TravelHours"
	}
	return strings.TrimSpace(col)
}

// Filter keeps tournaments matching the preferences: grade and surface
// equality when preference lists are set, and travel hours at or under the
// limit when one is set. Rows without a parseable travel value fail an
// active travel limit.
func Filter(t extract.Table, prefs Preferences) extract.Table {
	out := extract.Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if len(prefs.Grades) > 0 && !matchesPref(row["Grade"], prefs.Grades) {
			continue
		}
		if len(prefs.Surfaces) > 0 && !matchesPref(row["Surface"], prefs.Surfaces) {
			continue
		}
		if prefs.MaxTravel > 0 {
			travel, ok := parseNumber(row["TravelHours"])
			if !ok || travel > prefs.MaxTravel {
				continue
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Rank scores every tournament and returns the table sorted most suitable
// first, with a Score column appended. Difficulty weighs double, travel
// hours weigh single, and each matched grade or surface preference takes a
// point off.
func Rank(t extract.Table, prefs Preferences) extract.Table {
	type scored struct {
		row   extract.Row
		score float64
	}

	rows := make([]scored, 0, t.Len())
	for _, row := range t.Rows {
		difficulty, ok := parseNumber(row["Difficulty"])
		if !ok {
			difficulty = defaultDifficulty
		}
		travel, ok := parseNumber(row["TravelHours"])
		if !ok {
			travel = defaultTravel
		}

		score := difficulty*difficultyWeight + travel*travelWeight
		if matchesPref(row["Grade"], prefs.Grades) {
			score -= preferenceBonus
		}
		if matchesPref(row["Surface"], prefs.Surfaces) {
			score -= preferenceBonus
		}
		score = math.Round(score*100) / 100

		rows = append(rows, scored{row: row, score: score})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score < rows[j].score })

	out := extract.Table{Columns: append(append([]string(nil), t.Columns...), "Score")}
	for _, r := range rows {
		row := make(extract.Row, len(r.row)+1)
		for k, v := range r.row {
			row[k] = v
		}
		row["Score"] = strconv.FormatFloat(r.score, 'f', 2, 64)
		out.Rows = append(out.Rows, row)
	}
	return out
}

func matchesPref(value string, prefs []string) bool {
	v := strings.TrimSpace(value)
	for _, p := range prefs {
		if strings.EqualFold(v, strings.TrimSpace(p)) {
			return true
		}
	}
	return false
}

func parseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
