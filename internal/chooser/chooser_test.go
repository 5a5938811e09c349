package chooser

import (
	"strconv"
	"testing"

	"github.com/court-tools/rankpull/internal/extract"
)

func planningTable() extract.Table {
	return extract.Table{
		Columns: []string{"Name", "Week", "Grade", "Surface", "Difficulty", "TravelHours"},
		Rows: []extract.Row{
			{"Name": "Winter Open", "Week": "49-2025", "Grade": "3", "Surface": "Hard", "Difficulty": "3", "TravelHours": "1.5"},
			{"Name": "County Closed", "Week": "50-2025", "Grade": "4", "Surface": "Clay", "Difficulty": "7", "TravelHours": "3"},
			{"Name": "Indoor Cup", "Week": "51-2025", "Grade": "3", "Surface": "Hard", "Difficulty": "", "TravelHours": ""},
		},
	}
}

func TestNormalize_CanonicalizesVerboseHeaders(t *testing.T) {
	verbose := extract.Table{
		Columns: []string{
			"Tournament Name",
			"Start Date",
			"Grade",
			"Surface",
			"Estimated Draw Strength (1 easy - 10 very hard)",
			"Max Travel Time (hours)",
		},
		Rows: []extract.Row{{
			"Tournament Name": "Winter Open",
			"Start Date":      "2025-12-01",
			"Grade":           "3",
			"Surface":         "Hard",
			"Estimated Draw Strength (1 easy - 10 very hard)": "6",
			"Max Travel Time (hours)":                         "2",
		}},
	}

	got := Normalize(verbose)

	for _, want := range []string{"Name", "Week", "Grade", "Surface", "Difficulty", "TravelHours"} {
		if !got.HasColumn(want) {
			t.Errorf("missing column %q in %v", want, got.Columns)
		}
	}
	if got.Rows[0]["Difficulty"] != "6" || got.Rows[0]["Name"] != "Winter Open" {
		t.Errorf("row = %v", got.Rows[0])
	}
}

func TestFilter_GradeSurfaceAndTravel(t *testing.T) {
	table := planningTable()

	byGrade := Filter(table, Preferences{Grades: []string{"3"}})
	if byGrade.Len() != 2 {
		t.Errorf("grade filter rows = %d, want 2", byGrade.Len())
	}

	bySurface := Filter(table, Preferences{Surfaces: []string{"clay"}})
	if bySurface.Len() != 1 || bySurface.Rows[0]["Name"] != "County Closed" {
		t.Errorf("surface filter rows = %v", bySurface.Rows)
	}

	// The travel limit also drops the row without a parseable value.
	byTravel := Filter(table, Preferences{MaxTravel: 2})
	if byTravel.Len() != 1 || byTravel.Rows[0]["Name"] != "Winter Open" {
		t.Errorf("travel filter rows = %v", byTravel.Rows)
	}
}

func TestRank_ScoreArithmetic(t *testing.T) {
	prefs := Preferences{Grades: []string{"3"}, Surfaces: []string{"Hard"}}

	got := Rank(planningTable(), prefs)

	if got.Columns[len(got.Columns)-1] != "Score" {
		t.Fatalf("Columns = %v", got.Columns)
	}

	scores := make(map[string]string, got.Len())
	for _, row := range got.Rows {
		scores[row["Name"]] = row["Score"]
	}

	// 3*2 + 1.5 - 1 (grade) - 1 (surface) = 5.5
	if scores["Winter Open"] != "5.50" {
		t.Errorf("Winter Open score = %q, want 5.50", scores["Winter Open"])
	}
	// 7*2 + 3, no preference matches.
	if scores["County Closed"] != "17.00" {
		t.Errorf("County Closed score = %q, want 17.00", scores["County Closed"])
	}
	// Missing difficulty counts as 5, missing travel as 2: 10 + 2 - 1 - 1.
	if scores["Indoor Cup"] != "10.00" {
		t.Errorf("Indoor Cup score = %q, want 10.00", scores["Indoor Cup"])
	}
}

func TestRank_SortsAscending(t *testing.T) {
	got := Rank(planningTable(), Preferences{})

	var prev float64 = -1
	for _, row := range got.Rows {
		score, err := strconv.ParseFloat(row["Score"], 64)
		if err != nil {
			t.Fatalf("bad score %q: %v", row["Score"], err)
		}
		if score < prev {
			t.Fatalf("scores not ascending: %v", got.Rows)
		}
		prev = score
	}
	if got.Rows[0]["Name"] != "Winter Open" {
		t.Errorf("best fit = %q, want Winter Open", got.Rows[0]["Name"])
	}
}

func TestRank_NoPreferencesMeansNoBonus(t *testing.T) {
	got := Rank(planningTable(), Preferences{})

	for _, row := range got.Rows {
		if row["Name"] == "Winter Open" && row["Score"] != "7.50" {
			t.Errorf("Winter Open score = %q, want 7.50 without preference bonuses", row["Score"])
		}
	}
}
