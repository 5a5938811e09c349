package points

import (
	"testing"
	"time"

	"github.com/court-tools/rankpull/internal/extract"
)

func TestParseWeek(t *testing.T) {
	tests := []struct {
		in      string
		week    int
		year    int
		wantErr bool
	}{
		{"49-2025", 49, 2025, false},
		{"2025-49", 49, 2025, false},
		{" 01-2026 ", 1, 2026, false},
		{"2026/1", 1, 2026, false},
		{"54-2025", 0, 0, true},
		{"0-2025", 0, 0, true},
		{"5-7", 0, 0, true},
		{"week 49", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		week, year, err := ParseWeek(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWeek(%q) expected error, got week=%d year=%d", tt.in, week, year)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWeek(%q): %v", tt.in, err)
			continue
		}
		if week != tt.week || year != tt.year {
			t.Errorf("ParseWeek(%q) = (%d, %d), want (%d, %d)", tt.in, week, year, tt.week, tt.year)
		}
	}
}

func TestWeekStart_ISOMondays(t *testing.T) {
	tests := []struct {
		week, year int
		want       string
	}{
		{49, 2025, "2025-12-01"}, // plain mid-year week
		{1, 2026, "2025-12-29"},  // week 1 starting in the prior calendar year
		{1, 2025, "2024-12-30"},
	}

	for _, tt := range tests {
		got := WeekStart(tt.week, tt.year)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("WeekStart(%d, %d) = %s, want %s", tt.week, tt.year, got.Format("2006-01-02"), tt.want)
		}
		if got.Weekday() != time.Monday {
			t.Errorf("WeekStart(%d, %d) is a %s, want Monday", tt.week, tt.year, got.Weekday())
		}
	}
}

func TestParseTable_TabSeparated(t *testing.T) {
	raw := "Week\tTournament\tGrade\tRanking points\n" +
		"49-2025\tWinter Open\t3\t450\n" +
		"47-2025\tCounty Closed\t4\n"

	got := ParseTable(raw)

	wantCols := []string{"Week", "Tournament", "Grade", "Points"}
	if len(got.Columns) != 4 {
		t.Fatalf("Columns = %v", got.Columns)
	}
	for i, c := range wantCols {
		if got.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, got.Columns[i], c)
		}
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2", got.Len())
	}
	if got.Rows[0]["Points"] != "450" {
		t.Errorf("Points = %q", got.Rows[0]["Points"])
	}
	// The short row was padded to header width.
	if v, ok := got.Rows[1]["Points"]; !ok || v != "" {
		t.Errorf("padded cell = %q (present %v)", v, ok)
	}
}

func TestParseTable_SpaceSeparated(t *testing.T) {
	raw := "Week commencing    Tournament      Points\n" +
		"49-2025    Winter Open    1,500*\n"

	got := ParseTable(raw)

	if got.Columns[0] != "Week" || got.Columns[2] != "Points" {
		t.Errorf("Columns = %v", got.Columns)
	}
	if got.Rows[0]["Points"] != "1,500*" {
		t.Errorf("Points = %q", got.Rows[0]["Points"])
	}
}

func TestParseTable_Empty(t *testing.T) {
	if got := ParseTable("  \n \n"); !got.Empty() || len(got.Columns) != 0 {
		t.Errorf("ParseTable(blank) = %+v", got)
	}
}

func resultsTable(weeks ...string) extract.Table {
	t := extract.Table{Columns: []string{"Week", "Points"}}
	for _, w := range weeks {
		t.Rows = append(t.Rows, extract.Row{"Week": w, "Points": "100"})
	}
	return t
}

func TestFilterWindow_Boundaries(t *testing.T) {
	asOf := WeekStart(49, 2025) // Monday 2025-12-01

	table := resultsTable(
		"49-2025", // zero weeks old, kept
		"49-2024", // exactly 52 weeks old, kept
		"48-2024", // 53 weeks old, dropped
		"50-2025", // future week, dropped
	)

	got := FilterWindow(table, asOf)
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2: %v", got.Len(), got.Rows)
	}
	if got.Rows[0]["Week"] != "49-2025" || got.Rows[1]["Week"] != "49-2024" {
		t.Errorf("kept = %v", got.Rows)
	}
}

func TestFilterWindow_DropsUnparseableAmongValid(t *testing.T) {
	asOf := WeekStart(49, 2025)
	table := resultsTable("49-2025", "total", "48-2025")

	got := FilterWindow(table, asOf)
	if got.Len() != 2 {
		t.Errorf("rows = %d, want 2: %v", got.Len(), got.Rows)
	}
}

func TestFilterWindow_NothingParsesKeepsAll(t *testing.T) {
	asOf := WeekStart(49, 2025)
	table := resultsTable("n/a", "pending")

	got := FilterWindow(table, asOf)
	if got.Len() != 2 {
		t.Errorf("rows = %d, want all rows back", got.Len())
	}
}

func TestFilterWindow_NoWeekColumn(t *testing.T) {
	table := extract.Table{
		Columns: []string{"Tournament", "Points"},
		Rows:    []extract.Row{{"Tournament": "Winter Open", "Points": "450"}},
	}

	got := FilterWindow(table, time.Now())
	if got.Len() != 1 {
		t.Errorf("rows = %d, want table unchanged", got.Len())
	}
}

func pointsTable(values ...string) extract.Table {
	t := extract.Table{Columns: []string{"Tournament", "Points"}}
	for _, v := range values {
		t.Rows = append(t.Rows, extract.Row{"Tournament": "T", "Points": v})
	}
	return t
}

func TestBestSix_FewerThanSixAndCleanup(t *testing.T) {
	singles := pointsTable("450", "300", "1,200*")
	doubles := pointsTable("200", "100", "-")

	got := BestSix(singles, doubles)

	if got.SinglesTotal != 1950 {
		t.Errorf("SinglesTotal = %d, want 1950", got.SinglesTotal)
	}
	if got.DoublesRaw != 300 {
		t.Errorf("DoublesRaw = %d, want 300", got.DoublesRaw)
	}
	if got.DoublesWeighted != 75 {
		t.Errorf("DoublesWeighted = %v, want 75", got.DoublesWeighted)
	}
	if got.FinalTotal != 2025 {
		t.Errorf("FinalTotal = %v, want 2025", got.FinalTotal)
	}
	// The dash row carried no digits, so it never counted.
	if got.DoublesUsed.Len() != 2 {
		t.Errorf("DoublesUsed rows = %d, want 2", got.DoublesUsed.Len())
	}
}

func TestBestSix_TakesOnlyTopSix(t *testing.T) {
	singles := pointsTable("100", "700", "200", "600", "300", "500", "400", "50")

	got := BestSix(singles, extract.Table{})

	// Best six of the eight: 700+600+500+400+300+200.
	if got.SinglesTotal != 2700 {
		t.Errorf("SinglesTotal = %d, want 2700", got.SinglesTotal)
	}
	if got.SinglesUsed.Len() != 6 {
		t.Errorf("SinglesUsed rows = %d, want 6", got.SinglesUsed.Len())
	}
	if got.SinglesUsed.Rows[0]["Points"] != "700" {
		t.Errorf("top row = %v", got.SinglesUsed.Rows[0])
	}
	if got.FinalTotal != 2700 {
		t.Errorf("FinalTotal = %v", got.FinalTotal)
	}
}
