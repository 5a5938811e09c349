// internal/extract/table_test.go
package extract

import (
	"reflect"
	"testing"
)

func TestTable_DropColumn(t *testing.T) {
	in := Table{
		Columns: []string{"Rank", "Player", "Rank.1"},
		Rows: []Row{
			{"Rank": "1", "Player": "Alice Archer", "Rank.1": "1"},
		},
	}

	got := in.DropColumn("Rank.1")
	if !reflect.DeepEqual(got.Columns, []string{"Rank", "Player"}) {
		t.Errorf("unexpected columns: %v", got.Columns)
	}
	if _, ok := got.Rows[0]["Rank.1"]; ok {
		t.Error("dropped column still present in row")
	}

	// dropping an absent column must change nothing
	same := got.DropColumn("Rank.1")
	if !reflect.DeepEqual(same, got) {
		t.Errorf("dropping an absent column changed the table: %v", same)
	}

	// the input table is untouched
	if len(in.Columns) != 3 || in.Rows[0]["Rank.1"] != "1" {
		t.Error("DropColumn mutated its receiver")
	}
}

func TestTable_RenameColumn(t *testing.T) {
	in := Table{
		Columns: []string{"Singles points"},
		Rows:    []Row{{"Singles points": "900"}},
	}

	got := in.RenameColumn("Singles points", "Singles Points")
	if got.Columns[0] != "Singles Points" {
		t.Errorf("unexpected columns: %v", got.Columns)
	}
	if got.Rows[0]["Singles Points"] != "900" {
		t.Errorf("value lost on rename: %v", got.Rows[0])
	}

	noop := in.RenameColumn("Doubles points", "Doubles Points")
	if !reflect.DeepEqual(noop, in) {
		t.Errorf("renaming an absent column changed the table: %v", noop)
	}
}

func TestTable_Truncate(t *testing.T) {
	in := Table{
		Columns: []string{"Rank"},
		Rows:    []Row{{"Rank": "1"}, {"Rank": "2"}, {"Rank": "3"}},
	}

	if got := in.Truncate(2); got.Len() != 2 || got.Rows[1]["Rank"] != "2" {
		t.Errorf("unexpected truncation: %v", got.Rows)
	}
	if got := in.Truncate(10); got.Len() != 3 {
		t.Errorf("truncating past the end should keep every row, got %d", got.Len())
	}
	if got := in.Truncate(0); got.Len() != 0 {
		t.Errorf("expected no rows, got %d", got.Len())
	}
}

func TestConcat_KeepsFirstSeenColumnOrder(t *testing.T) {
	a := Table{Columns: []string{"Rank", "Player"}, Rows: []Row{{"Rank": "1", "Player": "Alice Archer"}}}
	b := Table{Columns: []string{"Rank", "Player", "County"}, Rows: []Row{{"Rank": "26", "Player": "Ben Briggs", "County": "Kent"}}}

	got := Concat([]Table{a, b})
	if !reflect.DeepEqual(got.Columns, []string{"Rank", "Player", "County"}) {
		t.Errorf("unexpected columns: %v", got.Columns)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", got.Len())
	}
	if _, ok := got.Rows[0]["County"]; ok {
		t.Error("first row gained a cell it never had")
	}
}

func TestConcat_Empty(t *testing.T) {
	if got := Concat(nil); got.Len() != 0 || len(got.Columns) != 0 {
		t.Errorf("expected an empty table, got %v", got)
	}
}
