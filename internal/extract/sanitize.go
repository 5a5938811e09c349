// internal/extract/sanitize.go
package extract

import "strings"

// rankingRenames normalizes the points column labels the site renders with
// inconsistent casing.
var rankingRenames = map[string]string{
	"Singles points": "Singles Points",
	"Doubles points": "Doubles Points",
}

// entriesPlaceholders are Name values that are artifacts rather than players.
var entriesPlaceholders = map[string]bool{
	"":     true,
	"name": true,
	"nan":  true,
	"none": true,
}

// SanitizeRankings strips the noise the ranking pages embed in their table:
// pager rows misparsed as entries, repeated header rows, unlabeled columns.
// Applied in order:
//  1. drop rows whose Rank cell contains "page" or "results" (case-insensitive)
//  2. drop rows whose trimmed Player is empty or literally "Player"
//  3. drop columns labeled "Unnamed..."
//  4. rename the points columns to their canonical labels
//
// Sanitizing an already-clean table changes nothing.
func SanitizeRankings(t Table) Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		rank := strings.ToLower(r["Rank"])
		if strings.Contains(rank, "page") || strings.Contains(rank, "results") {
			continue
		}
		player := strings.TrimSpace(r["Player"])
		if player == "" || player == "Player" {
			continue
		}
		out.Rows = append(out.Rows, r.clone())
	}

	for _, c := range t.Columns {
		if strings.HasPrefix(c, "Unnamed") {
			out = out.DropColumn(c)
		}
	}
	for old, canonical := range rankingRenames {
		out = out.RenameColumn(old, canonical)
	}
	return out
}

// SanitizeEntries reduces an online-entries candidate to the valid player
// names. Applied in order:
//  1. if a Status column exists, drop rows whose status contains "withdrawn"
//     (any case)
//  2. drop rows with a missing Name cell
//  3. trim Name and drop placeholder values ("", "name", "nan", "none",
//     case-insensitive)
//  4. project to the single Name column
//
// ok is false when nothing valid remains; the caller then treats the
// candidate as a non-match and keeps scanning.
func SanitizeEntries(t Table) (Table, bool) {
	filtered := Table{Columns: append([]string(nil), t.Columns...)}
	hasStatus := t.HasColumn("Status")
	for _, r := range t.Rows {
		if hasStatus && strings.Contains(strings.ToLower(r["Status"]), "withdrawn") {
			continue
		}
		name, present := r["Name"]
		if !present {
			continue
		}
		name = strings.TrimSpace(name)
		if entriesPlaceholders[strings.ToLower(name)] {
			continue
		}
		nr := r.clone()
		nr["Name"] = name
		filtered.Rows = append(filtered.Rows, nr)
	}

	out := filtered.Project("Name")
	if out.Empty() {
		return Table{}, false
	}
	return out, true
}
