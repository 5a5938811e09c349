// internal/extract/classify.go
package extract

import "strings"

// Schema pairs a header predicate with the sanitizer for rows matching it.
// Sanitize returns ok=false when the sanitized candidate should be treated as
// a non-match so that scanning moves on to the next candidate.
type Schema struct {
	Name     string
	Match    func(columns []string) bool
	Sanitize func(Table) (Table, bool)
}

// Rankings matches the ranking list table: headers must contain both "Rank"
// and "Player" exactly. The first matching candidate is always kept, even
// when sanitization leaves it empty; only one ranking table is expected per
// page.
var Rankings = Schema{
	Name: "rankings",
	Match: func(columns []string) bool {
		return hasColumn(columns, "Rank") && hasColumn(columns, "Player")
	},
	Sanitize: func(t Table) (Table, bool) {
		return SanitizeRankings(t), true
	},
}

// Entries matches the online-entries table: headers must contain "Name" plus
// at least one label containing "date" (case-insensitive). That second
// condition separates the entries list from other tables on the event page
// that also carry a Name column. A candidate sanitized down to zero names
// counts as a non-match.
var Entries = Schema{
	Name: "entries",
	Match: func(columns []string) bool {
		return hasColumn(columns, "Name") && hasDateColumn(columns)
	},
	Sanitize: SanitizeEntries,
}

// First returns the first candidate, in document order, that matches the
// schema predicate and survives sanitization. The second result is false when
// no candidate qualifies; absence is a value here, not an error.
func First(candidates []Table, s Schema) (Table, bool) {
	for _, c := range candidates {
		if !s.Match(c.Columns) {
			continue
		}
		t, ok := s.Sanitize(c)
		if !ok {
			continue
		}
		return t, true
	}
	return Table{}, false
}

func hasColumn(columns []string, label string) bool {
	for _, c := range columns {
		if c == label {
			return true
		}
	}
	return false
}

func hasDateColumn(columns []string) bool {
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), "date") {
			return true
		}
	}
	return false
}
