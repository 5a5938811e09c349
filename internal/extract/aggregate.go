// internal/extract/aggregate.go
package extract

// Concat appends the rows of the given tables in order. Columns keep their
// first-seen order; columns appearing only in later tables are added at the
// end, with earlier rows simply missing those cells.
func Concat(tables []Table) Table {
	var out Table
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, r.clone())
		}
	}
	return out
}
