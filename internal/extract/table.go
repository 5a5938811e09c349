// Package extract locates and normalizes ranking and online-entries tables
// inside rendered page markup.
package extract

// Row maps a column label to the cell text for that column. A label absent
// from the map is a missing value; present-but-empty is an empty cell.
type Row map[string]string

// Table is one tabular candidate: ordered column labels plus body rows.
// Tables are treated as immutable; every operation returns a fresh copy.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of body rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no body rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// HasColumn reports whether the table has a column with the exact label.
func (t Table) HasColumn(label string) bool {
	for _, c := range t.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// DropColumn returns a copy of the table without the named column.
// It is a no-op when the column does not exist.
func (t Table) DropColumn(label string) Table {
	if !t.HasColumn(label) {
		return t
	}
	out := Table{Columns: make([]string, 0, len(t.Columns)-1), Rows: make([]Row, 0, len(t.Rows))}
	for _, c := range t.Columns {
		if c != label {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, r := range t.Rows {
		nr := make(Row, len(out.Columns))
		for _, c := range out.Columns {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// RenameColumn returns a copy of the table with the column relabeled.
// It is a no-op when the old label does not exist.
func (t Table) RenameColumn(old, new string) Table {
	if old == new || !t.HasColumn(old) {
		return t
	}
	out := Table{Columns: make([]string, len(t.Columns)), Rows: make([]Row, 0, len(t.Rows))}
	for i, c := range t.Columns {
		if c == old {
			out.Columns[i] = new
		} else {
			out.Columns[i] = c
		}
	}
	for _, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if k == old {
				nr[new] = v
			} else {
				nr[k] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Project returns a copy of the table reduced to the given columns, in the
// given order. Cells for columns a row does not carry stay missing.
func (t Table) Project(labels ...string) Table {
	out := Table{Columns: append([]string(nil), labels...), Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		nr := make(Row, len(labels))
		for _, c := range labels {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Truncate returns a copy of the table limited to the first n rows.
func (t Table) Truncate(n int) Table {
	if n < 0 {
		n = 0
	}
	if n >= len(t.Rows) {
		n = len(t.Rows)
	}
	out := Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Row, 0, n)}
	for _, r := range t.Rows[:n] {
		out.Rows = append(out.Rows, r.clone())
	}
	return out
}

func (r Row) clone() Row {
	nr := make(Row, len(r))
	for k, v := range r {
		nr[k] = v
	}
	return nr
}
