// internal/extract/scan.go
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scan parses raw markup and returns every table element as a candidate, in
// document order. Markup with no tables, empty input, and markup that cannot
// be parsed all yield an empty set; "no table" is never an error here.
func Scan(markup string) []Table {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var candidates []Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t, ok := parseTable(sel); ok {
			candidates = append(candidates, t)
		}
	})
	return candidates
}

// parseTable converts one table element into a candidate. The header row is
// the first thead row when present, otherwise the first row of the table.
// Tables without rows, or whose header cells are all empty, are rejected.
func parseTable(sel *goquery.Selection) (Table, bool) {
	rows := tableRows(sel)
	if len(rows) == 0 {
		return Table{}, false
	}

	headerSel := sel.ChildrenFiltered("thead").ChildrenFiltered("tr").First()
	headerIdx := 0
	if headerSel.Length() > 0 {
		for i, tr := range rows {
			if tr.Nodes[0] == headerSel.Nodes[0] {
				headerIdx = i
				break
			}
		}
	}

	columns, ok := headerLabels(rows[headerIdx])
	if !ok {
		return Table{}, false
	}

	t := Table{Columns: columns}
	for i, tr := range rows {
		if i == headerIdx {
			continue
		}
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			continue
		}
		row := make(Row, len(columns))
		cells.Each(func(j int, cell *goquery.Selection) {
			if j < len(columns) {
				row[columns[j]] = cleanText(cell.Text())
			}
		})
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

// tableRows collects the direct rows of a table, skipping rows that belong
// to nested tables.
func tableRows(sel *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	sel.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, tr)
	})
	// rows directly under <table> appear when markup skipped the sections
	sel.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, tr)
	})
	return rows
}

// headerLabels extracts trimmed column labels from a header row. Empty header
// cells become "Unnamed: N" and repeated labels get ".1", ".2", ... suffixes,
// matching the naming the downstream sanitizers key on.
func headerLabels(tr *goquery.Selection) ([]string, bool) {
	var labels []string
	nonEmpty := 0
	tr.ChildrenFiltered("th, td").Each(func(i int, cell *goquery.Selection) {
		label := cleanText(cell.Text())
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		} else {
			nonEmpty++
		}
		labels = append(labels, label)
	})
	if nonEmpty == 0 {
		return nil, false
	}
	return uniqueLabels(labels), true
}

// uniqueLabels disambiguates duplicate labels positionally: the second "Rank"
// becomes "Rank.1", the third "Rank.2".
func uniqueLabels(labels []string) []string {
	seen := make(map[string]int, len(labels))
	out := make([]string, len(labels))
	for i, label := range labels {
		n := seen[label]
		seen[label] = n + 1
		if n == 0 {
			out[i] = label
			continue
		}
		out[i] = fmt.Sprintf("%s.%d", label, n)
	}
	return out
}

// cleanText trims a cell value and collapses internal whitespace runs.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
