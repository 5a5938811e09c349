// Package output writes extracted tables and page snapshots to disk in the
// formats the commands expose: CSV, XLSX, JSON, Markdown, and cleaned HTML.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/court-tools/rankpull/internal/extract"
)

// utf8BOM leads every CSV so spreadsheet apps decode accented player names
// correctly on a double-click open.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SaveCSV writes the table to a CSV file. The header row is the column order
// and missing cells become empty fields.
func SaveCSV(t extract.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadCSV reads a table back from a CSV file, tolerating a leading UTF-8 BOM
// and ragged rows.
func LoadCSV(path string) (extract.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return extract.Table{}, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return extract.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return extract.Table{}, nil
	}

	table := extract.Table{Columns: records[0]}
	for _, record := range records[1:] {
		row := make(extract.Row, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
