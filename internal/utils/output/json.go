package output

import (
	"encoding/json"
	"os"

	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/pkg/models"
)

// SaveJSON writes the table as an array of label-to-value objects.
func SaveJSON(t extract.Table, path string) error {
	rows := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			obj[col] = row[col]
		}
		rows = append(rows, obj)
	}

	content, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// SavePageJSON writes a page snapshot as indented JSON with the raw HTML
// stripped out, keeping the export readable.
func SavePageJSON(data *models.PageData, path string) error {
	export := *data
	export.HTML = ""

	content, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
