package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/court-tools/rankpull/internal/extract"
	"github.com/court-tools/rankpull/pkg/models"
)

// SaveTable writes the table in the format named by the file extension.
// Unknown extensions fall back to CSV.
func SaveTable(t extract.Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return SaveXLSX(t, path)
	case ".json":
		return SaveJSON(t, path)
	default:
		return SaveCSV(t, path)
	}
}

// SaveSnapshot writes a fetched page in the format named by the file
// extension: .html, .md, or .json.
func SaveSnapshot(data *models.PageData, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return SaveMarkdown(data, path)
	case ".json":
		return SavePageJSON(data, path)
	case ".html", ".htm":
		return SaveHTML(data, path)
	default:
		return fmt.Errorf("unsupported snapshot format %q (use .html, .md, or .json)", filepath.Ext(path))
	}
}
