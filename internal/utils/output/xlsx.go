package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/court-tools/rankpull/internal/extract"
)

// SaveXLSX writes the table to a single-sheet workbook, header row first.
func SaveXLSX(t extract.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, col := range t.Columns {
			value, ok := row[col]
			if !ok || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell (%d,%d): %w", r, c, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
