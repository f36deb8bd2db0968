// Package poststest builds spreadsheet fixtures for tests.
package poststest

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Header is the column layout used by the default fixtures.
var Header = []any{"Item Name", "Publish Date (DD/MM/YYYY)", "Sub-Category", "Original FB Post URL", "Caption"}

// WriteWorkbook saves rows (header first) into sheet of a new .xlsx at path.
func WriteWorkbook(t testing.TB, path, sheet string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("Failed to rename sheet: %v", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}
}

// Calendar writes the three-post example calendar into dir and returns its path.
// Posts are dated 2025-01-05, 2025-01-20 and 2025-02-01.
func Calendar(t testing.TB, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "Content_Calendar.xlsx")
	WriteWorkbook(t, path, "Feed List", [][]any{
		Header,
		{"Winter Appeal", "20/01/2025", "Programs", "https://www.facebook.com/p/2", "Second"},
		{"New Year", "05/01/2025", "", "https://www.facebook.com/p/1", "First"},
		{"February Update", "01/02/2025", "About FH", "https://www.facebook.com/p/3", "Third"},
	})
	return path
}
