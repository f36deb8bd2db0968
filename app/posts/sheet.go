package posts

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptySheet    = errors.New("sheet has no header row")
)

// Table is a worksheet read as text: a header row plus data rows.
// Rows hold raw cell values; Display holds the same cells as Excel shows them.
type Table struct {
	Headers []string
	Rows    [][]string
	Display [][]string
	index   map[string]int
}

// ReadTable opens an .xlsx workbook and reads the named sheet.
// Date cells come back as Excel serial numbers in Rows.
func ReadTable(path, sheet string) (*Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("Failed to close workbook", "file", path, "error", err)
		}
	}()

	if idx, err := file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}

	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}

	display, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	t := newTable(rows[0], rows[1:])
	if len(display) > 0 {
		t.Display = display[1:]
	}
	return t, nil
}

func newTable(header []string, rows [][]string) *Table {
	t := &Table{
		Headers: make([]string, len(header)),
		Rows:    rows,
		index:   make(map[string]int, len(header)),
	}

	seen := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		t.Headers[i] = name
		t.index[name] = i
	}

	return t
}

// DisplayRow returns row r as formatted text, falling back to the raw row.
func (t *Table) DisplayRow(r int) []string {
	if r >= 0 && r < len(t.Display) {
		return t.Display[r]
	}
	return t.Rows[r]
}

// Column returns the index of header, or -1.
func (t *Table) Column(header string) int {
	if idx, ok := t.index[header]; ok {
		return idx
	}
	return -1
}

// Require fails with ErrMissingColumn for the first absent header.
func (t *Table) Require(headers ...string) error {
	for _, h := range headers {
		if t.Column(h) < 0 {
			return fmt.Errorf("%w: %q (found %v)", ErrMissingColumn, h, t.Headers)
		}
	}
	return nil
}

// Cell returns the trimmed value at row/col; short rows read as "".
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// RawCell returns the untrimmed value at row/col.
func RawCell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
