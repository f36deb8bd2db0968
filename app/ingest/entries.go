package ingest

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lysyi3m/content-calendar/app/posts"
)

// ReadEntries maps post URLs to publish dates from the calendar sheet.
// Rows missing either value are skipped; a repeated URL keeps its first
// position but takes the values of its last row.
func ReadEntries(path, sheet string, cols Columns) ([]Entry, error) {
	table, err := posts.ReadTable(path, sheet)
	if err != nil {
		return nil, err
	}

	if err := table.Require(cols.URL, cols.Date); err != nil {
		return nil, err
	}

	urlCol := table.Column(cols.URL)
	dateCol := table.Column(cols.Date)
	nameCol := -1
	if cols.Name != "" {
		nameCol = table.Column(cols.Name)
	}

	entries := make([]Entry, 0, len(table.Rows))
	seen := make(map[string]int)

	for i, row := range table.Rows {
		url := posts.Cell(row, urlCol)
		rawDate := posts.Cell(row, dateCol)
		if url == "" || rawDate == "" {
			continue
		}

		entry := Entry{
			Row:      i + 2,
			PostURL:  url,
			RawDate:  rawDate,
			ItemName: posts.Cell(row, nameCol),
		}
		if date, ok := ParseEntryDate(rawDate); ok {
			entry.Date = date
		}

		if idx, dup := seen[url]; dup {
			entries[idx] = entry
			continue
		}
		seen[url] = len(entries)
		entries = append(entries, entry)
	}

	slog.Debug("Calendar mappings loaded", "file", path, "count", len(entries))

	return entries, nil
}

// ParseEntryDate accepts what the calendar accepts plus common date layouts such as 2025-01-05.
func ParseEntryDate(raw string) (time.Time, bool) {
	if date, ok := posts.ParseSheetDate(raw); ok {
		return date, true
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return posts.DateOf(t), true
}

// ParseNameBy validates a --name-by value.
func ParseNameBy(value string) (NameBy, error) {
	switch NameBy(value) {
	case NameByDate, NameByItem:
		return NameBy(value), nil
	case "":
		return NameByDate, nil
	default:
		return "", fmt.Errorf("unknown naming scheme %q", value)
	}
}
