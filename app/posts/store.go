package posts

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// DefaultSubCategory replaces blank sub-category cells.
const DefaultSubCategory = "About FH"

// Store reads the backing spreadsheet. It keeps no rows between calls:
// every Load re-reads the file so replaced uploads are picked up.
type Store struct {
	path    string
	sheet   string
	columns Columns
}

func NewStore(path, sheet string) *Store {
	return &Store{
		path:    path,
		sheet:   sheet,
		columns: DefaultColumns(),
	}
}

// WithColumns overrides the expected headers.
func (s *Store) WithColumns(columns Columns) *Store {
	s.columns = columns
	return s
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Sheet() string {
	return s.sheet
}

// Load reads the backing file into a fresh snapshot.
func (s *Store) Load() (*Snapshot, error) {
	snapshot, err := s.loadFile(s.path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calendar loaded",
		"file", s.path,
		"sheet", s.sheet,
		"posts", len(snapshot.Posts),
		"dates", len(snapshot.Dates),
		"dropped", snapshot.Dropped)

	return snapshot, nil
}

// ValidateFile checks that path would load with this store's sheet and columns.
func (s *Store) ValidateFile(path string) error {
	_, err := s.loadFile(path)
	return err
}

func (s *Store) loadFile(path string) (*Snapshot, error) {
	table, err := ReadTable(path, s.sheet)
	if err != nil {
		return nil, err
	}

	if err := table.Require(s.columns.ItemName, s.columns.PublishDate); err != nil {
		return nil, fmt.Errorf("invalid calendar %s: %w", path, err)
	}

	return s.buildSnapshot(table), nil
}

func (s *Store) buildSnapshot(table *Table) *Snapshot {
	nameCol := table.Column(s.columns.ItemName)
	dateCol := table.Column(s.columns.PublishDate)
	categoryCol := table.Column(s.columns.SubCategory)
	urlCol := table.Column(s.columns.PostURL)

	known := map[int]bool{nameCol: true, dateCol: true, categoryCol: true, urlCol: true}

	snapshot := &Snapshot{
		Posts: make([]Post, 0, len(table.Rows)),
	}

	for r, row := range table.Rows {
		publishDate, ok := ParseSheetDate(Cell(row, dateCol))
		if !ok {
			snapshot.Dropped++
			continue
		}

		post := Post{
			ItemName:    Cell(row, nameCol),
			PublishDate: publishDate,
			SubCategory: Cell(row, categoryCol),
			PostURL:     Cell(row, urlCol),
			Fields:      make(map[string]string, len(table.Headers)),
		}
		if post.SubCategory == "" {
			post.SubCategory = DefaultSubCategory
		}

		display := table.DisplayRow(r)
		for i, header := range table.Headers {
			if known[i] {
				continue
			}
			post.Fields[header] = RawCell(display, i)
		}

		snapshot.Posts = append(snapshot.Posts, post)
	}

	sorted := NewSnapshot(snapshot.Posts)
	sorted.Dropped = snapshot.Dropped
	return sorted
}

// NewSnapshot sorts list by publish date (stable) and derives the date lists.
// Every post must carry a non-zero PublishDate.
func NewSnapshot(list []Post) *Snapshot {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PublishDate.Before(list[j].PublishDate)
	})

	dates := distinctDates(list)
	return &Snapshot{
		Posts:       list,
		Dates:       dates,
		MonthStarts: distinctMonthStarts(dates),
	}
}

func distinctDates(sorted []Post) []time.Time {
	dates := make([]time.Time, 0)
	for _, p := range sorted {
		if n := len(dates); n > 0 && dates[n-1].Equal(p.PublishDate) {
			continue
		}
		dates = append(dates, p.PublishDate)
	}
	return dates
}

func distinctMonthStarts(dates []time.Time) []time.Time {
	months := make([]time.Time, 0)
	for _, d := range dates {
		start := MonthStart(d)
		if n := len(months); n > 0 && months[n-1].Equal(start) {
			continue
		}
		months = append(months, start)
	}
	return months
}

