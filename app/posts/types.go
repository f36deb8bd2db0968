package posts

import (
	"time"
)

// Default spreadsheet headers.
const (
	ColumnItemName    = "Item Name"
	ColumnPublishDate = "Publish Date (DD/MM/YYYY)"
	ColumnSubCategory = "Sub-Category"
	ColumnPostURL     = "Original FB Post URL"
)

// Post is one row of the content calendar.
type Post struct {
	ItemName    string
	PublishDate time.Time // calendar date at 00:00 UTC, never zero once loaded
	SubCategory string
	PostURL     string
	Fields      map[string]string // remaining columns by header

	// Derived, set before rendering
	Image         string // file name inside the image store, empty when none
	CategoryColor string
}

// Field returns a pass-through column value or "".
func (p Post) Field(header string) string {
	return p.Fields[header]
}

type Columns struct {
	ItemName    string
	PublishDate string
	SubCategory string // optional
	PostURL     string // optional
}

func DefaultColumns() Columns {
	return Columns{
		ItemName:    ColumnItemName,
		PublishDate: ColumnPublishDate,
		SubCategory: ColumnSubCategory,
		PostURL:     ColumnPostURL,
	}
}

// Snapshot is the result of one Store.Load call.
type Snapshot struct {
	Posts       []Post      // ascending by PublishDate
	Dates       []time.Time // distinct publish dates, ascending
	MonthStarts []time.Time // distinct first-of-month dates, ascending
	Dropped     int         // rows without a parseable publish date
}

// Latest returns the most recent publish date.
func (s *Snapshot) Latest() (time.Time, bool) {
	if len(s.Dates) == 0 {
		return time.Time{}, false
	}
	return s.Dates[len(s.Dates)-1], true
}
