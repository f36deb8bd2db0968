package ingest

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusDownloaded Status = "downloaded"
	StatusExists     Status = "exists"
	StatusNoMatch    Status = "no_match"
	StatusNoImage    Status = "no_image"
	StatusInvalid    Status = "invalid"
	StatusForbidden  Status = "forbidden"
	StatusFailed     Status = "failed"
)

type NameBy string

const (
	NameByDate NameBy = "date"
	NameByItem NameBy = "item"
)

// Entry is one spreadsheet row that carries both a post URL and a publish date.
type Entry struct {
	Row      int
	PostURL  string
	RawDate  string
	Date     time.Time // zero when RawDate could not be parsed
	ItemName string
}

// Job is the planned outcome for one entry. Only StatusPending jobs need a download.
type Job struct {
	Entry    Entry
	FileName string
	ImageURL string
	Status   Status
	Message  string
}

type Columns struct {
	URL  string
	Date string
	Name string
}
