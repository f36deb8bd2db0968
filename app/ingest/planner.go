package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/content-calendar/app/posts"
)

type Planner struct {
	imageDir string
	nameBy   NameBy
}

func NewPlanner(imageDir string, nameBy NameBy) *Planner {
	return &Planner{
		imageDir: imageDir,
		nameBy:   nameBy,
	}
}

// Run decides each entry's outcome in order: export match, file name,
// existing file, image URL. Entries that survive are StatusPending. A file
// name is claimed by the first pending entry; later entries resolving to the
// same name are StatusExists.
func (p *Planner) Run(entries []Entry, index map[string]ExportPost) []Job {
	jobs := make([]Job, 0, len(entries))
	claimed := make(map[string]bool)

	for _, entry := range entries {
		job := Job{Entry: entry}

		post, ok := index[entry.PostURL]
		if !ok {
			job.Status = StatusNoMatch
			jobs = append(jobs, job)
			continue
		}

		name, reason := p.FileName(entry)
		if name == "" {
			job.Status = StatusInvalid
			job.Message = reason
			jobs = append(jobs, job)
			continue
		}
		job.FileName = name

		if _, err := os.Stat(filepath.Join(p.imageDir, name)); err == nil {
			job.Status = StatusExists
			jobs = append(jobs, job)
			continue
		}

		if claimed[name] {
			job.Status = StatusExists
			job.Message = "file name already taken by an earlier row"
			jobs = append(jobs, job)
			continue
		}

		job.ImageURL = PrimaryPhoto(post)
		if job.ImageURL == "" {
			job.Status = StatusNoImage
		} else {
			job.Status = StatusPending
			claimed[name] = true
		}
		jobs = append(jobs, job)
	}

	return jobs
}

// FileName returns the destination name for entry, or "" with a reason.
func (p *Planner) FileName(entry Entry) (string, string) {
	switch p.nameBy {
	case NameByItem:
		if strings.TrimSpace(entry.ItemName) == "" {
			return "", "item name is empty"
		}
		name := posts.ImageFileName(entry.ItemName)
		if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "..") {
			return "", "item name is not a valid file name"
		}
		return name, ""
	default:
		if entry.Date.IsZero() {
			return "", "invalid date " + entry.RawDate
		}
		return entry.Date.Format("2006-01-02") + posts.ImageExtension, ""
	}
}
