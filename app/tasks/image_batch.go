package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/ingest"
)

// ImageBatch downloads every pending job and tallies all outcomes.
type ImageBatch struct {
	downloader  *ingest.Downloader
	activity    database.ActivityRepository
	imageDir    string
	workerCount int
	retryDelay  time.Duration

	mu      sync.Mutex
	summary ingest.Summary
}

// NewImageBatch builds a batch. activity may be nil to skip the activity log.
func NewImageBatch(downloader *ingest.Downloader, activity database.ActivityRepository, imageDir string, workerCount int) *ImageBatch {
	return &ImageBatch{
		downloader:  downloader,
		activity:    activity,
		imageDir:    imageDir,
		workerCount: workerCount,
	}
}

// Run never stops on a single job's failure. Jobs still queued when ctx is
// cancelled are left out of the summary.
func (b *ImageBatch) Run(ctx context.Context, jobs []ingest.Job) ingest.Summary {
	b.summary = ingest.Summary{}

	pending := 0
	for _, job := range jobs {
		if job.Status == ingest.StatusPending {
			pending++
		}
	}

	runner := NewRunner(ctx, b.workerCount, pending, b.onComplete)
	if b.retryDelay > 0 {
		runner.retryDelay = b.retryDelay
	}
	runner.Start()

	for _, job := range jobs {
		if job.Status != ingest.StatusPending {
			b.finish(job, job.Status, job.Message)
			continue
		}

		task := NewDownloadImageTask(job, b.imageDir, b.downloader)
		if err := runner.EnqueueTask(task); err != nil {
			b.finish(job, ingest.StatusFailed, err.Error())
		}
	}

	runner.Wait()
	runner.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (b *ImageBatch) onComplete(task TaskInterface, err error) {
	t, ok := task.(*DownloadImageTask)
	if !ok {
		return
	}

	switch {
	case err == nil:
		b.finish(t.Job, ingest.StatusDownloaded, "")
	case errors.Is(err, ingest.ErrForbidden):
		b.finish(t.Job, ingest.StatusForbidden, err.Error())
	case errors.Is(err, ingest.ErrExists):
		b.finish(t.Job, ingest.StatusExists, err.Error())
	default:
		b.finish(t.Job, ingest.StatusFailed, err.Error())
	}
}

func (b *ImageBatch) finish(job ingest.Job, status ingest.Status, message string) {
	switch status {
	case ingest.StatusDownloaded:
		slog.Info("Downloaded", "file", job.FileName, "post_url", job.Entry.PostURL)
	case ingest.StatusExists:
		slog.Info("Skipping, already exists", "file", job.FileName)
	case ingest.StatusNoMatch:
		slog.Info("Skipping, no match in export", "post_url", job.Entry.PostURL)
	case ingest.StatusNoImage:
		slog.Info("No image found for post", "post_url", job.Entry.PostURL)
	case ingest.StatusInvalid:
		slog.Warn("Skipping row", "row", job.Entry.Row, "post_url", job.Entry.PostURL, "reason", message)
	case ingest.StatusForbidden:
		slog.Warn("Image forbidden, signature expired or blocked; download manually from the post", "image_url", job.ImageURL, "post_url", job.Entry.PostURL)
	default:
		slog.Error("Failed to download image", "image_url", job.ImageURL, "post_url", job.Entry.PostURL, "error", message)
	}

	b.mu.Lock()
	b.summary.Add(status)
	b.mu.Unlock()

	if b.activity == nil {
		return
	}
	if err := b.activity.RecordDownload(job.Entry.PostURL, job.FileName, string(status), message); err != nil {
		slog.Warn("Failed to record download", "post_url", job.Entry.PostURL, "error", err)
	}
}
