package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lysyi3m/content-calendar/app/ingest"
)

type DownloadImageTask struct {
	Task
	Job        ingest.Job
	dest       string
	downloader *ingest.Downloader
}

func NewDownloadImageTask(job ingest.Job, imageDir string, downloader *ingest.Downloader) *DownloadImageTask {
	return &DownloadImageTask{
		Task:       NewTask(TaskTypeDownloadImage, job.FileName),
		Job:        job,
		dest:       filepath.Join(imageDir, job.FileName),
		downloader: downloader,
	}
}

func (t *DownloadImageTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	size, err := t.downloader.Run(ctx, t.Job.ImageURL, t.dest)
	if errors.Is(err, ingest.ErrForbidden) || errors.Is(err, ingest.ErrExists) {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "DownloadImage",
		"file", t.Job.FileName,
		"post_url", t.Job.Entry.PostURL,
		"bytes", size,
		"duration", t.GetDuration())

	return nil
}
