package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrForbidden means the CDN refused the image, usually because its signed URL expired.
var ErrForbidden = errors.New("image forbidden (signature expired or blocked)")

// ErrExists means dest appeared before the download finished. It is never overwritten.
var ErrExists = errors.New("image already exists")

type Downloader struct {
	httpClient *http.Client
	userAgent  string
	referer    string
	timeout    time.Duration
}

func NewDownloader(httpClient *http.Client, userAgent, referer string, timeout time.Duration) *Downloader {
	return &Downloader{
		httpClient: httpClient,
		userAgent:  userAgent,
		referer:    referer,
		timeout:    timeout,
	}
}

// Run fetches imageURL into dest and returns the number of bytes written.
// dest only appears once the body has been read completely, and an existing
// dest is left untouched.
func (d *Downloader) Run(ctx context.Context, imageURL, dest string) (int64, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	if d.referer != "" {
		req.Header.Set("Referer", d.referer)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return 0, ErrForbidden
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write image: %w", err)
	}

	if err := os.Link(tmp.Name(), dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrExists, filepath.Base(dest))
		}
		return 0, fmt.Errorf("failed to save image: %w", err)
	}

	return size, nil
}
