package ingest

import (
	"log/slog"
)

// Summary counts job outcomes. Failed includes Forbidden and Invalid.
type Summary struct {
	Downloaded int
	Existing   int
	NoMatch    int
	NoImage    int
	Failed     int
	Forbidden  int
	Invalid    int
}

func (s *Summary) Add(status Status) {
	switch status {
	case StatusDownloaded:
		s.Downloaded++
	case StatusExists:
		s.Existing++
	case StatusNoMatch:
		s.NoMatch++
	case StatusNoImage:
		s.NoImage++
	case StatusForbidden:
		s.Forbidden++
		s.Failed++
	case StatusInvalid:
		s.Invalid++
		s.Failed++
	default:
		s.Failed++
	}
}

func (s Summary) Total() int {
	return s.Downloaded + s.Existing + s.NoMatch + s.NoImage + s.Failed
}

func (s Summary) Log() {
	slog.Info("Image download complete",
		"downloaded", s.Downloaded,
		"existing", s.Existing,
		"no_match", s.NoMatch,
		"no_image", s.NoImage,
		"failed", s.Failed,
		"forbidden", s.Forbidden,
		"invalid", s.Invalid)

	if s.NoMatch > 0 {
		slog.Warn("Some posts had no match in the export, check URL spelling and case", "count", s.NoMatch)
	}
	if s.Forbidden > 0 {
		slog.Warn("Some image URLs were refused, download them manually from the post", "count", s.Forbidden)
	}
}
