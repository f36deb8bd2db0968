package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

const photoTypename = "Photo"

type ImageRef struct {
	URI string `json:"uri"`
}

type Media struct {
	Typename   string    `json:"__typename"`
	PhotoImage *ImageRef `json:"photo_image"`
	Image      *ImageRef `json:"image"`
	Thumbnail  string    `json:"thumbnail"`
}

// ExportPost is one post of a scraper JSON export. Unknown fields are ignored.
type ExportPost struct {
	URL   string  `json:"url"`
	Media []Media `json:"media"`
}

// LoadExport decodes the JSON array of scraped posts at path.
func LoadExport(path string) ([]ExportPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}

	var posts []ExportPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode export %s: %w", path, err)
	}

	return posts, nil
}

// IndexByURL keys posts by trimmed URL. A later post with the same URL replaces an earlier one.
func IndexByURL(posts []ExportPost) map[string]ExportPost {
	index := make(map[string]ExportPost, len(posts))
	for _, p := range posts {
		index[strings.TrimSpace(p.URL)] = p
	}
	return index
}

// PrimaryPhoto returns the first Photo media URI, falling back to the first thumbnail.
func PrimaryPhoto(post ExportPost) string {
	for _, m := range post.Media {
		if m.Typename != photoTypename {
			continue
		}
		ref := m.PhotoImage
		if ref == nil {
			ref = m.Image
		}
		if ref != nil && ref.URI != "" {
			return ref.URI
		}
	}

	for _, m := range post.Media {
		if m.Thumbnail != "" {
			return m.Thumbnail
		}
	}

	return ""
}
