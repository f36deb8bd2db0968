package posts

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const ImageExtension = ".jpg"

// ImageResolver looks up post images in a flat directory.
type ImageResolver struct {
	dir string
}

func NewImageResolver(dir string) *ImageResolver {
	return &ImageResolver{dir: dir}
}

func (r *ImageResolver) Dir() string {
	return r.dir
}

// Run sets post.Image to the matching file name, or "" when there is none.
func (r *ImageResolver) Run(post *Post) {
	post.Image = r.Lookup(post.ItemName)
}

// Lookup returns the image file name for itemName if it exists.
func (r *ImageResolver) Lookup(itemName string) string {
	name := ImageFileName(itemName)
	if name == ImageExtension || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "..") {
		return ""
	}

	info, err := os.Stat(filepath.Join(r.dir, name))
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return name
}

// Count returns the number of regular files in the image directory.
func (r *ImageResolver) Count() (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			count++
		}
	}
	return count, nil
}

// ImageFileName builds the store file name for an item: trimmed, NFC, plus ImageExtension.
func ImageFileName(itemName string) string {
	return NormalizeName(strings.TrimSpace(itemName)) + ImageExtension
}

// NormalizeName composes Unicode so names typed on different systems compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
