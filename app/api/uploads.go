package api

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"

	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/posts"
)

const calendarExtension = ".xlsx"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func (h *Handler) calendarPage() uploadPage {
	return uploadPage{
		Title:   "Upload Calendar",
		Action:  "/upload-calendar",
		Accept:  calendarExtension,
		Hint:    fmt.Sprintf("Replaces %s. The workbook must contain the %q sheet.", filepath.Base(h.store.Path()), h.store.Sheet()),
		Version: h.version,
	}
}

func (h *Handler) imagePage() uploadPage {
	return uploadPage{
		Title:   "Upload Image",
		Action:  "/upload-image",
		Accept:  ".jpg,.jpeg,.png,.gif,.webp",
		Hint:    "Name the file after the post's Item Name, e.g. \"Winter Appeal.jpg\".",
		Version: h.version,
	}
}

func (h *Handler) UploadCalendarForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.calendarPage())
}

func (h *Handler) UploadImageForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.imagePage())
}

// limitBody caps upload request bodies at the configured size.
func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	c.Next()
}

func (h *Handler) UploadCalendar(c *gin.Context) {
	page := h.calendarPage()

	file, status, problem := formFile(c)
	if problem != "" {
		page.Error = problem
		c.HTML(status, "upload.html", page)
		return
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), calendarExtension) {
		page.Error = "Only .xlsx files are allowed"
		c.HTML(http.StatusBadRequest, "upload.html", page)
		return
	}

	target := h.store.Path()
	tmpPath, size, err := saveTemp(file, filepath.Dir(target), ".upload-*"+calendarExtension)
	if err != nil {
		slog.Error("Failed to save upload", "operation", "upload_calendar", "error", err)
		page.Error = "Failed to save upload"
		c.HTML(http.StatusInternalServerError, "upload.html", page)
		return
	}
	defer os.Remove(tmpPath)

	if err := h.store.ValidateFile(tmpPath); err != nil {
		slog.Warn("Rejected calendar upload", "filename", file.Filename, "error", err)
		page.Error = fmt.Sprintf("Not a usable calendar: %v", err)
		c.HTML(http.StatusBadRequest, "upload.html", page)
		return
	}

	if err := os.Rename(tmpPath, target); err != nil {
		slog.Error("Failed to replace calendar", "file", target, "error", err)
		page.Error = "Failed to replace calendar"
		c.HTML(http.StatusInternalServerError, "upload.html", page)
		return
	}

	slog.Info("Calendar replaced", "filename", file.Filename, "size", size, "client_ip", c.ClientIP())
	h.recordUpload(database.UploadKindCalendar, file.Filename, size, c.ClientIP())

	page.Message = "Calendar updated"
	if snapshot, err := h.store.Load(); err == nil {
		page.Message = fmt.Sprintf("Calendar updated: %d posts across %d dates", len(snapshot.Posts), len(snapshot.Dates))
	}
	c.HTML(http.StatusOK, "upload.html", page)
}

func (h *Handler) UploadImage(c *gin.Context) {
	page := h.imagePage()

	file, status, problem := formFile(c)
	if problem != "" {
		page.Error = problem
		c.HTML(status, "upload.html", page)
		return
	}

	name, ok := sanitizeImageName(file.Filename)
	if !ok {
		page.Error = "Invalid file name"
		c.HTML(http.StatusBadRequest, "upload.html", page)
		return
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
		page.Error = "Only .jpg, .jpeg, .png, .gif and .webp files are allowed"
		c.HTML(http.StatusBadRequest, "upload.html", page)
		return
	}

	if err := os.MkdirAll(h.resolver.Dir(), 0755); err != nil {
		slog.Error("Failed to create image directory", "dir", h.resolver.Dir(), "error", err)
		page.Error = "Failed to save upload"
		c.HTML(http.StatusInternalServerError, "upload.html", page)
		return
	}

	tmpPath, size, err := saveTemp(file, h.resolver.Dir(), ".upload-*")
	if err != nil {
		slog.Error("Failed to save upload", "operation", "upload_image", "error", err)
		page.Error = "Failed to save upload"
		c.HTML(http.StatusInternalServerError, "upload.html", page)
		return
	}
	defer os.Remove(tmpPath)

	format, err := decodeImage(tmpPath)
	if err != nil {
		slog.Warn("Rejected image upload", "filename", file.Filename, "error", err)
		page.Error = "The file is not a readable image"
		c.HTML(http.StatusBadRequest, "upload.html", page)
		return
	}

	target := filepath.Join(h.resolver.Dir(), name)
	if err := os.Rename(tmpPath, target); err != nil {
		slog.Error("Failed to store image", "file", target, "error", err)
		page.Error = "Failed to save upload"
		c.HTML(http.StatusInternalServerError, "upload.html", page)
		return
	}

	slog.Info("Image stored", "filename", name, "format", format, "size", size, "client_ip", c.ClientIP())
	h.recordUpload(database.UploadKindImage, name, size, c.ClientIP())

	page.Message = fmt.Sprintf("Saved %s", name)
	c.HTML(http.StatusOK, "upload.html", page)
}

func (h *Handler) recordUpload(kind, filename string, size int64, remoteAddr string) {
	if h.activity == nil {
		return
	}
	if err := h.activity.RecordUpload(kind, filename, size, remoteAddr); err != nil {
		slog.Warn("Failed to record upload", "kind", kind, "filename", filename, "error", err)
	}
}

// formFile returns the "file" form field, or a user-facing problem with its status.
func formFile(c *gin.Context) (*multipart.FileHeader, int, string) {
	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is larger than %d MB", maxErr.Limit>>20)
		}
		return nil, http.StatusBadRequest, "No file selected"
	}
	if file.Filename == "" {
		return nil, http.StatusBadRequest, "No file selected"
	}
	return file, http.StatusOK, ""
}

func saveTemp(file *multipart.FileHeader, dir, pattern string) (string, int64, error) {
	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}

	return tmp.Name(), size, nil
}

func decodeImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, format, err := image.Decode(f)
	return format, err
}

// sanitizeImageName keeps the base name of an uploaded file, composed to NFC.
// Spaces are kept so names still match Item Name values.
func sanitizeImageName(filename string) (string, bool) {
	name := strings.ReplaceAll(filename, `\`, "/")
	name = posts.NormalizeName(strings.TrimSpace(filepath.Base(name)))

	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", false
	}
	if strings.ContainsAny(name, "\x00:") {
		return "", false
	}
	return name, true
}
