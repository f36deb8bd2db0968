package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/content-calendar/app/calendar"
	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/posts"
)

// NewHandler wires the request handlers. activity may be nil.
func NewHandler(store *posts.Store, resolver *posts.ImageResolver, palette *posts.Palette,
	selector *calendar.Selector, activity database.ActivityRepository,
	maxUploadBytes int64, version string) *Handler {
	return &Handler{
		store:          store,
		resolver:       resolver,
		palette:        palette,
		selector:       selector,
		binder:         calendar.NewBinder(version),
		activity:       activity,
		maxUploadBytes: maxUploadBytes,
		version:        version,
	}
}

func (h *Handler) Index(c *gin.Context) {
	snapshot, err := h.store.Load()
	if err != nil {
		slog.Error("Failed to load calendar", "file", h.store.Path(), "error", err)
		c.String(http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	mode := calendar.ParseMode(c.Query("mode"))

	var selected *time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := parseQueryDate(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid date %q", raw)
			return
		}
		selected = &date
	}

	sel := h.selector.Run(snapshot, mode, selected)
	sel.Decorate(h.resolver, h.palette)

	slog.Debug("Calendar view", "mode", string(sel.Mode), "date", sel.SelectedDate.Format("2006-01-02"), "posts", sel.PostCount())

	c.HTML(http.StatusOK, "index.html", h.binder.Run(snapshot, sel))
}

func (h *Handler) Health(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	snapshot, err := h.store.Load()
	if err != nil {
		slog.Error("Health check failed", "operation", "load_calendar", "error", err)
		health["status"] = "error"
		health["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["posts"] = len(snapshot.Posts)
	health["dates"] = len(snapshot.Dates)
	health["dropped_rows"] = snapshot.Dropped

	if count, err := h.resolver.Count(); err == nil {
		health["images"] = count
	} else {
		slog.Warn("Failed to count images", "dir", h.resolver.Dir(), "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) Activity(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	if h.activity == nil {
		c.JSON(http.StatusOK, gin.H{
			"uploads":   []database.Upload{},
			"downloads": []database.Download{},
		})
		return
	}

	uploads, err := h.activity.RecentUploads(limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_uploads", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	downloads, err := h.activity.RecentDownloads(limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_downloads", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploads":   uploads,
		"downloads": downloads,
	})
}

// parseQueryDate accepts ISO dates, sheet-style DD/MM/YYYY, and anything dateparse understands.
// Bare numbers are never read as spreadsheet serials, so 20250120 means 2025-01-20.
func parseQueryDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(posts.SheetDateLayout, raw); err == nil {
		return posts.DateOf(t), nil
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q: %w", raw, err)
	}
	return posts.DateOf(t), nil
}
