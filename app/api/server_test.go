package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/content-calendar/app/auth"
	"github.com/lysyi3m/content-calendar/app/calendar"
	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/posts"
	"github.com/lysyi3m/content-calendar/app/posts/poststest"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

type testEnv struct {
	router   *gin.Engine
	store    *posts.Store
	imageDir string
	dir      string
	activity *database.ActivityRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	calendarPath := poststest.Calendar(t, dir)
	imageDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		t.Fatal(err)
	}

	db, err := database.NewConnection(filepath.Join(dir, "activity.db"))
	if err != nil {
		t.Fatalf("NewConnection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	activity := database.NewActivityRepository(db)

	store := posts.NewStore(calendarPath, "Feed List")
	selector := calendar.NewSelector().WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	handler := NewHandler(store, posts.NewImageResolver(imageDir), posts.DefaultPalette(), selector, activity, 1<<20, "test")

	return &testEnv{
		router:   NewServer(handler, auth.StaticVerifier(testUser, testPassword)),
		store:    store,
		imageDir: imageDir,
		dir:      dir,
		activity: activity,
	}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.SetBasicAuth(testUser, testPassword)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, target, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(testUser, testPassword)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) distinctDates(t *testing.T) int {
	t.Helper()

	snapshot, err := e.store.Load()
	if err != nil {
		t.Fatalf("Store load failed: %v", err)
	}
	return len(snapshot.Dates)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/upload-calendar", "/upload-image", "/health", "/api/activity"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != `Basic realm="Content Calendar"` {
				t.Errorf("Unexpected WWW-Authenticate header %q", got)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(testUser, "wrong")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", w.Code)
	}
}

func TestIndexDefaultsToLatestDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "February Update") {
		t.Error("Expected latest post to be shown")
	}
	if strings.Contains(body, "<h3>Winter Appeal</h3>") {
		t.Error("Expected other days to be excluded")
	}
	if !strings.Contains(body, "mode=day&date=2025-01-20") {
		t.Error("Expected previous link to the prior post date")
	}
}

func TestIndexDayNavigation(t *testing.T) {
	env := newTestEnv(t)

	body := env.get(t, "/?mode=day&date=2025-01-20").Body.String()

	if !strings.Contains(body, "<h3>Winter Appeal</h3>") {
		t.Error("Expected Winter Appeal on 2025-01-20")
	}
	if !strings.Contains(body, "Previous</a>") || !strings.Contains(body, `href="/?mode=day&date=2025-01-05">&larr; Previous`) {
		t.Error("Expected previous link to 2025-01-05")
	}
	if !strings.Contains(body, `href="/?mode=day&date=2025-02-01">Next`) {
		t.Error("Expected next link to 2025-02-01")
	}
}

func TestIndexMonthView(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/?mode=month&date=2025-01-15")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{
		"January 2025",
		">New Year</a>",
		">Winter Appeal</a>",
		`href="/?mode=month&date=2024-12-01">&larr; Previous`,
		`href="/?mode=month&date=2025-02-01">Next`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
	if strings.Contains(body, ">February Update</a>") {
		t.Error("Expected February post to be outside the January grid")
	}

	// January 2025 starts on a Wednesday
	if got := strings.Count(body, `class="cell blank"`); got != 3 {
		t.Errorf("Expected 3 leading blanks, got %d", got)
	}
}

func TestIndexWeekHeading(t *testing.T) {
	env := newTestEnv(t)

	body := env.get(t, "/?mode=week&date=2025-01-22").Body.String()
	if !strings.Contains(body, "Week of Sunday, January 19, 2025") {
		t.Error("Expected heading to name the Sunday starting the week")
	}
	if strings.Contains(body, "Week of Wednesday") {
		t.Error("Expected heading not to use the selected weekday")
	}
	if !strings.Contains(body, "<h3>Winter Appeal</h3>") {
		t.Error("Expected Winter Appeal in the selected week")
	}
}

func TestIndexAllModeAndUnknownMode(t *testing.T) {
	env := newTestEnv(t)

	body := env.get(t, "/?mode=all&date=2025-01-20").Body.String()
	if !strings.Contains(body, "<h3>Winter Appeal</h3>") || !strings.Contains(body, "<h3>New Year</h3>") {
		t.Error("Expected all posts up to the selected date")
	}
	if strings.Contains(body, "<h3>February Update</h3>") {
		t.Error("Expected later posts to be excluded")
	}

	body = env.get(t, "/?mode=bogus&date=2025-01-05").Body.String()
	if !strings.Contains(body, "<h3>New Year</h3>") || strings.Contains(body, "<h3>Winter Appeal</h3>") {
		t.Error("Expected unknown mode to fall back to day view")
	}
}

func TestIndexLenientDates(t *testing.T) {
	env := newTestEnv(t)

	for _, raw := range []string{"20/01/2025", "2025-01-20T10:30:00Z", "January%2020,%202025", "20250120"} {
		t.Run(raw, func(t *testing.T) {
			body := env.get(t, "/?mode=day&date="+raw).Body.String()
			if !strings.Contains(body, "<h3>Winter Appeal</h3>") {
				t.Errorf("Expected %s to select 2025-01-20", raw)
			}
		})
	}

	if w := env.get(t, "/?date=not-a-date"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid date, got %d", w.Code)
	}
}

func TestParseQueryDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"2025-01-20", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
		{"5/1/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"20250120", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
		{"2025-01-20T23:30:00Z", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseQueryDate(tt.raw)
			if err != nil {
				t.Fatalf("Expected %q to parse, got %v", tt.raw, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %s, got %s", tt.expected.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		})
	}

	// 45677 is the serial for 2025-01-20 inside a workbook, not a query date.
	if got, err := parseQueryDate("45677"); err == nil && got.Equal(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected bare number not to be read as a spreadsheet serial")
	}
}

func TestIndexImageResolution(t *testing.T) {
	env := newTestEnv(t)

	if err := os.WriteFile(filepath.Join(env.imageDir, "Winter Appeal.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	body := env.get(t, "/?mode=day&date=2025-01-20").Body.String()
	if !strings.Contains(body, `src="/images/Winter%20Appeal.jpg"`) {
		t.Error("Expected image reference for Winter Appeal")
	}
	if !strings.Contains(body, "#47BBBC") {
		t.Error("Expected Programs category color")
	}

	body = env.get(t, "/?mode=day&date=2025-01-05").Body.String()
	if !strings.Contains(body, "No image") {
		t.Error("Expected missing image placeholder")
	}

	w := env.get(t, "/images/Winter%20Appeal.jpg")
	if w.Code != http.StatusOK || w.Body.String() != "jpeg" {
		t.Errorf("Expected image to be served, got %d", w.Code)
	}
}

func TestIndexMissingCalendar(t *testing.T) {
	env := newTestEnv(t)
	os.Remove(env.store.Path())

	if w := env.get(t, "/"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if w := env.get(t, "/health"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
}

func TestUploadCalendarRejectsNonXLSX(t *testing.T) {
	env := newTestEnv(t)
	before := env.distinctDates(t)

	w := env.upload(t, "/upload-calendar", "calendar.csv", []byte("Item Name,Publish Date\n"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Only .xlsx files are allowed") {
		t.Error("Expected rejection message")
	}
	if after := env.distinctDates(t); after != before {
		t.Errorf("Expected %d distinct dates, got %d", before, after)
	}
}

func TestUploadCalendarRejectsBrokenWorkbook(t *testing.T) {
	env := newTestEnv(t)
	before := env.distinctDates(t)

	w := env.upload(t, "/upload-calendar", "calendar.xlsx", []byte("not a zip"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	wrongSheet := filepath.Join(t.TempDir(), "other.xlsx")
	poststest.WriteWorkbook(t, wrongSheet, "Sheet 2", [][]any{poststest.Header})
	data, err := os.ReadFile(wrongSheet)
	if err != nil {
		t.Fatal(err)
	}

	w = env.upload(t, "/upload-calendar", "other.xlsx", data)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing sheet, got %d", w.Code)
	}

	if after := env.distinctDates(t); after != before {
		t.Errorf("Expected calendar to stay unchanged, got %d dates", after)
	}
}

func TestUploadCalendarReplaces(t *testing.T) {
	env := newTestEnv(t)

	replacement := filepath.Join(t.TempDir(), "new.xlsx")
	poststest.WriteWorkbook(t, replacement, "Feed List", [][]any{
		poststest.Header,
		{"Spring Launch", "01/03/2025", "Programs", "https://www.facebook.com/p/9", ""},
	})
	data, err := os.ReadFile(replacement)
	if err != nil {
		t.Fatal(err)
	}

	w := env.upload(t, "/upload-calendar", "NEW.XLSX", data)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "1 posts across 1 dates") {
		t.Errorf("Expected success message, got %s", w.Body.String())
	}

	if got := env.distinctDates(t); got != 1 {
		t.Errorf("Expected 1 distinct date after replace, got %d", got)
	}

	body := env.get(t, "/").Body.String()
	if !strings.Contains(body, "Spring Launch") {
		t.Error("Expected next request to see the new calendar")
	}

	uploads, err := env.activity.RecentUploads(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 || uploads[0].Kind != database.UploadKindCalendar || uploads[0].Filename != "NEW.XLSX" {
		t.Errorf("Expected calendar upload to be recorded, got %+v", uploads)
	}
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/upload-image", `C:\Users\me\New Year.png`, pngBytes(t))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.imageDir, "New Year.png")); err != nil {
		t.Errorf("Expected image to be stored under its base name: %v", err)
	}

	uploads, err := env.activity.RecentUploads(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 || uploads[0].Kind != database.UploadKindImage {
		t.Errorf("Expected image upload to be recorded, got %+v", uploads)
	}
}

func TestUploadImageRejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"wrong extension", "notes.txt", []byte("hello")},
		{"not an image", "Winter Appeal.jpg", []byte("definitely not a jpeg")},
		{"hidden file", ".secret.png", pngBytes(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.upload(t, "/upload-image", tt.filename, tt.content)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}

	entries, err := os.ReadDir(env.imageDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files stored, got %d", len(entries))
	}
}

func TestUploadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	before := env.distinctDates(t)

	w := env.upload(t, "/upload-calendar", "big.xlsx", bytes.Repeat([]byte("x"), 2<<20))
	if w.Code == http.StatusOK {
		t.Error("Expected oversized upload to be rejected")
	}
	if after := env.distinctDates(t); after != before {
		t.Errorf("Expected calendar to stay unchanged, got %d dates", after)
	}
}

func TestUploadForms(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/upload-calendar")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `action="/upload-calendar"`) {
		t.Errorf("Unexpected calendar form: %d", w.Code)
	}

	w = env.get(t, "/upload-image")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `action="/upload-image"`) {
		t.Errorf("Unexpected image form: %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	os.WriteFile(filepath.Join(env.imageDir, "New Year.jpg"), []byte("x"), 0644)

	w := env.get(t, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var health map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}

	if health["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", health["status"])
	}
	if health["posts"] != float64(3) || health["dates"] != float64(3) {
		t.Errorf("Expected 3 posts on 3 dates, got %v / %v", health["posts"], health["dates"])
	}
	if health["images"] != float64(1) {
		t.Errorf("Expected 1 image, got %v", health["images"])
	}
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t)
	env.activity.RecordDownload("https://www.facebook.com/p/1", "2025-01-05.jpg", "downloaded", "")

	w := env.get(t, "/api/activity?limit=5")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Uploads   []database.Upload   `json:"uploads"`
		Downloads []database.Download `json:"downloads"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Uploads) != 0 || len(resp.Downloads) != 1 {
		t.Errorf("Unexpected activity: %+v", resp)
	}

	if w := env.get(t, "/api/activity?limit=zero"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", w.Code)
	}
}

func TestSanitizeImageName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"Winter Appeal.jpg", "Winter Appeal.jpg", true},
		{"  Spaced.png ", "Spaced.png", true},
		{"../../etc/passwd.jpg", "passwd.jpg", true},
		{`C:\photos\Cafe` + "\u0301" + ".jpg", "Caf\u00e9.jpg", true},
		{".hidden.jpg", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := sanitizeImageName(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.expected, tt.ok, got, ok)
			}
		})
	}
}
