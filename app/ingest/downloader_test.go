package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloaderRun(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "2025-01-05.jpg")
	d := NewDownloader(server.Client(), "test-agent", "https://www.facebook.com/", 5*time.Second)

	size, err := d.Run(context.Background(), server.URL+"/img.jpg", dest)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if size != int64(len("jpeg-bytes")) {
		t.Errorf("Expected size %d, got %d", len("jpeg-bytes"), size)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Errorf("Unexpected file content %q, %v", data, err)
	}
	if gotUA != "test-agent" || gotReferer != "https://www.facebook.com/" {
		t.Errorf("Expected headers to be sent, got UA=%q Referer=%q", gotUA, gotReferer)
	}
}

func TestDownloaderForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "URL signature expired", http.StatusForbidden)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "2025-01-05.jpg")
	d := NewDownloader(server.Client(), "test-agent", "", 5*time.Second)

	_, err := d.Run(context.Background(), server.URL, dest)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files left behind, got %d", len(entries))
	}
}

func TestDownloaderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), "test-agent", "", 5*time.Second)
	_, err := d.Run(context.Background(), server.URL, filepath.Join(t.TempDir(), "x.jpg"))
	if err == nil || errors.Is(err, ErrForbidden) {
		t.Errorf("Expected a non-forbidden error, got %v", err)
	}
}

func TestDownloaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), "test-agent", "", 50*time.Millisecond)
	_, err := d.Run(context.Background(), server.URL, filepath.Join(t.TempDir(), "x.jpg"))
	if err == nil {
		t.Error("Expected timeout error")
	}
}

func TestDownloaderKeepsExistingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("second"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "2025-01-05.jpg")
	if err := os.WriteFile(dest, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(server.Client(), "test-agent", "", 5*time.Second)
	_, err := d.Run(context.Background(), server.URL, dest)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Expected ErrExists, got %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "first" {
		t.Errorf("Expected existing content %q, got %q (%v)", "first", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the existing file, got %d entries", len(entries))
	}
}
