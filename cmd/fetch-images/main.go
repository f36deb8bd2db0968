package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/content-calendar/app/cfg"
	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/ingest"
	"github.com/lysyi3m/content-calendar/app/tasks"
)

func main() {
	fetchCfg, err := cfg.LoadFetch(nil)
	if err != nil {
		log.Fatal(err)
	}
	if fetchCfg == nil {
		return
	}

	level := slog.LevelInfo
	if fetchCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	nameBy, err := ingest.ParseNameBy(fetchCfg.NameBy)
	if err != nil {
		log.Fatal(err)
	}

	entries, err := ingest.ReadEntries(fetchCfg.CalendarFile, fetchCfg.SheetName, ingest.Columns{
		URL:  fetchCfg.URLColumn,
		Date: fetchCfg.DateColumn,
		Name: fetchCfg.NameColumn,
	})
	if err != nil {
		log.Fatalf("Failed to read calendar: %v", err)
	}
	slog.Info("Loaded post-to-date mappings", "file", fetchCfg.CalendarFile, "count", len(entries))
	if len(entries) == 0 {
		slog.Warn("No valid mappings found, check that the URL column holds full post URLs", "column", fetchCfg.URLColumn)
	}

	exported, err := ingest.LoadExport(fetchCfg.JSONFile)
	if err != nil {
		log.Fatalf("Failed to load export: %v", err)
	}
	index := ingest.IndexByURL(exported)
	slog.Info("Loaded export", "file", fetchCfg.JSONFile, "unique_urls", len(index))

	if err := os.MkdirAll(fetchCfg.ImageDir, 0755); err != nil {
		log.Fatalf("Failed to create image directory: %v", err)
	}

	var activity database.ActivityRepository
	if fetchCfg.DBPath != "" {
		db, err := database.NewConnection(fetchCfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open activity log: %v", err)
		}
		defer db.Close()
		activity = database.NewActivityRepository(db)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := ingest.NewPlanner(fetchCfg.ImageDir, nameBy).Run(entries, index)

	downloader := ingest.NewDownloader(&http.Client{}, fetchCfg.UserAgent, fetchCfg.Referer,
		time.Duration(fetchCfg.Timeout)*time.Second)
	batch := tasks.NewImageBatch(downloader, activity, fetchCfg.ImageDir, fetchCfg.WorkerCount)

	summary := batch.Run(ctx, jobs)
	summary.Log()
}
