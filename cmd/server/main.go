package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/content-calendar/app/api"
	"github.com/lysyi3m/content-calendar/app/auth"
	"github.com/lysyi3m/content-calendar/app/calendar"
	"github.com/lysyi3m/content-calendar/app/cfg"
	"github.com/lysyi3m/content-calendar/app/commands"
	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/posts"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(commands.HashPassword(os.Args[2:]))
	}

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatal(err)
	}
	if appCfg == nil {
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Content Calendar", "version", cfg.GetVersion(), "calendar", appCfg.CalendarFile, "sheet", appCfg.SheetName)

	palette, err := posts.LoadPalette(appCfg.CategoriesFile)
	if err != nil {
		log.Fatalf("Failed to load category palette: %v", err)
	}

	store := posts.NewStore(appCfg.CalendarFile, appCfg.SheetName).WithColumns(posts.Columns{
		ItemName:    appCfg.NameColumn,
		PublishDate: appCfg.DateColumn,
		SubCategory: appCfg.CategoryColumn,
		PostURL:     appCfg.URLColumn,
	})
	snapshot, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load calendar: %v", err)
	}
	slog.Info("Calendar loaded", "posts", len(snapshot.Posts), "dates", len(snapshot.Dates), "dropped_rows", snapshot.Dropped)

	if err := os.MkdirAll(appCfg.ImageDir, 0755); err != nil {
		log.Fatalf("Failed to create image directory: %v", err)
	}

	verifier, err := buildVerifier(appCfg)
	if err != nil {
		log.Fatalf("Failed to configure authentication: %v", err)
	}

	var activity database.ActivityRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open activity log: %v", err)
		}
		defer db.Close()
		activity = database.NewActivityRepository(db)
		slog.Info("Activity log ready", "path", appCfg.DBPath)
	}

	if !appCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(store, posts.NewImageResolver(appCfg.ImageDir), palette,
		calendar.NewSelector(), activity, appCfg.MaxUploadBytes(), cfg.GetVersion())
	router := api.NewServer(handler, verifier)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Content Calendar stopped")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func buildVerifier(c *cfg.Cfg) (auth.Verifier, error) {
	if c.AuthFile != "" {
		verifier, username, err := auth.FileVerifier(c.AuthFile)
		if err != nil {
			return nil, err
		}
		slog.Info("Basic auth from file", "file", c.AuthFile, "username", username)
		return verifier, nil
	}

	if c.UsesDefaultCredentials() {
		slog.Warn("Basic auth is using the default credentials, set BASIC_AUTH_USER and BASIC_AUTH_PASSWORD or AUTH_FILE")
	}
	return auth.StaticVerifier(c.AuthUser, c.AuthPassword), nil
}
