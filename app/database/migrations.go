package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type SchemaVersion struct {
	Version uint
	Dirty   bool
}

// RunMigrations brings the activity log schema up to date.
// A dirty schema is an error: a previous migration stopped halfway.
func RunMigrations(db *DB) (SchemaVersion, error) {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	before, err := currentVersion(m)
	if err != nil {
		return SchemaVersion{}, err
	}
	if before.Dirty {
		return before, fmt.Errorf("activity log schema is dirty at version %d", before.Version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaVersion{}, fmt.Errorf("failed to run migrations: %w", err)
	}

	after, err := currentVersion(m)
	if err != nil {
		return SchemaVersion{}, err
	}

	if after.Version != before.Version {
		slog.Info("Activity log schema migrated", "from", before.Version, "to", after.Version)
	}

	return after, nil
}

func currentVersion(m *migrate.Migrate) (SchemaVersion, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}
