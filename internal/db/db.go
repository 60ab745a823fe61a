package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tourney-draw/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DSN builds a go-sqlite3 connection string. Transactions begin IMMEDIATE so
// the read-then-insert checks in the draw and progression services hold the
// write lock from their first statement.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
}

func InitDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database connected", "path", path)
	return db, nil
}

func RunMigrations(database *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
