// Package database provides storage backends for user preferences.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned by GetSetting when the key has never been written.
var ErrNotFound = errors.New("setting not found")

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// Settings operations
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Open picks the backend: PostgreSQL when databaseURL is set, SQLite at path otherwise.
func Open(path, databaseURL string) (Store, error) {
	if databaseURL != "" {
		return NewPostgres(databaseURL)
	}
	return New(path)
}

// migrate applies the embedded schema with goose.
func migrate(conn *sql.DB, dialect string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// getSetting maps a missing row to ErrNotFound.
func getSetting(row *sql.Row) (string, error) {
	var val string
	err := row.Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return val, err
}
