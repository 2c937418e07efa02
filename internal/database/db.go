// Package database owns the SQLite file behind the recipe collection and the
// meal plan history. The schema lives in embedded migrations and is brought
// up to date every time the file is opened.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// connPragmas are applied to every connection the pool opens. The bot clips
// recipes while plans are being read, so writers wait instead of failing.
var connPragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
}

// DB is the open recipe store. Path is kept for disk usage reporting.
type DB struct {
	SQL  *sql.DB
	Path string
}

// NewDB creates the parent directory of dbPath if needed, migrates the schema
// and opens a single-writer connection pool.
func NewDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", dbPath, err)
	}
	return &DB{SQL: conn, Path: dbPath}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.SQL.Close()
}

func dsn(dbPath string) string {
	q := url.Values{"_pragma": connPragmas}
	return "file:" + dbPath + "?" + q.Encode()
}

// RunMigrations applies every pending migration embedded in the binary.
// An already current schema is not an error.
func RunMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations for %s: %w", dbPath, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
