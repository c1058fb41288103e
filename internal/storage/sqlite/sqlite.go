// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/duoledger/internal/models"
	"github.com/mmynk/duoledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the database at dbPath without touching the schema.
// Callers must run a Migrator before using the store.
func Open(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %w", models.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", models.ErrStorageUnavailable, err)
	}

	// One connection: callers are single-threaded against the store and
	// this keeps PRAGMA state and transactions on the same handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open database: %w", models.ErrStorageUnavailable, err)
	}

	return &SQLiteStore{db: db}, nil
}

// New opens the database at dbPath and migrates it to SchemaVersion.
func New(dbPath string) (*SQLiteStore, error) {
	store, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := store.Migrator().EnsureSchema(context.Background(), SchemaVersion); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Migrator returns a Migrator over the embedded migrations.
func (s *SQLiteStore) Migrator() *Migrator {
	return NewMigrator(s.db, Migrations)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// unavailable marks a storage failure.
func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStorageUnavailable, msg, err)
}
