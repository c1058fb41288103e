package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/mmynk/duoledger/internal/models"
)

// SchemaVersion is the schema this build reads and writes.
const SchemaVersion uint = 2

// migrationsDir is the directory inside the migration FS holding NNNN_title.up.sql files.
const migrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS

// Migrator brings the database to a target schema version.
// The version is kept in SQLite's user_version header field, which is
// written inside the same transaction as the steps.
type Migrator struct {
	db         *sql.DB
	migrations fs.FS
}

// NewMigrator creates a Migrator reading steps from the migrations directory of fsys.
func NewMigrator(db *sql.DB, fsys fs.FS) *Migrator {
	return &Migrator{db: db, migrations: fsys}
}

// Version returns the stored schema version.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var version int64
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: failed to read schema version: %w", models.ErrStorageUnavailable, err)
	}
	if version < 0 {
		return 0, fmt.Errorf("%w: corrupt schema version %d", models.ErrStorageUnavailable, version)
	}
	return uint(version), nil
}

// EnsureSchema applies every step between the stored version and target in a
// single transaction and returns the versions applied. When the stored version
// already equals target it returns immediately without writing.
//
// Any failure rolls the whole sequence back, leaving the stored version
// unchanged, and is reported as models.ErrStorageUnavailable.
func (m *Migrator) EnsureSchema(ctx context.Context, target uint) ([]uint, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	if current == target {
		return nil, nil
	}
	if current > target {
		return nil, fmt.Errorf("%w: database schema version %d is newer than supported version %d",
			models.ErrStorageUnavailable, current, target)
	}

	steps, err := m.loadSteps(current+1, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin migration: %w", models.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	applied := make([]uint, 0, len(steps))
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return nil, fmt.Errorf("%w: migration %d (%s) failed: %w",
				models.ErrStorageUnavailable, step.version, step.name, err)
		}
		applied = append(applied, step.version)
	}

	// PRAGMA does not accept bound parameters; target is an integer.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return nil, fmt.Errorf("%w: failed to store schema version: %w", models.ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit migration: %w", models.ErrStorageUnavailable, err)
	}

	slog.Info("Schema migrated", "from", current, "to", target, "steps", len(applied))
	return applied, nil
}

type migrationStep struct {
	version uint
	name    string
	sql     string
}

// loadSteps reads the up scripts for versions from..to, which must all exist.
func (m *Migrator) loadSteps(from, to uint) ([]migrationStep, error) {
	src, err := iofs.New(m.migrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	defer src.Close()

	available, err := listVersions(src)
	if err != nil {
		return nil, err
	}

	steps := make([]migrationStep, 0, to-from+1)
	for v := from; v <= to; v++ {
		if !available[v] {
			return nil, fmt.Errorf("migration %d is missing", v)
		}
		r, name, err := src.ReadUp(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %d: %w", v, err)
		}
		body, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %d: %w", v, err)
		}
		steps = append(steps, migrationStep{version: v, name: name, sql: string(body)})
	}
	return steps, nil
}

func listVersions(src source.Driver) (map[uint]bool, error) {
	versions := make(map[uint]bool)
	v, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return versions, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	for {
		versions[v] = true
		v, err = src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list migrations: %w", err)
		}
	}
}
