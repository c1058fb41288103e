package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

// GetConfig returns the configuration value for key.
func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM configuration WHERE id = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("failed to read configuration", err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// SetConfig upserts a configuration value.
func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO configuration (id, value) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return unavailable("failed to write configuration", err)
	}
	return nil
}
