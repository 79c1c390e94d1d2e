package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the value stored under key for the owner. ok is false
// when the key has never been set.
func (r *Repository) GetSetting(ctx context.Context, ownerID, key string) (value string, ok bool, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT value FROM user_settings WHERE owner_id = ? AND key = ?`, ownerID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) SetSetting(ctx context.Context, ownerID, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (owner_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (owner_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, ownerID, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
