package store

import (
	"context"
	"database/sql"
	"errors"
)

// Setting keys the host persists so a pushed snapshot survives restarts.
const (
	SettingStaticRedirectURL = "static_redirect_url"
	SettingPublicBaseURL     = "public_base_url"
)

// GetSetting returns the stored value or "" when the key was never set.
func (s *SqliteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var row settingRow
	err := s.bun.NewSelect().Model(&row).Where("key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return row.Value, nil
}

func (s *SqliteStore) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}
