package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"qrd/internal/models"
)

// CurrentToken returns the single token with no supersession back-reference,
// or nil when no token has been minted yet.
func (s *SqliteStore) CurrentToken(ctx context.Context) (*models.TokenRecord, error) {
	var row tokenRow
	err := s.bun.NewSelect().Model(&row).Where("superseded_by IS NULL").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := row.toModel()
	return &rec, nil
}

// LookupToken returns the record for a presented value, or nil when the value
// was never issued. Retired records are retained forever so stale scans
// resolve to "superseded" rather than "unknown".
func (s *SqliteStore) LookupToken(ctx context.Context, value string) (*models.TokenRecord, error) {
	var row tokenRow
	err := s.bun.NewSelect().Model(&row).Where("value = ?", value).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := row.toModel()
	return &rec, nil
}

// RotateToken retires the current token and installs newValue as current, in
// one transaction. A failure anywhere rolls back and leaves the previous
// token still current.
func (s *SqliteStore) RotateToken(ctx context.Context, newValue string) (*models.TokenRecord, error) {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := rotateTokenTx(ctx, tx, newValue)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// rotateTokenTx is the shared rotation body, also used by ApplySnapshot so a
// sync-directed rotation rides the same transaction as the registry writes.
func rotateTokenTx(ctx context.Context, tx bun.Tx, newValue string) (*models.TokenRecord, error) {
	// Point every still-current record at the incoming value. Raw UPDATE:
	// Bun refuses Update without WHERE, and here the WHERE is the point.
	if _, err := tx.ExecContext(ctx, "UPDATE tokens SET superseded_by = ? WHERE superseded_by IS NULL", newValue); err != nil {
		return nil, fmt.Errorf("failed to retire current token: %w", err)
	}

	row := tokenRow{
		Value:    newValue,
		IssuedAt: time.Now().UTC(),
	}
	if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to install new token: %w", err)
	}

	rec := row.toModel()
	return &rec, nil
}
