package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"qrd/internal/models"
)

// ApplySnapshot applies an editor snapshot in a single transaction: settings
// first, then the registry overwrite, then (only if newToken is non-empty)
// the rotation, so a rotated token is never exposed before the content it
// points at is in place. Any failure rolls the whole apply back; the caller
// reports that distinctly from success.
//
// Customers present in the snapshot are overwritten wholesale (profile,
// secret, visit history); customers absent from it are left alone, which is
// what makes a partial push safe and an identical re-push a no-op in effect.
// Blank config values are skipped, not written through: the editor config is
// sparse, so an empty field means "no opinion" and never clears a stored
// setting back to unset.
func (s *SqliteStore) ApplySnapshot(ctx context.Context, snap *models.Snapshot, newToken string) (int, error) {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if v := strings.TrimSpace(snap.Config.StaticRedirectURL); v != "" {
		if err := putSettingTx(ctx, tx, SettingStaticRedirectURL, v); err != nil {
			return 0, err
		}
	}
	if v := strings.TrimSpace(snap.Config.PublicBaseURL); v != "" {
		if err := putSettingTx(ctx, tx, SettingPublicBaseURL, v); err != nil {
			return 0, err
		}
	}

	applied := 0
	for i := range snap.Customers {
		if err := applyCustomerTx(ctx, tx, &snap.Customers[i]); err != nil {
			return 0, err
		}
		applied++
	}

	if newToken != "" {
		if _, err := rotateTokenTx(ctx, tx, newToken); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return applied, nil
}

func putSettingTx(ctx context.Context, tx bun.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func applyCustomerTx(ctx context.Context, tx bun.Tx, sc *models.SnapshotCustomer) error {
	now := time.Now().UTC()

	var existing customerRow
	err := tx.NewSelect().Model(&existing).Where("public_id = ?", sc.PublicID).Limit(1).Scan(ctx)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			"UPDATE customers SET secret = ?, name = ?, phone = ?, plate = ?, updated_at = ? WHERE id = ?",
			sc.Secret, sc.Name, sc.Phone, sc.Plate, now, existing.ID)
		if err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		existing = customerRow{
			PublicID:  sc.PublicID,
			Secret:    sc.Secret,
			Name:      sc.Name,
			Phone:     sc.Phone,
			Plate:     sc.Plate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := tx.NewInsert().Model(&existing).Exec(ctx); err != nil {
			return err
		}
	default:
		return err
	}

	// Replace the visit history with the pushed one. Operations cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM visits WHERE customer_id = ?", existing.ID); err != nil {
		return err
	}
	for _, sv := range sc.Visits {
		v := models.Visit{
			Source:    sv.Source,
			VisitDate: sv.VisitDate,
			Km:        sv.Km,
			Notes:     sv.Notes,
		}
		for _, op := range sv.Operations {
			v.Operations = append(v.Operations, models.Operation{Text: op.Text, Price: op.Price})
		}
		if err := appendVisitTx(ctx, tx, existing.ID, &v); err != nil {
			return err
		}
	}
	return nil
}
