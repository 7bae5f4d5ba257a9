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

// ErrDuplicatePublicID reports a UNIQUE collision on insert. The registry
// service retries with a freshly generated id, same as the original flow.
var ErrDuplicatePublicID = errors.New("public_id already exists")

const listLimit = 200

func (s *SqliteStore) GetCustomerByPublicID(ctx context.Context, publicID string) (*models.Customer, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, nil
	}
	var row customerRow
	err := s.bun.NewSelect().Model(&row).Where("public_id = ?", publicID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

// ListCustomers returns up to listLimit records, most recently touched first,
// optionally filtered by a substring match on plate, phone or name.
func (s *SqliteStore) ListCustomers(ctx context.Context, q string) ([]models.Customer, error) {
	var rows []customerRow
	query := s.bun.NewSelect().Model(&rows).Order("updated_at DESC").Limit(listLimit)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + q + "%"
		query = query.Where("plate LIKE ? OR phone LIKE ? OR name LIKE ?", like, like, like)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SqliteStore) CountCustomers(ctx context.Context) (int, error) {
	return s.bun.NewSelect().Model((*customerRow)(nil)).Count(ctx)
}

func (s *SqliteStore) InsertCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now().UTC()
	row := customerRow{
		PublicID:  c.PublicID,
		Secret:    c.Secret,
		Name:      strings.TrimSpace(c.Name),
		Phone:     strings.TrimSpace(c.Phone),
		Plate:     strings.TrimSpace(c.Plate),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.bun.NewInsert().Model(&row).Exec(ctx); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrDuplicatePublicID
		}
		return err
	}
	c.ID = row.ID
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// DeleteCustomer removes a customer; visits and operations cascade. Returns
// whether a row was actually deleted.
func (s *SqliteStore) DeleteCustomer(ctx context.Context, publicID string) (bool, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE public_id = ?", publicID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendVisit records one visit (and its operations) and touches the
// customer's updated_at, all in one transaction. This is the only write on
// the customer-facing hot path; it never takes a registry-wide lock.
func (s *SqliteStore) AppendVisit(ctx context.Context, customerID int64, v *models.Visit) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := appendVisitTx(ctx, tx, customerID, v); err != nil {
		return err
	}
	return tx.Commit()
}

func appendVisitTx(ctx context.Context, tx bun.Tx, customerID int64, v *models.Visit) error {
	now := time.Now().UTC()
	visitDate := strings.TrimSpace(v.VisitDate)
	if visitDate == "" {
		visitDate = now.Format("2006-01-02")
	}
	source := v.Source
	if source == "" {
		source = models.VisitSourceService
	}

	row := visitRow{
		CustomerID: customerID,
		Source:     source,
		VisitDate:  visitDate,
		Km:         strings.TrimSpace(v.Km),
		Notes:      strings.TrimSpace(v.Notes),
		CreatedAt:  now,
	}
	if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
		return err
	}

	for _, op := range v.Operations {
		text := strings.TrimSpace(op.Text)
		if text == "" {
			continue
		}
		opRow := operationRow{
			VisitID: row.ID,
			Text:    text,
			Price:   strings.TrimSpace(op.Price),
		}
		if _, err := tx.NewInsert().Model(&opRow).Exec(ctx); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE customers SET updated_at = ? WHERE id = ?", now, customerID); err != nil {
		return err
	}

	v.ID = row.ID
	v.CustomerID = customerID
	v.Source = source
	v.VisitDate = visitDate
	v.CreatedAt = now
	return nil
}

// VisitsForCustomer returns the append-only history, newest first, with
// operations attached.
func (s *SqliteStore) VisitsForCustomer(ctx context.Context, customerID int64) ([]models.Visit, error) {
	var rows []visitRow
	err := s.bun.NewSelect().Model(&rows).
		Where("customer_id = ?", customerID).
		Order("visit_date DESC").Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	visits := make([]models.Visit, 0, len(rows))
	for _, r := range rows {
		v := r.toModel()
		var ops []operationRow
		if err := s.bun.NewSelect().Model(&ops).Where("visit_id = ?", r.ID).Order("id ASC").Scan(ctx); err != nil {
			return nil, err
		}
		for _, op := range ops {
			v.Operations = append(v.Operations, models.Operation{ID: op.ID, VisitID: op.VisitID, Text: op.Text, Price: op.Price})
		}
		visits = append(visits, v)
	}
	return visits, nil
}
