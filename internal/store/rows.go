package store

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"qrd/internal/models"
)

// Row structs are the Bun mappings for the SQLite tables. They stay private
// to the store; everything above it speaks internal/models.

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`
	ID            int64     `bun:"id,pk,autoincrement"`
	PublicID      string    `bun:"public_id"`
	Secret        string    `bun:"secret"`
	Name          string    `bun:"name"`
	Phone         string    `bun:"phone"`
	Plate         string    `bun:"plate"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

type visitRow struct {
	bun.BaseModel `bun:"table:visits"`
	ID            int64     `bun:"id,pk,autoincrement"`
	CustomerID    int64     `bun:"customer_id"`
	Source        string    `bun:"source"`
	VisitDate     string    `bun:"visit_date"`
	Km            string    `bun:"km"`
	Notes         string    `bun:"notes"`
	CreatedAt     time.Time `bun:"created_at"`
}

type operationRow struct {
	bun.BaseModel `bun:"table:operations"`
	ID            int64  `bun:"id,pk,autoincrement"`
	VisitID       int64  `bun:"visit_id"`
	Text          string `bun:"text"`
	Price         string `bun:"price"`
}

type tokenRow struct {
	bun.BaseModel `bun:"table:tokens"`
	ID            int64          `bun:"id,pk,autoincrement"`
	Value         string         `bun:"value"`
	IssuedAt      time.Time      `bun:"issued_at"`
	SupersededBy  sql.NullString `bun:"superseded_by"`
}

type settingRow struct {
	bun.BaseModel `bun:"table:settings"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
}

func (r customerRow) toModel() models.Customer {
	return models.Customer{
		ID:        r.ID,
		PublicID:  r.PublicID,
		Secret:    r.Secret,
		Name:      r.Name,
		Phone:     r.Phone,
		Plate:     r.Plate,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r visitRow) toModel() models.Visit {
	return models.Visit{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Source:     r.Source,
		VisitDate:  r.VisitDate,
		Km:         r.Km,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
	}
}

func (r tokenRow) toModel() models.TokenRecord {
	return models.TokenRecord{
		ID:           r.ID,
		Value:        r.Value,
		IssuedAt:     r.IssuedAt,
		SupersededBy: r.SupersededBy.String,
	}
}
