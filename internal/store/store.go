// Package store is the data access layer for qrd. It keeps the durable host
// state (customers, visits, tokens, settings) in a single SQLite database
// file behind the Store interface, so services stay testable against an
// in-memory fake.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"qrd/internal/models"
)

type Store interface {
	CurrentToken(ctx context.Context) (*models.TokenRecord, error)
	LookupToken(ctx context.Context, value string) (*models.TokenRecord, error)
	RotateToken(ctx context.Context, newValue string) (*models.TokenRecord, error)

	GetCustomerByPublicID(ctx context.Context, publicID string) (*models.Customer, error)
	ListCustomers(ctx context.Context, q string) ([]models.Customer, error)
	CountCustomers(ctx context.Context) (int, error)
	InsertCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, publicID string) (bool, error)
	AppendVisit(ctx context.Context, customerID int64, v *models.Visit) error
	VisitsForCustomer(ctx context.Context, customerID int64) ([]models.Visit, error)

	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error

	ApplySnapshot(ctx context.Context, snap *models.Snapshot, newToken string) (int, error)

	Maintain(ctx context.Context) error
	Close() error
}

// SqliteStore implements Store on a single SQLite file. Reads run with full
// parallelism (WAL); writers serialize on the driver's busy timeout.
type SqliteStore struct {
	db  *sql.DB
	bun *bun.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  public_id TEXT NOT NULL UNIQUE,
  secret TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  plate TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customers_plate ON customers(plate);
CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone);

CREATE TABLE IF NOT EXISTS visits (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  source TEXT NOT NULL DEFAULT 'service',
  visit_date TEXT NOT NULL,
  km TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visits_customer_id ON visits(customer_id);

CREATE TABLE IF NOT EXISTS operations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  visit_id INTEGER NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  price TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_operations_visit_id ON operations(visit_id);

CREATE TABLE IF NOT EXISTS tokens (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  value TEXT NOT NULL UNIQUE,
  issued_at TIMESTAMP NOT NULL,
  superseded_by TEXT
);
CREATE INDEX IF NOT EXISTS idx_tokens_value ON tokens(value);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// Open creates (if needed) and opens the database file and bootstraps the
// schema. The parent directory is created so a fresh deploy with a configured
// data path just works.
func Open(path string) (*SqliteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &SqliteStore{
		db:  sqlDB,
		bun: bun.NewDB(sqlDB, sqlitedialect.New()),
	}, nil
}

// Maintain runs SQLite housekeeping. Optimize failures are non-fatal (some
// filesystems reject it); a failed WAL checkpoint is ignored for the same
// reason.
func (s *SqliteStore) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return nil
	}
	_, _ = s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
	return nil
}

func (s *SqliteStore) Close() error {
	return s.bun.Close()
}
