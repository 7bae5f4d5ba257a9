package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"qrd/internal/models"
	"qrd/internal/store"
)

// FakeStore is an in-memory store.Store for service and controller tests. It
// mirrors the SQLite implementation's semantics: nil results for missing
// rows, overwrite-on-apply, and rotation that retires every current token.
type FakeStore struct {
	mu          sync.Mutex
	customers   []models.Customer
	visits      map[int64][]models.Visit
	tokens      []models.TokenRecord
	settings    map[string]string
	nextID      int64
	nextVisitID int64

	// ApplyErr forces ApplySnapshot to fail, for partial-apply tests.
	ApplyErr error
}

var _ store.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		visits:   make(map[int64][]models.Visit),
		settings: make(map[string]string),
	}
}

func (f *FakeStore) CurrentToken(_ context.Context) (*models.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tokens {
		if f.tokens[i].SupersededBy == "" {
			rec := f.tokens[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) LookupToken(_ context.Context, value string) (*models.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tokens {
		if f.tokens[i].Value == value {
			rec := f.tokens[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) RotateToken(_ context.Context, newValue string) (*models.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rotateLocked(newValue), nil
}

func (f *FakeStore) rotateLocked(newValue string) *models.TokenRecord {
	for i := range f.tokens {
		if f.tokens[i].SupersededBy == "" {
			f.tokens[i].SupersededBy = newValue
		}
	}
	rec := models.TokenRecord{
		ID:       int64(len(f.tokens) + 1),
		Value:    newValue,
		IssuedAt: time.Now().UTC(),
	}
	f.tokens = append(f.tokens, rec)
	return &rec
}

func (f *FakeStore) GetCustomerByPublicID(_ context.Context, publicID string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if f.customers[i].PublicID == publicID {
			c := f.customers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) ListCustomers(_ context.Context, q string) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q = strings.TrimSpace(q)
	out := make([]models.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		if q == "" || strings.Contains(c.Plate, q) || strings.Contains(c.Phone, q) || strings.Contains(c.Name, q) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *FakeStore) CountCustomers(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.customers), nil
}

func (f *FakeStore) InsertCustomer(_ context.Context, c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if f.customers[i].PublicID == c.PublicID {
			return store.ErrDuplicatePublicID
		}
	}
	f.nextID++
	now := time.Now().UTC()
	c.ID = f.nextID
	c.CreatedAt = now
	c.UpdatedAt = now
	f.customers = append(f.customers, *c)
	return nil
}

func (f *FakeStore) DeleteCustomer(_ context.Context, publicID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if f.customers[i].PublicID == publicID {
			delete(f.visits, f.customers[i].ID)
			f.customers = append(f.customers[:i], f.customers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeStore) AppendVisit(_ context.Context, customerID int64, v *models.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendVisitLocked(customerID, v)
	return nil
}

func (f *FakeStore) appendVisitLocked(customerID int64, v *models.Visit) {
	now := time.Now().UTC()
	f.nextVisitID++
	v.ID = f.nextVisitID
	v.CustomerID = customerID
	if v.Source == "" {
		v.Source = models.VisitSourceService
	}
	if strings.TrimSpace(v.VisitDate) == "" {
		v.VisitDate = now.Format("2006-01-02")
	}
	v.CreatedAt = now
	f.visits[customerID] = append(f.visits[customerID], *v)
	for i := range f.customers {
		if f.customers[i].ID == customerID {
			f.customers[i].UpdatedAt = now
		}
	}
}

func (f *FakeStore) VisitsForCustomer(_ context.Context, customerID int64) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	visits := append([]models.Visit(nil), f.visits[customerID]...)
	sort.Slice(visits, func(i, j int) bool {
		if visits[i].VisitDate != visits[j].VisitDate {
			return visits[i].VisitDate > visits[j].VisitDate
		}
		return visits[i].ID > visits[j].ID
	})
	return visits, nil
}

func (f *FakeStore) GetSetting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[key], nil
}

func (f *FakeStore) PutSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

func (f *FakeStore) ApplySnapshot(_ context.Context, snap *models.Snapshot, newToken string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ApplyErr != nil {
		return 0, f.ApplyErr
	}

	if v := strings.TrimSpace(snap.Config.StaticRedirectURL); v != "" {
		f.settings[store.SettingStaticRedirectURL] = v
	}
	if v := strings.TrimSpace(snap.Config.PublicBaseURL); v != "" {
		f.settings[store.SettingPublicBaseURL] = v
	}

	applied := 0
	for _, sc := range snap.Customers {
		id := f.upsertSnapshotCustomerLocked(&sc)
		f.visits[id] = nil
		for _, sv := range sc.Visits {
			v := models.Visit{Source: sv.Source, VisitDate: sv.VisitDate, Km: sv.Km, Notes: sv.Notes}
			for _, op := range sv.Operations {
				v.Operations = append(v.Operations, models.Operation{Text: op.Text, Price: op.Price})
			}
			f.appendVisitLocked(id, &v)
		}
		applied++
	}

	if newToken != "" {
		f.rotateLocked(newToken)
	}
	return applied, nil
}

func (f *FakeStore) upsertSnapshotCustomerLocked(sc *models.SnapshotCustomer) int64 {
	now := time.Now().UTC()
	for i := range f.customers {
		if f.customers[i].PublicID == sc.PublicID {
			f.customers[i].Secret = sc.Secret
			f.customers[i].Name = sc.Name
			f.customers[i].Phone = sc.Phone
			f.customers[i].Plate = sc.Plate
			f.customers[i].UpdatedAt = now
			return f.customers[i].ID
		}
	}
	f.nextID++
	f.customers = append(f.customers, models.Customer{
		ID:        f.nextID,
		PublicID:  sc.PublicID,
		Secret:    sc.Secret,
		Name:      sc.Name,
		Phone:     sc.Phone,
		Plate:     sc.Plate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return f.nextID
}

func (f *FakeStore) Maintain(_ context.Context) error { return nil }

func (f *FakeStore) Close() error { return nil }
