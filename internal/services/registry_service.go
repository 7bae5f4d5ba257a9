package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/store"
)

// RegistryServiceInterface is the customer registry. Access is the
// customer-facing read path and appends exactly one scan visit per
// successful pair presentation; everything else is editor/admin-side.
type RegistryServiceInterface interface {
	Access(ctx context.Context, publicID, secret string) (*models.Customer, []models.Visit, error)
	Create(ctx context.Context, name, phone, plate string) (*models.Customer, error)
	List(ctx context.Context, q string) ([]models.Customer, error)
	Delete(ctx context.Context, publicID string) error
	AddVisit(ctx context.Context, publicID string, v *models.Visit) error
	Count(ctx context.Context) (int, error)
}

type RegistryService struct {
	store   store.Store
	guard   GuardServiceInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger
}

func NewRegistryService(st store.Store, guard GuardServiceInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) RegistryServiceInterface {
	return &RegistryService{
		store:   st,
		guard:   guard,
		metrics: metrics,
		logger:  logger,
	}
}

// Access authorizes the pair, appends one scan visit and returns the record
// with its full history. Repeated scans append repeated entries: each scan is
// a distinct visit.
func (rs *RegistryService) Access(ctx context.Context, publicID, secret string) (*models.Customer, []models.Visit, error) {
	c, err := rs.guard.AuthorizeCustomer(ctx, publicID, secret)
	if err != nil {
		return nil, nil, err
	}

	visit := models.Visit{Source: models.VisitSourceScan}
	if err := rs.store.AppendVisit(ctx, c.ID, &visit); err != nil {
		return nil, nil, fmt.Errorf("record visit: %w", err)
	}
	rs.metrics.IncVisitsRecorded()

	visits, err := rs.store.VisitsForCustomer(ctx, c.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("visit history: %w", err)
	}
	return c, visits, nil
}

// Create mints a new customer with a generated public_id/secret pair,
// retrying on the (unlikely) public_id collision.
func (rs *RegistryService) Create(ctx context.Context, name, phone, plate string) (*models.Customer, error) {
	for i := 0; i < 5; i++ {
		publicID, err := newPublicID()
		if err != nil {
			return nil, err
		}
		secret, err := newSecret()
		if err != nil {
			return nil, err
		}

		c := &models.Customer{
			PublicID: publicID,
			Secret:   secret,
			Name:     name,
			Phone:    phone,
			Plate:    plate,
		}
		err = rs.store.InsertCustomer(ctx, c)
		if err == nil {
			rs.logger.Infof(providers.TypeApp, "Created customer %s", c.PublicID)
			return c, nil
		}
		if !errors.Is(err, store.ErrDuplicatePublicID) {
			return nil, fmt.Errorf("create customer: %w", err)
		}
	}
	return nil, fmt.Errorf("create customer: could not allocate a unique public_id")
}

func (rs *RegistryService) List(ctx context.Context, q string) ([]models.Customer, error) {
	return rs.store.ListCustomers(ctx, q)
}

func (rs *RegistryService) Delete(ctx context.Context, publicID string) error {
	ok, err := rs.store.DeleteCustomer(ctx, publicID)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	rs.logger.Infof(providers.TypeApp, "Deleted customer %s", publicID)
	return nil
}

// AddVisit records a service visit from the admin surface.
func (rs *RegistryService) AddVisit(ctx context.Context, publicID string, v *models.Visit) error {
	c, err := rs.store.GetCustomerByPublicID(ctx, publicID)
	if err != nil {
		return fmt.Errorf("customer lookup: %w", err)
	}
	if c == nil {
		return ErrNotFound
	}
	if v.Source == "" {
		v.Source = models.VisitSourceService
	}
	if err := rs.store.AppendVisit(ctx, c.ID, v); err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

func (rs *RegistryService) Count(ctx context.Context) (int, error) {
	return rs.store.CountCustomers(ctx)
}

// newPublicID returns a short url-safe identifier; uniqueness is enforced by
// the store's UNIQUE constraint plus the retry loop above.
func newPublicID() (string, error) {
	return randomURLSafe(6)
}

// newSecret returns the access-granting half of the pair.
func newSecret() (string, error) {
	return randomURLSafe(24)
}

func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("entropy: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}
