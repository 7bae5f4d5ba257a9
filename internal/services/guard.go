package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"qrd/internal/models"
	"qrd/internal/store"
	"qrd/internal/structures"
)

// GuardServiceInterface is the stateless access-control predicate layer. One
// shared bearer credential gates the admin surface, rotation triggers and the
// sync endpoint; customer pages are gated by the (public_id, secret) pair.
type GuardServiceInterface interface {
	AuthorizeAdmin(presented string) bool
	AuthorizeSync(presented string) bool
	AuthorizeCustomer(ctx context.Context, publicID, secret string) (*models.Customer, error)
}

type GuardService struct {
	adminToken string
	decoy      string
	store      store.Store
}

func NewGuardService(conf *structures.Config, st store.Store) (GuardServiceInterface, error) {
	if conf.Admin.Token == "" {
		return nil, fmt.Errorf("admin token is not configured")
	}
	return &GuardService{
		adminToken: conf.Admin.Token,
		// Decoy secret compared on unknown public_id so both failure causes
		// cost the same amount of work.
		decoy: "0000000000000000000000000000000-",
		store: st,
	}, nil
}

// secureCompare hashes both sides before the constant-time compare so the
// check neither short-circuits on a prefix mismatch nor leaks length.
func secureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

func (g *GuardService) AuthorizeAdmin(presented string) bool {
	return presented != "" && secureCompare(g.adminToken, presented)
}

// AuthorizeSync accepts the same shared credential as AuthorizeAdmin. Kept
// separate so the two surfaces could diverge without touching call sites.
func (g *GuardService) AuthorizeSync(presented string) bool {
	return g.AuthorizeAdmin(presented)
}

// AuthorizeCustomer unlocks a record only for an exactly matching pair.
// Unknown public_id and wrong secret collapse into the same ErrAccessDenied;
// storage failures pass through wrapped and are never reported as a denial.
func (g *GuardService) AuthorizeCustomer(ctx context.Context, publicID, secret string) (*models.Customer, error) {
	c, err := g.store.GetCustomerByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	if c == nil {
		secureCompare(g.decoy, secret)
		return nil, ErrAccessDenied
	}
	if secret == "" || !secureCompare(c.Secret, secret) {
		return nil, ErrAccessDenied
	}
	return c, nil
}
