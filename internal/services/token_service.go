package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/store"
)

const retiredCachePrefix = "retired:"

// TokenServiceInterface owns the redirect-token lifecycle: classification of
// presented values and minting/rotation of the current token.
type TokenServiceInterface interface {
	Current(ctx context.Context) (*models.TokenRecord, error)
	Classify(ctx context.Context, value string) (models.TokenState, error)
	Rotate(ctx context.Context) (*models.TokenRecord, error)
	NewValue() (string, error)
}

type TokenService struct {
	store   store.Store
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger

	// Serializes direct rotations. A sync-directed rotation runs inside the
	// snapshot transaction instead; the database keeps the two from ever
	// producing a second current token.
	rotateMu sync.Mutex
}

func NewTokenService(st store.Store, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) TokenServiceInterface {
	return &TokenService{
		store:   st,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func (ts *TokenService) Current(ctx context.Context) (*models.TokenRecord, error) {
	return ts.store.CurrentToken(ctx)
}

// Classify resolves a presented value to current / superseded / unknown.
// Superseded is terminal, so it is served from the cache once seen.
func (ts *TokenService) Classify(ctx context.Context, value string) (models.TokenState, error) {
	if value == "" {
		return models.TokenUnknown, nil
	}

	if _, ok := ts.cache.Get(retiredCachePrefix + value); ok {
		ts.metrics.IncCacheHits()
		return models.TokenSuperseded, nil
	}
	ts.metrics.IncCacheMisses()

	rec, err := ts.store.LookupToken(ctx, value)
	if err != nil {
		return models.TokenUnknown, fmt.Errorf("token lookup: %w", err)
	}
	if rec == nil {
		return models.TokenUnknown, nil
	}
	if rec.IsCurrent() {
		return models.TokenCurrent, nil
	}

	ts.cache.Set(retiredCachePrefix+value, []byte{1})
	return models.TokenSuperseded, nil
}

// Rotate mints a fresh value and installs it as current. The store does the
// supersession atomically; on failure the previous token stays current.
func (ts *TokenService) Rotate(ctx context.Context) (*models.TokenRecord, error) {
	ts.rotateMu.Lock()
	defer ts.rotateMu.Unlock()

	value, err := ts.NewValue()
	if err != nil {
		return nil, err
	}

	rec, err := ts.store.RotateToken(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	ts.metrics.IncRotations()
	ts.logger.Infof(providers.TypeApp, "Rotated redirect token, issued_at=%s", rec.IssuedAt.Format("2006-01-02 15:04:05"))
	return rec, nil
}

// NewValue generates a capability-strength url-safe token. Padding is
// stripped: some QR readers and share sheets drop trailing '=' from URLs.
func (ts *TokenService) NewValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}
