package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/store"
)

// SyncServiceInterface applies an authenticated editor snapshot. The caller
// must have passed AuthorizeSync already; a rejected push never reaches this
// layer and therefore never changes state.
type SyncServiceInterface interface {
	Apply(ctx context.Context, snap *models.Snapshot) (*models.SyncResult, error)
}

type SyncService struct {
	store   store.Store
	tokens  TokenServiceInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger

	// One push at a time. Pushes are small and atomic; there is no
	// mid-flight cancellation contract.
	applyMu sync.Mutex
}

func NewSyncService(st store.Store, tokens TokenServiceInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) SyncServiceInterface {
	return &SyncService{
		store:   st,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// Apply persists the snapshot and, only if the rotation directive is set,
// rotates the token: registry/config first, rotation last, all in one store
// transaction. A mid-apply failure rolls back and is reported as
// ErrPartialApply, never as success. Re-sending an identical snapshot
// harmlessly re-applies the same values.
func (ss *SyncService) Apply(ctx context.Context, snap *models.Snapshot) (*models.SyncResult, error) {
	ss.applyMu.Lock()
	defer ss.applyMu.Unlock()

	newToken := ""
	if snap.Rotate {
		value, err := ss.tokens.NewValue()
		if err != nil {
			return nil, err
		}
		newToken = value
	}

	applied, err := ss.store.ApplySnapshot(ctx, snap, newToken)
	if err != nil {
		ss.metrics.IncSyncApplies("failed")
		ss.logger.Errorf(providers.TypeApp, "Snapshot apply failed: %s", err)
		return nil, fmt.Errorf("%w: %v", ErrPartialApply, err)
	}

	result := &models.SyncResult{
		Applied:   true,
		ApplyID:   uuid.NewString(),
		Customers: applied,
		Rotated:   snap.Rotate,
	}

	// The ack carries the effective token so the editor can regenerate the
	// printed QR payload. A directed rotation reports the token this apply
	// installed, not whatever is current by the time it is read back.
	if newToken != "" {
		result.Token = newToken
	} else {
		cur, err := ss.store.CurrentToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("current token after apply: %w", err)
		}
		if cur != nil {
			result.Token = cur.Value
		}
	}

	ss.metrics.IncSyncApplies("applied")
	if snap.Rotate {
		ss.metrics.IncRotations()
	}
	ss.logger.Infof(providers.TypeApp, "Applied snapshot %s: %d customers, rotated=%t", result.ApplyID, applied, snap.Rotate)
	return result, nil
}
