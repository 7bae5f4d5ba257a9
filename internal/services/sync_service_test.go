package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"qrd/internal/models"
	"qrd/internal/store"
	"qrd/internal/testutil"
)

func newTestSyncService(st *testutil.FakeStore, metrics *testutil.MockMetrics) SyncServiceInterface {
	tokens := NewTokenService(st, testutil.NewMockCache(), metrics, &testutil.MockLogger{})
	return NewSyncService(st, tokens, metrics, &testutil.MockLogger{})
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Config: models.SnapshotConfig{StaticRedirectURL: "https://example.org/promo"},
		Customers: []models.SnapshotCustomer{
			{
				PublicID: "abc123", Secret: "s3cret", Name: "Anna", Plate: "AB-1234",
				Visits: []models.SnapshotVisit{
					{Source: models.VisitSourceService, VisitDate: "2026-08-01", Km: "102500",
						Operations: []models.SnapshotOperation{{Text: "oil change", Price: "60.00"}}},
				},
			},
			{PublicID: "def456", Secret: "0th3r", Name: "Boris"},
		},
	}
}

func TestApply_PersistsRegistryAndConfig(t *testing.T) {
	st := testutil.NewFakeStore()
	metrics := testutil.NewMockMetrics()
	ss := newTestSyncService(st, metrics)

	result, err := ss.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.NotEmpty(t, result.ApplyID)
	assert.Equal(t, 2, result.Customers)
	assert.False(t, result.Rotated)

	c, err := st.GetCustomerByPublicID(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Anna", c.Name)

	visits, err := st.VisitsForCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	require.Len(t, visits[0].Operations, 1)

	target, err := st.GetSetting(context.Background(), store.SettingStaticRedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/promo", target)

	assert.Equal(t, 1, metrics.SyncApplies["applied"])
}

func TestApply_WithRotationDirective(t *testing.T) {
	st := testutil.NewFakeStore()
	metrics := testutil.NewMockMetrics()
	ss := newTestSyncService(st, metrics)

	old, err := st.RotateToken(context.Background(), "old-token")
	require.NoError(t, err)

	snap := testSnapshot()
	snap.Rotate = true
	result, err := ss.Apply(context.Background(), snap)
	require.NoError(t, err)

	assert.True(t, result.Rotated)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, old.Value, result.Token)

	retired, err := st.LookupToken(context.Background(), old.Value)
	require.NoError(t, err)
	require.NotNil(t, retired)
	assert.Equal(t, result.Token, retired.SupersededBy)
	assert.Equal(t, 1, metrics.Rotations)
}

func TestApply_WithoutRotationKeepsToken(t *testing.T) {
	st := testutil.NewFakeStore()
	ss := newTestSyncService(st, testutil.NewMockMetrics())

	_, err := st.RotateToken(context.Background(), "stable-token")
	require.NoError(t, err)

	result, err := ss.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)

	assert.False(t, result.Rotated)
	// The ack still carries the current token for QR regeneration.
	assert.Equal(t, "stable-token", result.Token)
}

func TestApply_IdenticalPushConverges(t *testing.T) {
	st := testutil.NewFakeStore()
	ss := newTestSyncService(st, testutil.NewMockMetrics())

	_, err := ss.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)
	_, err = ss.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)

	count, err := st.CountCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Visit history is overwritten, not appended.
	c, err := st.GetCustomerByPublicID(context.Background(), "abc123")
	require.NoError(t, err)
	visits, err := st.VisitsForCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, visits, 1)
}

func TestApply_SnapshotOverwritesExistingRecord(t *testing.T) {
	st := testutil.NewFakeStore()
	ss := newTestSyncService(st, testutil.NewMockMetrics())

	require.NoError(t, st.InsertCustomer(context.Background(), &models.Customer{
		PublicID: "abc123", Secret: "stale", Name: "Old Name",
	}))

	_, err := ss.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)

	c, err := st.GetCustomerByPublicID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Anna", c.Name)
	assert.Equal(t, "s3cret", c.Secret)
}

// staleReadStore answers CurrentToken as if another rotation landed between
// the apply and the read-back.
type staleReadStore struct {
	*testutil.FakeStore
}

func (s *staleReadStore) CurrentToken(context.Context) (*models.TokenRecord, error) {
	return &models.TokenRecord{Value: "concurrently-installed"}, nil
}

func TestApply_RotationAckCarriesOwnToken(t *testing.T) {
	fake := testutil.NewFakeStore()
	st := &staleReadStore{FakeStore: fake}
	metrics := testutil.NewMockMetrics()
	tokens := NewTokenService(st, testutil.NewMockCache(), metrics, &testutil.MockLogger{})
	ss := NewSyncService(st, tokens, metrics, &testutil.MockLogger{})

	snap := testSnapshot()
	snap.Rotate = true
	result, err := ss.Apply(context.Background(), snap)
	require.NoError(t, err)

	// The ack reports the token this apply installed, not a racing one.
	installed, err := fake.CurrentToken(context.Background())
	require.NoError(t, err)
	require.NotNil(t, installed)
	assert.Equal(t, installed.Value, result.Token)
	assert.NotEqual(t, "concurrently-installed", result.Token)
}

func TestApply_FailureIsReportedAsPartialApply(t *testing.T) {
	st := testutil.NewFakeStore()
	st.ApplyErr = errors.New("disk full")
	metrics := testutil.NewMockMetrics()
	ss := newTestSyncService(st, metrics)

	_, err := ss.Apply(context.Background(), testSnapshot())
	assert.ErrorIs(t, err, ErrPartialApply)
	assert.Equal(t, 1, metrics.SyncApplies["failed"])
	assert.Equal(t, 0, metrics.SyncApplies["applied"])
}
