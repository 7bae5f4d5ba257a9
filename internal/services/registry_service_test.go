package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"qrd/internal/models"
	"qrd/internal/structures"
	"qrd/internal/testutil"
)

func newTestRegistry(t *testing.T, st *testutil.FakeStore, metrics *testutil.MockMetrics) RegistryServiceInterface {
	t.Helper()
	conf := &structures.Config{Admin: structures.AdminConfig{Token: "admin-secret"}}
	guard, err := NewGuardService(conf, st)
	require.NoError(t, err)
	return NewRegistryService(st, guard, metrics, &testutil.MockLogger{})
}

func TestCreate_GeneratesCredentialPair(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	c, err := rs.Create(context.Background(), "Anna", "+371 200 100", "AB-1234")
	require.NoError(t, err)

	assert.NotEmpty(t, c.PublicID)
	assert.NotEmpty(t, c.Secret)
	assert.NotEqual(t, c.PublicID, c.Secret)
	assert.Greater(t, len(c.Secret), len(c.PublicID))

	stored, err := st.GetCustomerByPublicID(context.Background(), c.PublicID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "AB-1234", stored.Plate)
}

func TestCreate_UniqueIDs(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := rs.Create(context.Background(), "", "", "")
		require.NoError(t, err)
		assert.False(t, seen[c.PublicID])
		seen[c.PublicID] = true
	}
}

func TestAccess_AppendsOneScanVisit(t *testing.T) {
	st := testutil.NewFakeStore()
	metrics := testutil.NewMockMetrics()
	rs := newTestRegistry(t, st, metrics)

	created, err := rs.Create(context.Background(), "Anna", "", "AB-1234")
	require.NoError(t, err)

	c, visits, err := rs.Access(context.Background(), created.PublicID, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, c.PublicID)
	require.Len(t, visits, 1)
	assert.Equal(t, models.VisitSourceScan, visits[0].Source)
	assert.Equal(t, 1, metrics.VisitsRecorded)
}

func TestAccess_RepeatedScansAppendRepeatedVisits(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	created, err := rs.Create(context.Background(), "", "", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err = rs.Access(context.Background(), created.PublicID, created.Secret)
		require.NoError(t, err)
	}

	visits, err := st.VisitsForCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, visits, 3)
}

func TestAccess_DeniedRecordsNothing(t *testing.T) {
	st := testutil.NewFakeStore()
	metrics := testutil.NewMockMetrics()
	rs := newTestRegistry(t, st, metrics)

	created, err := rs.Create(context.Background(), "", "", "")
	require.NoError(t, err)

	_, _, err = rs.Access(context.Background(), created.PublicID, "wrong")
	assert.ErrorIs(t, err, ErrAccessDenied)

	visits, err := st.VisitsForCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, visits)
	assert.Equal(t, 0, metrics.VisitsRecorded)
}

func TestAccess_ConcurrentScansAllRecorded(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	created, err := rs.Create(context.Background(), "", "", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _, err := rs.Access(context.Background(), created.PublicID, created.Secret)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	visits, err := st.VisitsForCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, visits, n)
}

func TestDelete(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	created, err := rs.Create(context.Background(), "", "", "")
	require.NoError(t, err)

	require.NoError(t, rs.Delete(context.Background(), created.PublicID))
	assert.ErrorIs(t, rs.Delete(context.Background(), created.PublicID), ErrNotFound)
}

func TestAddVisit_ServiceSourceWithOperations(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	created, err := rs.Create(context.Background(), "", "", "")
	require.NoError(t, err)

	v := &models.Visit{
		VisitDate: "2026-08-01",
		Km:        "102500",
		Notes:     "front brakes",
		Operations: []models.Operation{
			{Text: "brake pads", Price: "85.00"},
			{Text: "brake fluid", Price: "25.00"},
		},
	}
	require.NoError(t, rs.AddVisit(context.Background(), created.PublicID, v))

	visits, err := st.VisitsForCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, models.VisitSourceService, visits[0].Source)
	assert.Equal(t, "102500", visits[0].Km)
	assert.Len(t, visits[0].Operations, 2)
}

func TestAddVisit_UnknownCustomer(t *testing.T) {
	rs := newTestRegistry(t, testutil.NewFakeStore(), testutil.NewMockMetrics())

	err := rs.AddVisit(context.Background(), "ghost", &models.Visit{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FilterMatchesPlatePhoneName(t *testing.T) {
	st := testutil.NewFakeStore()
	rs := newTestRegistry(t, st, testutil.NewMockMetrics())

	_, err := rs.Create(context.Background(), "Anna", "+371 200", "AB-1234")
	require.NoError(t, err)
	_, err = rs.Create(context.Background(), "Boris", "+371 300", "CD-5678")
	require.NoError(t, err)

	out, err := rs.List(context.Background(), "AB-12")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Anna", out[0].Name)

	out, err = rs.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
