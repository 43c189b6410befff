// Package storagetest holds a conformance suite shared by every storage backend.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipark/pkg/models"
	"taxipark/storage"
)

// Factory returns an empty store; the suite closes it.
type Factory func(t *testing.T) storage.IStorage

func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.IStorage)
	}{
		{"ManufacturerCRUD", testManufacturerCRUD},
		{"ManufacturerUniqueName", testManufacturerUniqueName},
		{"SearchIsCaseInsensitiveSubstring", testSearch},
		{"SearchMatchesWildcardsLiterally", testSearchLiteralWildcards},
		{"SearchFoldsNonASCII", testSearchNonASCII},
		{"Pagination", testPagination},
		{"CarWithDrivers", testCarWithDrivers},
		{"ToggleDriverTwiceRestores", testToggleDriver},
		{"DeleteManufacturerCascadesToCars", testCascade},
		{"DriverCRUD", testDriverCRUD},
		{"DriverUniqueUsername", testDriverUniqueUsername},
		{"Sessions", testSessions},
		{"Reset", testReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func newManufacturer(t *testing.T, s storage.IStorage, name, country string) *models.Manufacturer {
	t.Helper()
	m, err := s.Manufacturer().Create(context.Background(), &models.Manufacturer{Name: name, Country: country})
	require.NoError(t, err)
	return m
}

func newDriver(t *testing.T, s storage.IStorage, username, license string) *models.Driver {
	t.Helper()
	d, err := s.Driver().Create(context.Background(), &models.Driver{
		Username:      username,
		PasswordHash:  "hash",
		LicenseNumber: license,
		IsActive:      true,
	})
	require.NoError(t, err)
	return d
}

func newCar(t *testing.T, s storage.IStorage, model string, manufacturerID int64, drivers ...*models.Driver) *models.Car {
	t.Helper()
	c, err := s.Car().Create(context.Background(), &models.Car{Model: model, ManufacturerID: manufacturerID, Drivers: drivers})
	require.NoError(t, err)
	return c
}

func testManufacturerCRUD(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	repo := s.Manufacturer()

	m := newManufacturer(t, s, "Toyota", "Japan")
	assert.NotZero(t, m.ID)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toyota Japan", got.String())

	got.Country = "JP"
	_, err = repo.Update(ctx, got)
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "JP", got.Country)

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), storage.ErrNotFound)

	_, err = repo.Update(ctx, &models.Manufacturer{ID: m.ID, Name: "x", Country: "y"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testManufacturerUniqueName(t *testing.T, s storage.IStorage) {
	newManufacturer(t, s, "Toyota", "Japan")
	_, err := s.Manufacturer().Create(context.Background(), &models.Manufacturer{Name: "Toyota", Country: "USA"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testSearch(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	toyota := newManufacturer(t, s, "Toyota", "Japan")
	newManufacturer(t, s, "BMW", "Germany")
	newCar(t, s, "Camry", toyota.ID)
	newCar(t, s, "Corolla", toyota.ID)
	newDriver(t, s, "john_doe", "")
	newDriver(t, s, "jane", "")

	manufacturers, err := s.Manufacturer().GetAll(ctx, models.ListFilter{Search: "toY"})
	require.NoError(t, err)
	require.Len(t, manufacturers, 1)
	assert.Equal(t, "Toyota", manufacturers[0].Name)

	cars, err := s.Car().GetAll(ctx, models.ListFilter{Search: "CAM"})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Camry", cars[0].Model)
	require.NotNil(t, cars[0].Manufacturer)
	assert.Equal(t, "Toyota", cars[0].Manufacturer.Name)

	drivers, err := s.Driver().GetAll(ctx, models.ListFilter{Search: "J"})
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	all, err := s.Car().GetAll(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := s.Car().Count(ctx, models.ListFilter{Search: "co"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testSearchNonASCII(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	skoda := newManufacturer(t, s, "ŠKODA", "Czechia")
	newManufacturer(t, s, "Škoda Motors", "Czechia")
	newManufacturer(t, s, "Toyota", "Japan")
	newCar(t, s, "Октавия", skoda.ID)
	newDriver(t, s, "Jürgen", "")
	newDriver(t, s, "juri", "")

	for _, q := range []string{"ŠKODA", "škoda", "Škoda", "koda"} {
		t.Run(q, func(t *testing.T) {
			found, err := s.Manufacturer().GetAll(ctx, models.ListFilter{Search: q})
			require.NoError(t, err)
			assert.Len(t, found, 2)

			count, err := s.Manufacturer().Count(ctx, models.ListFilter{Search: q})
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}

	cars, err := s.Car().GetAll(ctx, models.ListFilter{Search: "октав"})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Октавия", cars[0].Model)

	drivers, err := s.Driver().GetAll(ctx, models.ListFilter{Search: "JÜR"})
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "Jürgen", drivers[0].Username)
}

func testSearchLiteralWildcards(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	newDriver(t, s, "john_doe", "")
	newDriver(t, s, "johnxdoe", "")

	drivers, err := s.Driver().GetAll(ctx, models.ListFilter{Search: "n_d"})
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "john_doe", drivers[0].Username)

	drivers, err = s.Driver().GetAll(ctx, models.ListFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, drivers)
}

func testPagination(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		newManufacturer(t, s, fmt.Sprintf("maker-%d", i), "somewhere")
	}

	first, err := s.Manufacturer().GetAll(ctx, models.ListFilter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, first, 5)
	assert.Equal(t, "maker-0", first[0].Name)

	second, err := s.Manufacturer().GetAll(ctx, models.ListFilter{Limit: 5, Offset: 5})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "maker-5", second[0].Name)

	count, err := s.Manufacturer().Count(ctx, models.ListFilter{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func testCarWithDrivers(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	m := newManufacturer(t, s, "Toyota", "Japan")
	alice := newDriver(t, s, "alice", "ABC12345")
	bob := newDriver(t, s, "bob", "ABC54321")

	car := newCar(t, s, "Camry", m.ID, alice, bob)

	got, err := s.Car().GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camry", got.Model)
	assert.Equal(t, "Toyota", got.Manufacturer.Name)
	assert.Equal(t, []int64{alice.ID, bob.ID}, got.DriverIDs())

	got.Model = "Camry Hybrid"
	got.Drivers = []*models.Driver{bob}
	_, err = s.Car().Update(ctx, got)
	require.NoError(t, err)

	got, err = s.Car().GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camry Hybrid", got.Model)
	assert.Equal(t, []int64{bob.ID}, got.DriverIDs())

	cars, err := s.Car().GetByDriver(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, cars)

	cars, err = s.Car().GetByDriver(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Toyota", cars[0].Manufacturer.Name)

	drivers, err := s.Driver().GetByCar(ctx, car.ID)
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "bob", drivers[0].Username)

	_, err = s.Car().GetByID(ctx, car.ID+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testToggleDriver(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	m := newManufacturer(t, s, "Toyota", "Japan")
	d := newDriver(t, s, "alice", "")
	car := newCar(t, s, "Camry", m.ID)

	assigned, err := s.Car().ToggleDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, assigned)

	has, err := s.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, has)

	assigned, err = s.Car().ToggleDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	has, err = s.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.Car().AddDriver(ctx, car.ID, d.ID))
	require.NoError(t, s.Car().AddDriver(ctx, car.ID, d.ID))
	has, err = s.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Car().RemoveDriver(ctx, car.ID, d.ID))
	has, err = s.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func testCascade(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	m := newManufacturer(t, s, "Toyota", "Japan")
	d := newDriver(t, s, "alice", "")
	car := newCar(t, s, "Camry", m.ID, d)

	require.NoError(t, s.Manufacturer().Delete(ctx, m.ID))

	_, err := s.Car().GetByID(ctx, car.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cars, err := s.Car().GetByDriver(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func testDriverCRUD(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	repo := s.Driver()

	d := newDriver(t, s, "alice", "ABC12345")
	assert.NotZero(t, d.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsStaff)
	assert.Nil(t, got.LastLogin)
	assert.WithinDuration(t, time.Now(), got.DateJoined, time.Minute)

	require.NoError(t, repo.UpdateLicense(ctx, d.ID, "XYZ00001"))
	require.NoError(t, repo.SetPassword(ctx, d.ID, "new-hash"))
	require.NoError(t, repo.TouchLastLogin(ctx, d.ID))

	got, err = repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "XYZ00001", got.LicenseNumber)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.NotNil(t, got.LastLogin)

	got.FirstName = "Alice"
	got.LastName = "Smith"
	got.IsStaff = true
	_, err = repo.Update(ctx, got)
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice (Alice Smith)", got.String())
	assert.True(t, got.IsStaff)
	assert.Equal(t, "new-hash", got.PasswordHash)

	count, err := repo.Count(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err = repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateLicense(ctx, d.ID, "XYZ00002"), storage.ErrNotFound)
}

func testDriverUniqueUsername(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	newDriver(t, s, "alice", "ABC12345")

	_, err := s.Driver().Create(ctx, &models.Driver{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.Driver().Create(ctx, &models.Driver{Username: "bob", PasswordHash: "h", LicenseNumber: "ABC12345"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// empty license numbers never collide
	newDriver(t, s, "carol", "")
	newDriver(t, s, "dave", "")
}

func testSessions(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	repo := s.Session()
	d := newDriver(t, s, "alice", "")

	sess := &models.Session{Key: "key-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, sess))

	got, err := repo.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, got.Authenticated())
	assert.Equal(t, 0, got.NumVisits)

	for want := 1; want <= 3; want++ {
		visits, err := repo.IncrementVisits(ctx, "key-1")
		require.NoError(t, err)
		assert.Equal(t, want, visits)
	}

	extended := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Rekey(ctx, "key-1", "key-2", &d.ID, extended))
	_, err = repo.Get(ctx, "key-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err = repo.Get(ctx, "key-2")
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, d.ID, *got.DriverID)
	assert.Equal(t, 3, got.NumVisits)
	assert.True(t, extended.Equal(got.ExpiresAt), "expires_at %v, want %v", got.ExpiresAt, extended)
	assert.ErrorIs(t, repo.Rekey(ctx, "missing", "key-3", nil, extended), storage.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Session{Key: "old", ExpiresAt: time.Now().Add(-time.Hour)}))
	removed, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, repo.Delete(ctx, "key-2"))
	_, err = repo.IncrementVisits(ctx, "key-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testReset(t *testing.T, s storage.IStorage) {
	ctx := context.Background()
	m := newManufacturer(t, s, "Toyota", "Japan")
	d := newDriver(t, s, "alice", "")
	newCar(t, s, "Camry", m.ID, d)

	require.NoError(t, s.Reset(ctx))

	for _, count := range []func(context.Context, models.ListFilter) (int, error){
		s.Manufacturer().Count, s.Car().Count, s.Driver().Count,
	} {
		n, err := count(ctx, models.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}
