package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"taxipark/pkg/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// ConflictOn reports whether err is a unique violation involving column.
// Both backends put the column or constraint name in the wrapped message.
func ConflictOn(err error, column string) bool {
	return errors.Is(err, ErrAlreadyExists) && strings.Contains(err.Error(), column)
}

type IStorage interface {
	Manufacturer() IManufacturerStorage
	Car() ICarStorage
	Driver() IDriverStorage
	Session() ISessionStorage
	// Reset removes every fleet record and session, keeping the schema.
	Reset(ctx context.Context) error
	Close()
}

type IManufacturerStorage interface {
	Create(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error)
	Update(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error)
	GetByID(ctx context.Context, id int64) (*models.Manufacturer, error)
	GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Manufacturer, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	Delete(ctx context.Context, id int64) error
}

type ICarStorage interface {
	// Create inserts the car and its driver set (car.Drivers ids) atomically.
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	// Update rewrites the car row and replaces its driver set atomically.
	Update(ctx context.Context, car *models.Car) (*models.Car, error)
	// GetByID loads the car with its manufacturer and drivers.
	GetByID(ctx context.Context, id int64) (*models.Car, error)
	// GetAll loads cars with their manufacturers, without drivers.
	GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Car, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	Delete(ctx context.Context, id int64) error
	GetByDriver(ctx context.Context, driverID int64) ([]*models.Car, error)
	HasDriver(ctx context.Context, carID, driverID int64) (bool, error)
	AddDriver(ctx context.Context, carID, driverID int64) error
	RemoveDriver(ctx context.Context, carID, driverID int64) error
	// ToggleDriver flips membership and reports whether the driver is now assigned.
	ToggleDriver(ctx context.Context, carID, driverID int64) (bool, error)
}

type IDriverStorage interface {
	Create(ctx context.Context, d *models.Driver) (*models.Driver, error)
	// Update rewrites profile fields and flags; the password hash is left untouched.
	Update(ctx context.Context, d *models.Driver) (*models.Driver, error)
	UpdateLicense(ctx context.Context, id int64, licenseNumber string) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	GetByUsername(ctx context.Context, username string) (*models.Driver, error)
	GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Driver, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	GetByCar(ctx context.Context, carID int64) ([]*models.Driver, error)
	Delete(ctx context.Context, id int64) error
}

type ISessionStorage interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, key string) (*models.Session, error)
	// Rekey moves a session to newKey, binds it to driverID (nil for anonymous)
	// and pushes its expiry to expiresAt.
	Rekey(ctx context.Context, oldKey, newKey string, driverID *int64, expiresAt time.Time) error
	// IncrementVisits bumps the counter and returns the new value.
	IncrementVisits(ctx context.Context, key string) (int, error)
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
