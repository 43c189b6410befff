package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/pkg/notify"
	"taxipark/storage"
)

// ErrPageNotFound is returned for a page number outside the list.
var ErrPageNotFound = errors.New("invalid page")

// InvalidChoiceError reports a referenced record that does not exist.
type InvalidChoiceError struct {
	Field string
	ID    int64
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("%s: no record with id %d", e.Field, e.ID)
}

type IServiceManager interface {
	Manufacturer() ManufacturerService
	Car() CarService
	Driver() DriverService
	Auth() AuthService
	Session() SessionService
	Stats(ctx context.Context) (*Stats, error)
}

type Options struct {
	PageSize   int
	SecretKey  string
	SessionTTL time.Duration
	Notifier   notify.Notifier
}

type service struct {
	stg                 storage.IStorage
	manufacturerService ManufacturerService
	carService          CarService
	driverService       DriverService
	authService         AuthService
	sessionService      SessionService
}

func New(stg storage.IStorage, log logger.ILogger, opts Options) IServiceManager {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	return &service{
		stg:                 stg,
		manufacturerService: NewManufacturerService(stg, log, opts.PageSize),
		carService:          NewCarService(stg, log, opts.PageSize, opts.Notifier),
		driverService:       NewDriverService(stg, log, opts.PageSize),
		authService:         NewAuthService(stg, log),
		sessionService:      NewSessionService(stg, log, opts.SecretKey, opts.SessionTTL),
	}
}

func (s *service) Manufacturer() ManufacturerService { return s.manufacturerService }
func (s *service) Car() CarService                   { return s.carService }
func (s *service) Driver() DriverService             { return s.driverService }
func (s *service) Auth() AuthService                 { return s.authService }
func (s *service) Session() SessionService           { return s.sessionService }

// Stats holds the fleet totals shown on the index page.
type Stats struct {
	NumDrivers       int
	NumCars          int
	NumManufacturers int
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	all := models.ListFilter{}
	var st Stats
	var err error
	if st.NumDrivers, err = s.stg.Driver().Count(ctx, all); err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}
	if st.NumCars, err = s.stg.Car().Count(ctx, all); err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}
	if st.NumManufacturers, err = s.stg.Manufacturer().Count(ctx, all); err != nil {
		return nil, fmt.Errorf("count manufacturers: %w", err)
	}
	return &st, nil
}

// ListResult is one page of a filtered list.
type ListResult[T any] struct {
	Items  []T
	Page   models.Page
	Search string
}

// paginate counts matches, validates the page number and loads that page.
func paginate[T any](
	ctx context.Context,
	search string,
	number, size int,
	count func(context.Context, models.ListFilter) (int, error),
	list func(context.Context, models.ListFilter) ([]T, error),
) (*ListResult[T], error) {
	filter := models.ListFilter{Search: search}
	total, err := count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := models.NewPage(number, size, total)
	if !page.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrPageNotFound, number)
	}

	filter.Limit = size
	filter.Offset = page.Offset()
	items, err := list(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult[T]{Items: items, Page: page, Search: search}, nil
}
