package service

import (
	"context"

	"taxipark/pkg/auth"
	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type DriverService interface {
	List(ctx context.Context, search string, page int) (*ListResult[*models.Driver], error)
	All(ctx context.Context) ([]*models.Driver, error)
	// Get loads the driver together with the cars assigned to it.
	Get(ctx context.Context, id int64) (*models.Driver, error)
	Create(ctx context.Context, d *models.Driver, password string) (*models.Driver, error)
	Update(ctx context.Context, d *models.Driver) (*models.Driver, error)
	UpdateLicense(ctx context.Context, id int64, licenseNumber string) error
	Delete(ctx context.Context, id int64) error
}

type driverService struct {
	stg      storage.IStorage
	log      logger.ILogger
	pageSize int
}

func NewDriverService(stg storage.IStorage, log logger.ILogger, pageSize int) DriverService {
	return &driverService{
		stg:      stg,
		log:      log,
		pageSize: pageSize,
	}
}

func (s *driverService) List(ctx context.Context, search string, page int) (*ListResult[*models.Driver], error) {
	drivers := s.stg.Driver()
	return paginate(ctx, search, page, s.pageSize, drivers.Count, drivers.GetAll)
}

func (s *driverService) All(ctx context.Context) ([]*models.Driver, error) {
	return s.stg.Driver().GetAll(ctx, models.ListFilter{})
}

func (s *driverService) Get(ctx context.Context, id int64) (*models.Driver, error) {
	d, err := s.stg.Driver().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Cars, err = s.stg.Car().GetByDriver(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *driverService) Create(ctx context.Context, d *models.Driver, password string) (*models.Driver, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	d.PasswordHash = hash

	created, err := s.stg.Driver().Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.log.Info("driver created", logger.Int64("id", created.ID), logger.String("username", created.Username))
	return created, nil
}

func (s *driverService) Update(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	return s.stg.Driver().Update(ctx, d)
}

func (s *driverService) UpdateLicense(ctx context.Context, id int64, licenseNumber string) error {
	if err := s.stg.Driver().UpdateLicense(ctx, id, licenseNumber); err != nil {
		return err
	}
	s.log.Info("driver license updated", logger.Int64("id", id))
	return nil
}

func (s *driverService) Delete(ctx context.Context, id int64) error {
	if err := s.stg.Driver().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("driver deleted", logger.Int64("id", id))
	return nil
}
