package service

import (
	"context"
	"errors"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/pkg/notify"
	"taxipark/storage"
)

type CarService interface {
	List(ctx context.Context, search string, page int) (*ListResult[*models.Car], error)
	All(ctx context.Context) ([]*models.Car, error)
	Get(ctx context.Context, id int64) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	Update(ctx context.Context, car *models.Car) (*models.Car, error)
	Delete(ctx context.Context, id int64) error
	// ToggleAssignment adds driver to the car's drivers or removes it, and
	// reports whether the driver is assigned afterwards.
	ToggleAssignment(ctx context.Context, carID int64, driver *models.Driver) (bool, error)
}

type carService struct {
	stg      storage.IStorage
	log      logger.ILogger
	pageSize int
	notifier notify.Notifier
}

func NewCarService(stg storage.IStorage, log logger.ILogger, pageSize int, notifier notify.Notifier) CarService {
	return &carService{
		stg:      stg,
		log:      log,
		pageSize: pageSize,
		notifier: notifier,
	}
}

func (s *carService) List(ctx context.Context, search string, page int) (*ListResult[*models.Car], error) {
	cars := s.stg.Car()
	return paginate(ctx, search, page, s.pageSize, cars.Count, cars.GetAll)
}

func (s *carService) All(ctx context.Context) ([]*models.Car, error) {
	return s.stg.Car().GetAll(ctx, models.ListFilter{})
}

func (s *carService) Get(ctx context.Context, id int64) (*models.Car, error) {
	return s.stg.Car().GetByID(ctx, id)
}

func (s *carService) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := s.checkRelations(ctx, car); err != nil {
		return nil, err
	}
	created, err := s.stg.Car().Create(ctx, car)
	if err != nil {
		return nil, err
	}
	s.log.Info("car created", logger.Int64("id", created.ID), logger.String("model", created.Model))
	return created, nil
}

func (s *carService) Update(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := s.checkRelations(ctx, car); err != nil {
		return nil, err
	}
	return s.stg.Car().Update(ctx, car)
}

// checkRelations makes sure the manufacturer and every driver of car exist.
func (s *carService) checkRelations(ctx context.Context, car *models.Car) error {
	if _, err := s.stg.Manufacturer().GetByID(ctx, car.ManufacturerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &InvalidChoiceError{Field: "manufacturer", ID: car.ManufacturerID}
		}
		return err
	}
	for _, d := range car.Drivers {
		if _, err := s.stg.Driver().GetByID(ctx, d.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return &InvalidChoiceError{Field: "drivers", ID: d.ID}
			}
			return err
		}
	}
	return nil
}

func (s *carService) Delete(ctx context.Context, id int64) error {
	if err := s.stg.Car().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("car deleted", logger.Int64("id", id))
	return nil
}

func (s *carService) ToggleAssignment(ctx context.Context, carID int64, driver *models.Driver) (bool, error) {
	car, err := s.stg.Car().GetByID(ctx, carID)
	if err != nil {
		return false, err
	}

	assigned, err := s.stg.Car().ToggleDriver(ctx, carID, driver.ID)
	if err != nil {
		s.log.Error("failed to toggle car assignment", logger.Int64("car_id", carID), logger.Int64("driver_id", driver.ID), logger.Error(err))
		return false, err
	}

	s.log.Info("car assignment toggled",
		logger.Int64("car_id", carID),
		logger.Int64("driver_id", driver.ID),
		logger.Bool("assigned", assigned),
	)
	s.notifier.AssignmentChanged(ctx, car, driver, assigned)
	return assigned, nil
}
