package service

import (
	"context"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type ManufacturerService interface {
	List(ctx context.Context, search string, page int) (*ListResult[*models.Manufacturer], error)
	All(ctx context.Context) ([]*models.Manufacturer, error)
	Get(ctx context.Context, id int64) (*models.Manufacturer, error)
	Create(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error)
	Update(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error)
	Delete(ctx context.Context, id int64) error
}

type manufacturerService struct {
	stg      storage.IManufacturerStorage
	log      logger.ILogger
	pageSize int
}

func NewManufacturerService(stg storage.IStorage, log logger.ILogger, pageSize int) ManufacturerService {
	return &manufacturerService{
		stg:      stg.Manufacturer(),
		log:      log,
		pageSize: pageSize,
	}
}

func (s *manufacturerService) List(ctx context.Context, search string, page int) (*ListResult[*models.Manufacturer], error) {
	return paginate(ctx, search, page, s.pageSize, s.stg.Count, s.stg.GetAll)
}

func (s *manufacturerService) All(ctx context.Context) ([]*models.Manufacturer, error) {
	return s.stg.GetAll(ctx, models.ListFilter{})
}

func (s *manufacturerService) Get(ctx context.Context, id int64) (*models.Manufacturer, error) {
	return s.stg.GetByID(ctx, id)
}

func (s *manufacturerService) Create(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	created, err := s.stg.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.log.Info("manufacturer created", logger.Int64("id", created.ID), logger.String("name", created.Name))
	return created, nil
}

func (s *manufacturerService) Update(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	return s.stg.Update(ctx, m)
}

func (s *manufacturerService) Delete(ctx context.Context, id int64) error {
	if err := s.stg.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("manufacturer deleted", logger.Int64("id", id))
	return nil
}
