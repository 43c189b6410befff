package service

import (
	"context"
	"errors"

	"taxipark/pkg/auth"
	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type AuthService interface {
	// Authenticate checks credentials and stamps last_login on success.
	Authenticate(ctx context.Context, username, password string) (*models.Driver, error)
	CreateSuperuser(ctx context.Context, username, email, password string) (*models.Driver, error)
	SetPassword(ctx context.Context, id int64, password string) error
	// User returns the active driver behind a session, or ErrNotFound.
	User(ctx context.Context, id int64) (*models.Driver, error)
}

type authService struct {
	stg storage.IDriverStorage
	log logger.ILogger
}

func NewAuthService(stg storage.IStorage, log logger.ILogger) AuthService {
	return &authService{
		stg: stg.Driver(),
		log: log,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*models.Driver, error) {
	d, err := s.stg.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(d.PasswordHash, password); err != nil {
		return nil, err
	}
	if !d.IsActive {
		s.log.Warning("inactive driver tried to log in", logger.String("username", username))
		return nil, auth.ErrInvalidCredentials
	}

	if err := s.stg.TouchLastLogin(ctx, d.ID); err != nil {
		s.log.Warning("failed to update last login", logger.Int64("id", d.ID), logger.Error(err))
	}
	return d, nil
}

func (s *authService) CreateSuperuser(ctx context.Context, username, email, password string) (*models.Driver, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	d, err := s.stg.Create(ctx, &models.Driver{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("superuser created", logger.String("username", username))
	return d, nil
}

func (s *authService) SetPassword(ctx context.Context, id int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.stg.SetPassword(ctx, id, hash)
}

func (s *authService) User(ctx context.Context, id int64) (*models.Driver, error) {
	d, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, storage.ErrNotFound
	}
	return d, nil
}
