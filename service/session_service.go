package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taxipark/pkg/auth"
	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

// ErrNoSession is returned when a cookie does not resolve to a live session.
var ErrNoSession = errors.New("no active session")

type SessionService interface {
	// Load resolves a cookie value to its session. Expired sessions are removed.
	Load(ctx context.Context, token string) (*models.Session, error)
	// Login binds current (or a fresh session when nil) to driverID under a new
	// key and a full TTL. The visit counter carries over unless current belongs
	// to someone else.
	Login(ctx context.Context, current *models.Session, driverID int64) (*models.Session, string, error)
	Logout(ctx context.Context, current *models.Session) error
	// Visit counts one index page view and returns the running total.
	Visit(ctx context.Context, current *models.Session) (int, error)
	DeleteExpired(ctx context.Context) (int64, error)
	TTL() time.Duration
}

type sessionService struct {
	stg    storage.ISessionStorage
	log    logger.ILogger
	tokens *auth.TokenManager
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(stg storage.IStorage, log logger.ILogger, secretKey string, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &sessionService{
		stg:    stg.Session(),
		log:    log,
		tokens: auth.NewTokenManager(secretKey, ttl),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

func (s *sessionService) Load(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	key, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrNoSession
	}

	sess, err := s.stg.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.stg.Delete(ctx, key); err != nil {
			s.log.Warning("failed to delete expired session", logger.Error(err))
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *sessionService) Login(ctx context.Context, current *models.Session, driverID int64) (*models.Session, string, error) {
	key := uuid.NewString()
	token, err := s.tokens.Generate(key)
	if err != nil {
		return nil, "", err
	}

	if current != nil && current.DriverID != nil && *current.DriverID != driverID {
		if err := s.stg.Delete(ctx, current.Key); err != nil {
			return nil, "", err
		}
		current = nil
	}

	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	if current != nil {
		err := s.stg.Rekey(ctx, current.Key, key, &driverID, expiresAt)
		switch {
		case err == nil:
			current.Key = key
			current.DriverID = &driverID
			current.ExpiresAt = expiresAt
			return current, token, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, "", err
		}
	}

	sess := &models.Session{
		Key:       key,
		DriverID:  &driverID,
		ExpiresAt: expiresAt,
	}
	if err := s.stg.Create(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (s *sessionService) Logout(ctx context.Context, current *models.Session) error {
	if current == nil {
		return nil
	}
	return s.stg.Delete(ctx, current.Key)
}

func (s *sessionService) Visit(ctx context.Context, current *models.Session) (int, error) {
	visits, err := s.stg.IncrementVisits(ctx, current.Key)
	if err != nil {
		return 0, err
	}
	current.NumVisits = visits
	return visits, nil
}

func (s *sessionService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.stg.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired sessions removed", logger.Int64("count", n))
	}
	return n, nil
}
