package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type sessionRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSessionRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISessionStorage {
	return &sessionRepo{db: db, log: log}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (session_key, driver_id, num_visits, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, s.Key, s.DriverID, s.NumVisits, s.ExpiresAt)
	if err != nil {
		r.log.Error("failed to create session", logger.Error(err))
		return mapError(err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, key string) (*models.Session, error) {
	var s models.Session
	query := `SELECT session_key, driver_id, num_visits, expires_at FROM sessions WHERE session_key = $1`
	err := r.db.QueryRow(ctx, query, key).Scan(&s.Key, &s.DriverID, &s.NumVisits, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get session", logger.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Rekey(ctx context.Context, oldKey, newKey string, driverID *int64, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET session_key = $1, driver_id = $2, expires_at = $3 WHERE session_key = $4`,
		newKey, driverID, expiresAt, oldKey,
	)
	if err != nil {
		r.log.Error("failed to rekey session", logger.Error(err))
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) IncrementVisits(ctx context.Context, key string) (int, error) {
	var visits int
	err := r.db.QueryRow(ctx,
		`UPDATE sessions SET num_visits = num_visits + 1 WHERE session_key = $1 RETURNING num_visits`,
		key,
	).Scan(&visits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		r.log.Error("failed to increment visits", logger.Error(err))
		return 0, err
	}
	return visits, nil
}

func (r *sessionRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE session_key = $1`, key)
	return err
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.log.Error("failed to delete expired sessions", logger.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
