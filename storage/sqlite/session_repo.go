package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type sessionRepo struct {
	db  *sql.DB
	log logger.ILogger
}

func NewSessionRepo(db *sql.DB, log logger.ILogger) storage.ISessionStorage {
	return &sessionRepo{db: db, log: log}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (session_key, driver_id, num_visits, expires_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.Key, nullableID(s.DriverID), s.NumVisits, s.ExpiresAt.Unix())
	if err != nil {
		r.log.Error("failed to create session", logger.Error(err))
		return mapError(err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, key string) (*models.Session, error) {
	var s models.Session
	var driverID sql.NullInt64
	var expires int64
	query := `SELECT session_key, driver_id, num_visits, expires_at FROM sessions WHERE session_key = ?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &driverID, &s.NumVisits, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get session", logger.Error(err))
		return nil, err
	}
	if driverID.Valid {
		id := driverID.Int64
		s.DriverID = &id
	}
	s.ExpiresAt = unixTime(expires)
	return &s, nil
}

func (r *sessionRepo) Rekey(ctx context.Context, oldKey, newKey string, driverID *int64, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET session_key = ?, driver_id = ?, expires_at = ? WHERE session_key = ?`,
		newKey, nullableID(driverID), expiresAt.Unix(), oldKey,
	)
	if err != nil {
		r.log.Error("failed to rekey session", logger.Error(err))
		return mapError(err)
	}
	return rowsAffected(res)
}

func (r *sessionRepo) IncrementVisits(ctx context.Context, key string) (int, error) {
	var visits int
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET num_visits = num_visits + 1 WHERE session_key = ? RETURNING num_visits`,
		key,
	).Scan(&visits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		r.log.Error("failed to increment visits", logger.Error(err))
		return 0, err
	}
	return visits, nil
}

func (r *sessionRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
	return err
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		r.log.Error("failed to delete expired sessions", logger.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
