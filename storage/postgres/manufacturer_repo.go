package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type manufacturerRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewManufacturerRepo(db *pgxpool.Pool, log logger.ILogger) storage.IManufacturerStorage {
	return &manufacturerRepo{db: db, log: log}
}

func (r *manufacturerRepo) Create(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	query := `INSERT INTO manufacturers (name, country) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRow(ctx, query, m.Name, m.Country).Scan(&m.ID); err != nil {
		r.log.Error("failed to create manufacturer", logger.Error(err))
		return nil, mapError(err)
	}
	return m, nil
}

func (r *manufacturerRepo) Update(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	tag, err := r.db.Exec(ctx, `UPDATE manufacturers SET name = $1, country = $2 WHERE id = $3`, m.Name, m.Country, m.ID)
	if err != nil {
		r.log.Error("failed to update manufacturer", logger.Error(err))
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return m, nil
}

func (r *manufacturerRepo) GetByID(ctx context.Context, id int64) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := r.db.QueryRow(ctx, `SELECT id, name, country FROM manufacturers WHERE id = $1`, id).Scan(&m.ID, &m.Name, &m.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get manufacturer", logger.Error(err))
		return nil, err
	}
	return &m, nil
}

func (r *manufacturerRepo) GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Manufacturer, error) {
	query, args := listQuery(`SELECT m.id, m.name, m.country FROM manufacturers m`, "m.name", "m.name, m.id", filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list manufacturers", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var manufacturers []*models.Manufacturer
	for rows.Next() {
		var m models.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Country); err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, &m)
	}
	return manufacturers, rows.Err()
}

func (r *manufacturerRepo) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	filter.Limit = 0
	query, args := listQuery(`SELECT count(*) FROM manufacturers m`, "m.name", "", filter)
	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *manufacturerRepo) Delete(ctx context.Context, id int64) error {
	// cars has ON DELETE CASCADE so the manufacturer's cars go with it
	tag, err := r.db.Exec(ctx, `DELETE FROM manufacturers WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete manufacturer", logger.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
