package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type manufacturerRepo struct {
	db  *sql.DB
	log logger.ILogger
}

func NewManufacturerRepo(db *sql.DB, log logger.ILogger) storage.IManufacturerStorage {
	return &manufacturerRepo{db: db, log: log}
}

func (r *manufacturerRepo) Create(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO manufacturers (name, country) VALUES (?, ?)`, m.Name, m.Country)
	if err != nil {
		r.log.Error("failed to create manufacturer", logger.Error(err))
		return nil, mapError(err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *manufacturerRepo) Update(ctx context.Context, m *models.Manufacturer) (*models.Manufacturer, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE manufacturers SET name = ?, country = ? WHERE id = ?`, m.Name, m.Country, m.ID)
	if err != nil {
		r.log.Error("failed to update manufacturer", logger.Error(err))
		return nil, mapError(err)
	}
	if err := rowsAffected(res); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *manufacturerRepo) GetByID(ctx context.Context, id int64) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := r.db.QueryRowContext(ctx, `SELECT id, name, country FROM manufacturers WHERE id = ?`, id).Scan(&m.ID, &m.Name, &m.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get manufacturer", logger.Error(err))
		return nil, err
	}
	return &m, nil
}

func (r *manufacturerRepo) GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Manufacturer, error) {
	query, args := listQuery(`SELECT m.id, m.name, m.country FROM manufacturers m`, "m.name", "m.name, m.id", filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *manufacturerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM manufacturers WHERE id = ?`, id)
	if err != nil {
		r.log.Error("failed to delete manufacturer", logger.Error(err))
		return err
	}
	return rowsAffected(res)
}
