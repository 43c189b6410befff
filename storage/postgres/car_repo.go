package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

const carColumns = `c.id, c.model, c.manufacturer_id, m.id, m.name, m.country`

type carRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewCarRepo(db *pgxpool.Pool, log logger.ILogger) storage.ICarStorage {
	return &carRepo{db: db, log: log}
}

func scanCar(row pgx.Row) (*models.Car, error) {
	var c models.Car
	var m models.Manufacturer
	if err := row.Scan(&c.ID, &c.Model, &c.ManufacturerID, &m.ID, &m.Name, &m.Country); err != nil {
		return nil, err
	}
	c.Manufacturer = &m
	return &c, nil
}

func (r *carRepo) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO cars (model, manufacturer_id) VALUES ($1, $2) RETURNING id`,
		car.Model, car.ManufacturerID,
	).Scan(&car.ID)
	if err != nil {
		r.log.Error("failed to create car", logger.Error(err))
		return nil, mapError(err)
	}

	if err := insertCarDrivers(ctx, tx, car.ID, car.DriverIDs()); err != nil {
		r.log.Error("failed to assign car drivers", logger.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return car, nil
}

func (r *carRepo) Update(ctx context.Context, car *models.Car) (*models.Car, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE cars SET model = $1, manufacturer_id = $2 WHERE id = $3`,
		car.Model, car.ManufacturerID, car.ID,
	)
	if err != nil {
		r.log.Error("failed to update car", logger.Error(err))
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM car_drivers WHERE car_id = $1`, car.ID); err != nil {
		return nil, err
	}
	if err := insertCarDrivers(ctx, tx, car.ID, car.DriverIDs()); err != nil {
		r.log.Error("failed to assign car drivers", logger.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return car, nil
}

func insertCarDrivers(ctx context.Context, tx pgx.Tx, carID int64, driverIDs []int64) error {
	for _, driverID := range driverIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO car_drivers (car_id, driver_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			carID, driverID,
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *carRepo) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars c JOIN manufacturers m ON m.id = c.manufacturer_id WHERE c.id = $1`
	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get car", logger.Error(err))
		return nil, err
	}

	car.Drivers, err = NewDriverRepo(r.db, r.log).GetByCar(ctx, id)
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (r *carRepo) GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Car, error) {
	query, args := listQuery(
		`SELECT `+carColumns+` FROM cars c JOIN manufacturers m ON m.id = c.manufacturer_id`,
		"c.model", "c.model, c.id", filter,
	)
	return r.query(ctx, query, args...)
}

func (r *carRepo) GetByDriver(ctx context.Context, driverID int64) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars c
		JOIN manufacturers m ON m.id = c.manufacturer_id
		JOIN car_drivers cd ON cd.car_id = c.id
		WHERE cd.driver_id = $1
		ORDER BY c.model, c.id`
	return r.query(ctx, query, driverID)
}

func (r *carRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Car, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list cars", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

func (r *carRepo) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	filter.Limit = 0
	query, args := listQuery(`SELECT count(*) FROM cars c`, "c.model", "", filter)
	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *carRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete car", logger.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *carRepo) HasDriver(ctx context.Context, carID, driverID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM car_drivers WHERE car_id = $1 AND driver_id = $2)`
	err := r.db.QueryRow(ctx, query, carID, driverID).Scan(&exists)
	return exists, err
}

func (r *carRepo) AddDriver(ctx context.Context, carID, driverID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO car_drivers (car_id, driver_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, carID, driverID)
	return err
}

func (r *carRepo) RemoveDriver(ctx context.Context, carID, driverID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM car_drivers WHERE car_id = $1 AND driver_id = $2`, carID, driverID)
	return err
}

func (r *carRepo) ToggleDriver(ctx context.Context, carID, driverID int64) (bool, error) {
	// Try to remove first; if nothing was removed the driver was not assigned.
	tag, err := r.db.Exec(ctx, `DELETE FROM car_drivers WHERE car_id = $1 AND driver_id = $2`, carID, driverID)
	if err != nil {
		r.log.Error("failed to unassign driver", logger.Error(err))
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `INSERT INTO car_drivers (car_id, driver_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, carID, driverID)
	if err != nil {
		r.log.Error("failed to assign driver", logger.Error(err))
		return false, err
	}
	return true, nil
}
