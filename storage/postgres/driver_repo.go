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

const driverColumns = `d.id, d.username, d.password_hash, d.first_name, d.last_name, d.email, d.license_number,
	d.is_staff, d.is_superuser, d.is_active, d.date_joined, d.last_login`

type driverRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDriverRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(
		&d.ID, &d.Username, &d.PasswordHash, &d.FirstName, &d.LastName, &d.Email, &d.LicenseNumber,
		&d.IsStaff, &d.IsSuperuser, &d.IsActive, &d.DateJoined, &d.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepo) Create(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	query := `
		INSERT INTO drivers (username, password_hash, first_name, last_name, email, license_number, is_staff, is_superuser, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, date_joined
	`
	err := r.db.QueryRow(ctx, query,
		d.Username, d.PasswordHash, d.FirstName, d.LastName, d.Email, d.LicenseNumber, d.IsStaff, d.IsSuperuser, d.IsActive,
	).Scan(&d.ID, &d.DateJoined)
	if err != nil {
		r.log.Error("failed to create driver", logger.Error(err))
		return nil, mapError(err)
	}
	return d, nil
}

func (r *driverRepo) Update(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	query := `
		UPDATE drivers
		SET username = $1, first_name = $2, last_name = $3, email = $4, license_number = $5,
			is_staff = $6, is_superuser = $7, is_active = $8
		WHERE id = $9
	`
	tag, err := r.db.Exec(ctx, query,
		d.Username, d.FirstName, d.LastName, d.Email, d.LicenseNumber, d.IsStaff, d.IsSuperuser, d.IsActive, d.ID,
	)
	if err != nil {
		r.log.Error("failed to update driver", logger.Error(err))
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (r *driverRepo) UpdateLicense(ctx context.Context, id int64, licenseNumber string) error {
	return r.exec(ctx, "failed to update license number", `UPDATE drivers SET license_number = $1 WHERE id = $2`, licenseNumber, id)
}

func (r *driverRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, "failed to set password", `UPDATE drivers SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *driverRepo) TouchLastLogin(ctx context.Context, id int64) error {
	return r.exec(ctx, "failed to update last login", `UPDATE drivers SET last_login = NOW() WHERE id = $1`, id)
}

func (r *driverRepo) exec(ctx context.Context, failMsg, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error(failMsg, logger.Error(err))
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.id = $1`, id)
}

func (r *driverRepo) GetByUsername(ctx context.Context, username string) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.username = $1`, username)
}

func (r *driverRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get driver", logger.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) GetAll(ctx context.Context, filter models.ListFilter) ([]*models.Driver, error) {
	query, args := listQuery(`SELECT `+driverColumns+` FROM drivers d`, "d.username", "d.username, d.id", filter)
	return r.query(ctx, query, args...)
}

func (r *driverRepo) GetByCar(ctx context.Context, carID int64) ([]*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers d
		JOIN car_drivers cd ON cd.driver_id = d.id
		WHERE cd.car_id = $1
		ORDER BY d.username, d.id`
	return r.query(ctx, query, carID)
}

func (r *driverRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Driver, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list drivers", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (r *driverRepo) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	filter.Limit = 0
	query, args := listQuery(`SELECT count(*) FROM drivers d`, "d.username", "", filter)
	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *driverRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete driver", logger.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
