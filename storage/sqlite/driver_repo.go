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

const driverColumns = `d.id, d.username, d.password_hash, d.first_name, d.last_name, d.email, d.license_number,
	d.is_staff, d.is_superuser, d.is_active, d.date_joined, d.last_login`

type driverRepo struct {
	db  *sql.DB
	log logger.ILogger
}

func NewDriverRepo(db *sql.DB, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

func scanDriver(row scanner) (*models.Driver, error) {
	var d models.Driver
	var joined int64
	var lastLogin sql.NullInt64
	err := row.Scan(
		&d.ID, &d.Username, &d.PasswordHash, &d.FirstName, &d.LastName, &d.Email, &d.LicenseNumber,
		&d.IsStaff, &d.IsSuperuser, &d.IsActive, &joined, &lastLogin,
	)
	if err != nil {
		return nil, err
	}
	d.DateJoined = unixTime(joined)
	if lastLogin.Valid {
		t := unixTime(lastLogin.Int64)
		d.LastLogin = &t
	}
	return &d, nil
}

func (r *driverRepo) Create(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	if d.DateJoined.IsZero() {
		d.DateJoined = time.Now().UTC().Truncate(time.Second)
	}
	query := `
		INSERT INTO drivers (username, password_hash, first_name, last_name, email, license_number, is_staff, is_superuser, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		d.Username, d.PasswordHash, d.FirstName, d.LastName, d.Email, d.LicenseNumber,
		d.IsStaff, d.IsSuperuser, d.IsActive, d.DateJoined.Unix(),
	)
	if err != nil {
		r.log.Error("failed to create driver", logger.Error(err))
		return nil, mapError(err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) Update(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	query := `
		UPDATE drivers
		SET username = ?, first_name = ?, last_name = ?, email = ?, license_number = ?,
			is_staff = ?, is_superuser = ?, is_active = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		d.Username, d.FirstName, d.LastName, d.Email, d.LicenseNumber, d.IsStaff, d.IsSuperuser, d.IsActive, d.ID,
	)
	if err != nil {
		r.log.Error("failed to update driver", logger.Error(err))
		return nil, mapError(err)
	}
	if err := rowsAffected(res); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) UpdateLicense(ctx context.Context, id int64, licenseNumber string) error {
	return r.exec(ctx, "failed to update license number", `UPDATE drivers SET license_number = ? WHERE id = ?`, licenseNumber, id)
}

func (r *driverRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, "failed to set password", `UPDATE drivers SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

func (r *driverRepo) TouchLastLogin(ctx context.Context, id int64) error {
	return r.exec(ctx, "failed to update last login", `UPDATE drivers SET last_login = ? WHERE id = ?`, time.Now().Unix(), id)
}

func (r *driverRepo) exec(ctx context.Context, failMsg, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error(failMsg, logger.Error(err))
		return mapError(err)
	}
	return rowsAffected(res)
}

func (r *driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.id = ?`, id)
}

func (r *driverRepo) GetByUsername(ctx context.Context, username string) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.username = ?`, username)
}

func (r *driverRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Driver, error) {
	d, err := scanDriver(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		WHERE cd.car_id = ?
		ORDER BY d.username, d.id`
	return r.query(ctx, query, carID)
}

func (r *driverRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Driver, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *driverRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = ?`, id)
	if err != nil {
		r.log.Error("failed to delete driver", logger.Error(err))
		return err
	}
	return rowsAffected(res)
}
