// Package sqlite provides a SQLite-backed implementation of storage.IStorage
// for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"taxipark/migrations"
	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

var _ storage.IStorage = (*Store)(nil)

// SQLite's LOWER and LIKE only fold ASCII, so searches lower both sides with
// unicode_lower, which applies the same rule as storage.LikePattern.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type Store struct {
	db  *sql.DB
	log logger.ILogger
}

// New opens the database at dbPath, creating parent directories, and applies
// pending migrations.
func New(dbPath string, log logger.ILogger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers; queries never nest open cursors.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("SQLite opened", logger.String("path", dbPath))
	return &Store{db: db, log: log}, nil
}

func runMigrations(db *sql.DB, log logger.ILogger) error {
	src, err := migrations.FS("sqlite")
	if err != nil {
		return err
	}
	source, err := iofs.New(src, ".")
	if err != nil {
		return err
	}
	target, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return err
	}
	// m.Close would close db as well, so the migrator is simply dropped.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("no migrations to apply")
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Error("failed to close database", logger.Error(err))
	}
}

func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"car_drivers", "cars", "manufacturers", "sessions", "drivers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			s.log.Error("failed to clear table", logger.String("table", table), logger.Error(err))
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Manufacturer() storage.IManufacturerStorage { return NewManufacturerRepo(s.db, s.log) }
func (s *Store) Car() storage.ICarStorage                   { return NewCarRepo(s.db, s.log) }
func (s *Store) Driver() storage.IDriverStorage             { return NewDriverRepo(s.db, s.log) }
func (s *Store) Session() storage.ISessionStorage           { return NewSessionRepo(s.db, s.log) }

func mapError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, sqliteErr.Error())
		}
	}
	return err
}

func listQuery(base, searchCol, orderBy string, filter models.ListFilter) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}
	b.WriteString(base)
	if filter.Search != "" {
		b.WriteString(" WHERE unicode_lower(" + searchCol + `) LIKE ? ESCAPE '\'`)
		args = append(args, storage.LikePattern(filter.Search))
	}
	if orderBy != "" {
		b.WriteString(" ORDER BY " + orderBy)
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}
	return b.String(), args
}

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
