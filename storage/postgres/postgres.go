package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/migrations"
	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/storage"
)

type Store struct {
	pool *pgxpool.Pool
	log  logger.ILogger
}

// New connects to url and applies pending migrations.
func New(ctx context.Context, url string, log logger.ILogger) (storage.IStorage, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Error("error while parsing Postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect Postgres", logger.Error(err))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error("failed to ping Postgres", logger.Error(err))
		return nil, err
	}

	if err := Migrate(url, log); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Postgres connected")

	return &Store{
		pool: pool,
		log:  log,
	}, nil
}

// Migrate applies the embedded postgres migrations to url.
func Migrate(url string, log logger.ILogger) error {
	src, err := migrations.FS("postgres")
	if err != nil {
		return err
	}
	driver, err := iofs.New(src, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", driver, url)
	if err != nil {
		log.Error("migration init error", logger.Error(err))
		return err
	}
	defer m.Close()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		log.Error("migration up error", logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE TABLE car_drivers, cars, manufacturers, sessions, drivers RESTART IDENTITY CASCADE")
	if err != nil {
		s.log.Error("failed to truncate tables", logger.Error(err))
	}
	return err
}

func (s *Store) Manufacturer() storage.IManufacturerStorage {
	return NewManufacturerRepo(s.pool, s.log)
}
func (s *Store) Car() storage.ICarStorage         { return NewCarRepo(s.pool, s.log) }
func (s *Store) Driver() storage.IDriverStorage   { return NewDriverRepo(s.pool, s.log) }
func (s *Store) Session() storage.ISessionStorage { return NewSessionRepo(s.pool, s.log) }

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

// listQuery appends the search condition, ordering and paging to base.
// base must select from a table aliased so that searchCol resolves.
func listQuery(base, searchCol, orderBy string, filter models.ListFilter) (string, []interface{}) {
	var args []interface{}
	query := base
	if filter.Search != "" {
		args = append(args, storage.LikePattern(filter.Search))
		query += fmt.Sprintf(` WHERE LOWER(%s) LIKE $%d ESCAPE '\'`, searchCol, len(args))
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return query, args
}
