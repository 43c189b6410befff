// Package backend opens the storage implementation selected by configuration.
package backend

import (
	"context"
	"fmt"

	"taxipark/config"
	"taxipark/pkg/logger"
	"taxipark/storage"
	"taxipark/storage/postgres"
	"taxipark/storage/sqlite"
)

func Open(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresURL(), log)
	case config.DriverSQLite:
		return sqlite.New(cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
