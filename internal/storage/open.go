package storage

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightops/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects with the configured driver. The returned func releases
// every resource held by the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, func(), error) {
	switch cfg.Driver {
	case config.DriverPGX:
		return openPGX(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime())
		return db, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPGX(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), config.DriverPGX)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}
