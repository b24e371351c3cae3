package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mavmaso/ficherors/internal/config"
)

// ErrNoDSN is returned when a store is requested without a DSN configured.
var ErrNoDSN = errors.New("db: empty DSN")

// open builds a pooled *sqlx.DB for driver and pings it before returning.
func open(driver string, cfg config.DatabaseConfig, defaultPing time.Duration) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%s: %w", driver, ErrNoDSN)
	}
	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPing
	}
	err = retryConnect(cfg.ConnectRetry, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	return db, nil
}
