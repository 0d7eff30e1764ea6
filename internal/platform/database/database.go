// Package database opens and verifies the service's SQL connection pool.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/hydrovacfinder/directory/internal/config"
)

const pingTimeout = 5 * time.Second

// Open connects using cfg, applies pool settings and verifies the
// connection with a bounded ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("database not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
