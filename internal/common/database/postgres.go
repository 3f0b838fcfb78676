// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"property-intel/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL connection used by the usage and saved-property stores.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Schema creates the collections the core reads and writes. Both are
// append/upsert only; nothing here is a general-purpose persistence layer.
const Schema = `
CREATE TABLE IF NOT EXISTS api_usage (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	query       TEXT NOT NULL,
	query_type  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	metadata    JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_api_usage_user_created ON api_usage (user_id, created_at);

CREATE TABLE IF NOT EXISTS properties (
	id             BIGSERIAL PRIMARY KEY,
	user_id        TEXT NOT NULL,
	property_hash  TEXT NOT NULL,
	data           JSONB NOT NULL,
	search_params  JSONB NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, property_hash)
);
`

// Migrate applies Schema.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
