package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lead-triage/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the pool shared by the corpus loader and the audit mirror.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool described by cfg. sql.Open is lazy, so
// connection errors surface on the first Ping or query.
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

// Ping checks the database is reachable.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close closes the pool. It is safe on a nil client.
func (c *PostgresClient) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
