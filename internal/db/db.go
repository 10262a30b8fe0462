// Package db provides storage for candidate records.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jonathan/candidate-intake/internal/db/migrations"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer func() {
		_ = sqlDB.Close()
	}()
	return migrations.Up(ctx, sqlDB)
}

// MigrationVersion reports the applied schema version.
func (db *DB) MigrationVersion(ctx context.Context) (uint, bool, error) {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer func() {
		_ = sqlDB.Close()
	}()
	return migrations.Version(ctx, sqlDB)
}
