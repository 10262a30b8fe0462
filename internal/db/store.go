package db

import (
	"context"
	"fmt"
	"log/slog"
)

// CandidateStore is the persistence contract used by the candidate service.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *Candidate) error
	UpdateCandidate(ctx context.Context, c *Candidate) error
	GetCandidateByEmail(ctx context.Context, email string) (*Candidate, error)
}

// Store is a CandidateStore that owns a connection.
type Store interface {
	CandidateStore
	Close() error
}

// Supported provider names.
const (
	ProviderPostgres = "postgres"
	ProviderLibPQ    = "libpq"
	ProviderSQLite   = "sqlite"
	ProviderMemory   = "memory"
)

// Config selects and configures a storage provider.
type Config struct {
	Provider       string
	PostgresURL    string
	LibPQURL       string
	SQLitePath     string
	MigrateOnStart bool
}

// Open connects to the configured provider and, for the PostgreSQL
// providers, applies migrations when MigrateOnStart is set.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case ProviderPostgres:
		pg, err := Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		slog.Info("Connected candidate store", slog.String("provider", cfg.Provider))
		return pg, nil

	case ProviderLibPQ:
		store, err := OpenLibPQ(ctx, cfg.LibPQURL)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		slog.Info("Connected candidate store", slog.String("provider", cfg.Provider))
		return store, nil

	case ProviderSQLite:
		store, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Opened candidate store", slog.String("provider", cfg.Provider), slog.String("path", cfg.SQLitePath))
		return store, nil

	case ProviderMemory:
		slog.Warn("Using in-memory candidate store; records are lost on restart")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
