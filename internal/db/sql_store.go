package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jonathan/candidate-intake/internal/db/migrations"
)

// SQLStore is a CandidateStore over database/sql. It backs the libpq and
// sqlite providers.
type SQLStore struct {
	conn    *sql.DB
	dialect sqlDialect
}

type sqlDialect struct {
	name            string
	rebind          func(query string) string
	uniqueViolation func(err error) bool
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

var libpqDialect = sqlDialect{
	name:   ProviderLibPQ,
	rebind: func(q string) string { return q },
	uniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
	},
}

var sqliteDialect = sqlDialect{
	name:   ProviderSQLite,
	rebind: func(q string) string { return placeholderRe.ReplaceAllString(q, "?$1") },
	uniqueViolation: func(err error) bool {
		var sqlErr *sqlite.Error
		if !errors.As(err, &sqlErr) {
			return false
		}
		code := sqlErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqlErr.Error(), "UNIQUE"))
	},
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS candidates (
	id               TEXT PRIMARY KEY,
	first_name       TEXT NOT NULL,
	last_name        TEXT NOT NULL,
	phone_number     TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL,
	email_normalized TEXT NOT NULL UNIQUE,
	best_call_time   TEXT NOT NULL DEFAULT '',
	linkedin_url     TEXT NOT NULL DEFAULT '',
	github_url       TEXT NOT NULL DEFAULT '',
	comment          TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
)`

// OpenLibPQ connects to PostgreSQL through lib/pq.
func OpenLibPQ(ctx context.Context, dsn string) (*SQLStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLStore{conn: conn, dialect: libpqDialect}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file and ensures
// the candidates table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1) // single writer
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLStore{conn: conn, dialect: sqliteDialect}, nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

// Migrate applies the PostgreSQL migrations. It is a no-op for sqlite,
// whose schema is created on open.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s.dialect.name != ProviderLibPQ {
		return nil
	}
	return migrations.Up(ctx, s.conn)
}

// MigrationVersion reports the applied schema version for libpq.
func (s *SQLStore) MigrationVersion(ctx context.Context) (uint, bool, error) {
	if s.dialect.name != ProviderLibPQ {
		return 0, false, fmt.Errorf("provider %s does not use migrations", s.dialect.name)
	}
	return migrations.Version(ctx, s.conn)
}

func (s *SQLStore) CreateCandidate(ctx context.Context, c *Candidate) error {
	_, err := s.conn.ExecContext(ctx, s.dialect.rebind(insertCandidateSQL),
		c.ID.String(), c.FirstName, c.LastName, c.PhoneNumber, c.Email, NormalizeEmail(c.Email),
		c.BestCallTime, c.LinkedInURL, c.GitHubURL, c.Comment, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		if s.dialect.uniqueViolation(err) {
			return fmt.Errorf("failed to create candidate %s: %w", c.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateCandidate(ctx context.Context, c *Candidate) error {
	res, err := s.conn.ExecContext(ctx, s.dialect.rebind(updateCandidateSQL),
		c.FirstName, c.LastName, c.PhoneNumber, c.BestCallTime,
		c.LinkedInURL, c.GitHubURL, c.Comment, c.UpdatedAt.UTC(), NormalizeEmail(c.Email),
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update candidate %s: %w", c.Email, ErrCandidateNotFound)
	}
	return nil
}

func (s *SQLStore) GetCandidateByEmail(ctx context.Context, email string) (*Candidate, error) {
	var c Candidate
	err := s.conn.QueryRowContext(ctx, s.dialect.rebind(selectCandidateByEmailSQL), NormalizeEmail(email)).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Email, &c.BestCallTime,
		&c.LinkedInURL, &c.GitHubURL, &c.Comment, timeScanner{&c.CreatedAt}, timeScanner{&c.UpdatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

// timeScanner accepts the native time values of lib/pq and the textual
// timestamps SQLite may return.
type timeScanner struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into time.Time", src)
	}
}

func (s timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", v)
}
