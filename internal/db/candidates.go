package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `id, first_name, last_name, phone_number, email, best_call_time,
	linkedin_url, github_url, comment, created_at, updated_at`

const insertCandidateSQL = `INSERT INTO candidates (id, first_name, last_name, phone_number, email,
	email_normalized, best_call_time, linkedin_url, github_url, comment, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const updateCandidateSQL = `UPDATE candidates SET first_name = $1, last_name = $2, phone_number = $3,
	best_call_time = $4, linkedin_url = $5, github_url = $6, comment = $7, updated_at = $8
	WHERE email_normalized = $9`

const selectCandidateByEmailSQL = `SELECT ` + candidateColumns + ` FROM candidates WHERE email_normalized = $1`

// CreateCandidate inserts a new candidate record
func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) error {
	_, err := db.pool.Exec(ctx, insertCandidateSQL,
		c.ID, c.FirstName, c.LastName, c.PhoneNumber, c.Email, NormalizeEmail(c.Email),
		c.BestCallTime, c.LinkedInURL, c.GitHubURL, c.Comment, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("failed to create candidate %s: %w", c.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// UpdateCandidate overwrites the mutable fields of the record matching c.Email
func (db *DB) UpdateCandidate(ctx context.Context, c *Candidate) error {
	tag, err := db.pool.Exec(ctx, updateCandidateSQL,
		c.FirstName, c.LastName, c.PhoneNumber, c.BestCallTime,
		c.LinkedInURL, c.GitHubURL, c.Comment, c.UpdatedAt, NormalizeEmail(c.Email),
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update candidate %s: %w", c.Email, ErrCandidateNotFound)
	}
	return nil
}

// GetCandidateByEmail retrieves a candidate by case-insensitive email.
// Returns nil without error when no record exists.
func (db *DB) GetCandidateByEmail(ctx context.Context, email string) (*Candidate, error) {
	var c Candidate
	err := db.pool.QueryRow(ctx, selectCandidateByEmailSQL, NormalizeEmail(email)).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Email, &c.BestCallTime,
		&c.LinkedInURL, &c.GitHubURL, &c.Comment, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
