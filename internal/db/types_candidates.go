package db

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is the persisted candidate record. The same value is held in the cache.
type Candidate struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Email        string    `json:"email"`
	BestCallTime string    `json:"bestCallTime"`
	LinkedInURL  string    `json:"linkedInUrl"`
	GitHubURL    string    `json:"gitHubUrl"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	// ErrDuplicateEmail is returned by CreateCandidate when the email already has a record.
	ErrDuplicateEmail = errors.New("candidate email already exists")
	// ErrCandidateNotFound is returned by UpdateCandidate when no record matched.
	ErrCandidateNotFound = errors.New("candidate record could not be found")
	// ErrUnknownProvider is returned by Open for an unsupported provider name.
	ErrUnknownProvider = errors.New("database provider not configured correctly")
)

// NormalizeEmail case-folds an email for lookups, uniqueness and cache keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
