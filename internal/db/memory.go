package db

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps candidates in process memory, keyed by normalized email.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Candidate
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Candidate)}
}

func (m *MemoryStore) CreateCandidate(_ context.Context, c *Candidate) error {
	key := NormalizeEmail(c.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		return fmt.Errorf("failed to create candidate %s: %w", c.Email, ErrDuplicateEmail)
	}
	m.records[key] = *c
	return nil
}

func (m *MemoryStore) UpdateCandidate(_ context.Context, c *Candidate) error {
	key := NormalizeEmail(c.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.records[key]
	if !ok {
		return fmt.Errorf("failed to update candidate %s: %w", c.Email, ErrCandidateNotFound)
	}
	existing.FirstName = c.FirstName
	existing.LastName = c.LastName
	existing.PhoneNumber = c.PhoneNumber
	existing.BestCallTime = c.BestCallTime
	existing.LinkedInURL = c.LinkedInURL
	existing.GitHubURL = c.GitHubURL
	existing.Comment = c.Comment
	existing.UpdatedAt = c.UpdatedAt
	m.records[key] = existing
	return nil
}

func (m *MemoryStore) GetCandidateByEmail(_ context.Context, email string) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.records[NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) Close() error { return nil }
