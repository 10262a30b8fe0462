// Package candidate implements candidate submission: validation, then an
// upsert keyed by email with cache-aside reads.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonathan/candidate-intake/internal/cache"
	"github.com/jonathan/candidate-intake/internal/db"
	"github.com/jonathan/candidate-intake/internal/types"
	"github.com/jonathan/candidate-intake/internal/validation"
)

const serviceName = "CandidateService"

const (
	opLookup = "lookup"
	opInsert = "insert"
	opUpdate = "update"
)

// Validator checks a submission. A rule violation is reported as a
// *validation.Error; any other error is treated as operational.
type Validator interface {
	Check(input types.CandidateInput) error
}

// Service saves candidate submissions.
type Service struct {
	store     db.CandidateStore
	cache     cache.CandidateCache
	validator Validator
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
	locks     *keyedMutex
	meters    metric.MeterProvider
	metrics   *serviceMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator for new record IDs.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithMeterProvider sets where service counters are recorded.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		if mp != nil {
			s.meters = mp
		}
	}
}

// NewService creates a Service over the given store, cache and validator.
func NewService(store db.CandidateStore, c cache.CandidateCache, validator Validator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		cache:     c,
		validator: validator,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.New,
		locks:     newKeyedMutex(),
		meters:    otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newServiceMetrics(s.meters)
	return s
}

// SubmitCandidate validates input and creates or updates the record for its
// email. Failures are reported in the result, never as a returned error.
func (s *Service) SubmitCandidate(ctx context.Context, input types.CandidateInput) types.OperationResult[types.CandidateInput] {
	log := s.logger.With(
		slog.String("service", serviceName),
		slog.String("method", "SubmitCandidate"),
	)
	log.Info("Starting the execution of the method.")
	result := types.NewOperationResult[types.CandidateInput]()

	log.Debug("Beginning the validation process for the incoming data.")
	if err := s.validator.Check(input); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			log.Error("An exception occurred during method execution.", slog.Any("error", err))
			result.Fail(types.KindOperational, err.Error())
			s.metrics.recordSubmission(ctx, "error")
			return result
		}
		log.Warn("Validation process failed for the incoming data.", slog.Any("errors", verr.Messages))
		result.Fail(types.KindValidation, verr.Messages...)
		s.metrics.recordSubmission(ctx, "invalid")
		return result
	}

	saved, err := s.upsert(ctx, log, input)
	if err != nil {
		log.Error("An exception occurred during method execution.", slog.Any("error", err))
		result.Fail(types.KindOperational, err.Error())
		s.metrics.recordSubmission(ctx, "error")
		return result
	}

	echoed := toInput(saved)
	result.Result = &echoed
	result.Message = types.MsgCandidateSaved
	log.Info("The method executed successfully. Results are ready for processing.")
	s.metrics.recordSubmission(ctx, "saved")
	return result
}

func (s *Service) upsert(ctx context.Context, log *slog.Logger, input types.CandidateInput) (db.Candidate, error) {
	key := db.NormalizeEmail(input.Email)
	unlock := s.locks.Lock(key)
	defer unlock()

	// PostgreSQL keeps microseconds; the cached copy must match the stored row.
	now := s.now().UTC().Truncate(time.Microsecond)

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.recordCacheLookup(ctx, true)
		log.Debug("Candidate found in cache", slog.String("key", key))
		applyInput(&cached, input, now)
		if err := s.write(ctx, log, opUpdate, &cached); err != nil {
			// The cached entry no longer matches what was stored.
			s.cache.Delete(key)
			return db.Candidate{}, err
		}
		s.cache.Set(key, cached)
		return cached, nil
	}
	s.metrics.recordCacheLookup(ctx, false)
	log.Debug("Candidate not cached, querying store", slog.String("key", key))

	existing, err := s.lookup(ctx, log, key)
	if err != nil {
		return db.Candidate{}, err
	}

	if existing == nil {
		record := db.Candidate{
			ID:        s.newID(),
			Email:     strings.TrimSpace(input.Email),
			CreatedAt: now,
		}
		applyInput(&record, input, now)

		err := s.write(ctx, log, opInsert, &record)
		if err == nil {
			s.cache.Set(key, record)
			return record, nil
		}
		if !errors.Is(err, db.ErrDuplicateEmail) {
			return db.Candidate{}, err
		}

		log.Info("Candidate was inserted concurrently, updating the existing record", slog.String("key", key))
		existing, err = s.lookup(ctx, log, key)
		if err != nil {
			return db.Candidate{}, err
		}
		if existing == nil {
			return db.Candidate{}, &OperationalError{
				Op:  opLookup,
				Err: fmt.Errorf("failed to resolve duplicate candidate %s: %w", input.Email, db.ErrCandidateNotFound),
			}
		}
	}

	applyInput(existing, input, now)
	if err := s.write(ctx, log, opUpdate, existing); err != nil {
		return db.Candidate{}, err
	}
	s.cache.Set(key, *existing)
	return *existing, nil
}

func (s *Service) lookup(ctx context.Context, log *slog.Logger, key string) (*db.Candidate, error) {
	log.Debug("Starting the database operation", slog.String("operation", opLookup))
	c, err := s.store.GetCandidateByEmail(ctx, key)
	if err != nil {
		return nil, &OperationalError{Op: opLookup, Err: err}
	}
	return c, nil
}

func (s *Service) write(ctx context.Context, log *slog.Logger, op string, c *db.Candidate) error {
	log.Debug("Starting the database operation", slog.String("operation", op))

	var err error
	if op == opInsert {
		err = s.store.CreateCandidate(ctx, c)
	} else {
		err = s.store.UpdateCandidate(ctx, c)
	}
	if err != nil {
		return &OperationalError{Op: op, Err: err}
	}
	s.metrics.recordStoreWrite(ctx, op)
	return nil
}

// applyInput overwrites the mutable fields of c. ID, Email and CreatedAt are kept.
func applyInput(c *db.Candidate, input types.CandidateInput, now time.Time) {
	c.FirstName = input.FirstName
	c.LastName = input.LastName
	c.PhoneNumber = input.PhoneNumber
	c.BestCallTime = input.BestCallTime
	c.LinkedInURL = input.LinkedInURL
	c.GitHubURL = input.GitHubURL
	c.Comment = input.Comment
	c.UpdatedAt = now
}

func toInput(c db.Candidate) types.CandidateInput {
	return types.CandidateInput{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		PhoneNumber:  c.PhoneNumber,
		Email:        c.Email,
		BestCallTime: c.BestCallTime,
		LinkedInURL:  c.LinkedInURL,
		GitHubURL:    c.GitHubURL,
		Comment:      c.Comment,
	}
}
