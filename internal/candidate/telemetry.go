package candidate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jonathan/candidate-intake/internal/candidate"

type serviceMetrics struct {
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	storeWrites metric.Int64Counter
	submissions metric.Int64Counter
}

func newServiceMetrics(mp metric.MeterProvider) *serviceMetrics {
	meter := mp.Meter(meterName)
	m := &serviceMetrics{}

	var err error
	m.cacheHits, err = meter.Int64Counter(
		"candidate.cache.hits",
		metric.WithDescription("Number of submissions served from a cached record"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create candidate.cache.hits counter: %w", err))
	}

	m.cacheMisses, err = meter.Int64Counter(
		"candidate.cache.misses",
		metric.WithDescription("Number of submissions that fell through to the store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create candidate.cache.misses counter: %w", err))
	}

	m.storeWrites, err = meter.Int64Counter(
		"candidate.store.writes",
		metric.WithDescription("Number of store writes by operation (insert or update)"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create candidate.store.writes counter: %w", err))
	}

	m.submissions, err = meter.Int64Counter(
		"candidate.submissions",
		metric.WithDescription("Number of candidate submissions by outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create candidate.submissions counter: %w", err))
	}

	return m
}

func (m *serviceMetrics) recordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

func (m *serviceMetrics) recordStoreWrite(ctx context.Context, op string) {
	m.storeWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *serviceMetrics) recordSubmission(ctx context.Context, outcome string) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
