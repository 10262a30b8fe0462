package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	lognoop "go.opentelemetry.io/otel/log/noop"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func resetGlobalProviders(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		global.SetLoggerProvider(lognoop.NewLoggerProvider())
	})
}

func TestSetupTelemetry_Disabled(t *testing.T) {
	resetGlobalProviders(t)
	before := otel.GetMeterProvider()

	shutdown, err := SetupTelemetry(context.Background(), TelemetryOptions{ServiceName: "candidate_api"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.Equal(t, before, otel.GetMeterProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTelemetry_InstallsProviders(t *testing.T) {
	resetGlobalProviders(t)

	var metricPosts, logPosts atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/metrics":
			metricPosts.Add(1)
		case "/v1/logs":
			logPosts.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", collector.URL)

	ctx := context.Background()
	shutdown, err := SetupTelemetry(ctx, TelemetryOptions{Logs: true, Metrics: true, ServiceName: "candidate_api"})
	require.NoError(t, err)

	_, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok, "meter provider is %T", otel.GetMeterProvider())
	_, ok = global.GetLoggerProvider().(*sdklog.LoggerProvider)
	assert.True(t, ok, "logger provider is %T", global.GetLoggerProvider())

	counter, err := otel.Meter("test").Int64Counter("candidate.test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	logger, err := NewLogger(LogOptions{OTLP: true, ServiceName: "candidate_api", Output: io.Discard})
	require.NoError(t, err)
	logger.Info("exported record")

	require.NoError(t, shutdown(ctx))
	assert.Positive(t, metricPosts.Load())
	assert.Positive(t, logPosts.Load())
}
