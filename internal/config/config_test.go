package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-intake/internal/db"
)

// clearEnv unsets variables that would leak into Load from the host.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL",
		"CANDIDATE_SERVER_PORT",
		"CANDIDATE_DATABASE_PROVIDER",
		"CANDIDATE_DATABASE_POSTGRES_URL",
		"CANDIDATE_DATABASE_LIBPQ_URL",
		"CANDIDATE_DATABASE_SQLITE_PATH",
		"CANDIDATE_DATABASE_MIGRATE_ON_START",
		"CANDIDATE_CACHE_TTL",
		"CANDIDATE_CACHE_CAPACITY",
		"CANDIDATE_LOG_LEVEL",
		"CANDIDATE_LOG_FORMAT",
		"CANDIDATE_TELEMETRY_OTLP_LOGS",
		"CANDIDATE_TELEMETRY_OTLP_METRICS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, db.ProviderPostgres, cfg.Database.Provider)
	assert.Equal(t, "candidates.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0, cfg.Cache.Capacity)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.OTLPLogs)
	assert.False(t, cfg.Telemetry.OTLPMetrics)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CANDIDATE_SERVER_PORT", "9090")
	t.Setenv("CANDIDATE_DATABASE_PROVIDER", "sqlite")
	t.Setenv("CANDIDATE_DATABASE_SQLITE_PATH", "/tmp/c.db")
	t.Setenv("CANDIDATE_CACHE_TTL", "90s")
	t.Setenv("CANDIDATE_LOG_FORMAT", "json")
	t.Setenv("CANDIDATE_DATABASE_MIGRATE_ON_START", "false")
	t.Setenv("CANDIDATE_TELEMETRY_OTLP_METRICS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, db.ProviderSQLite, cfg.Database.Provider)
	assert.Equal(t, "/tmp/c.db", cfg.Database.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Database.MigrateOnStart)
	assert.True(t, cfg.Telemetry.OTLPMetrics)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/candidates")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/candidates", cfg.Database.PostgresURL)

	t.Setenv("CANDIDATE_DATABASE_POSTGRES_URL", "postgres://override/candidates")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://override/candidates", cfg.Database.PostgresURL)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	content := `
server:
  port: 7070
database:
  provider: memory
cache:
  ttl: 1m
  capacity: 500
`
	path := filepath.Join(t.TempDir(), "candidate_api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("CANDIDATE_SERVER_PORT", "6060")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port, "environment wins over file")
	assert.Equal(t, db.ProviderMemory, cfg.Database.Provider)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 500, cfg.Cache.Capacity)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/candidate_api.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	cfg.Database.Provider = "cosmosdb"
	cfg.Cache.TTL = 0
	cfg.Cache.Capacity = -1
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "6 errors occurred")
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "database provider not configured correctly")
	assert.Contains(t, msg, "cache.ttl")
	assert.Contains(t, msg, "cache.capacity")
	assert.Contains(t, msg, "log.level")
	assert.Contains(t, msg, "log.format")
}

func TestValidate_ProviderConnectionStrings(t *testing.T) {
	tests := []struct {
		provider string
		mutate   func(*Config)
		wantErr  string
	}{
		{db.ProviderPostgres, func(c *Config) {}, "database.postgres_url"},
		{db.ProviderLibPQ, func(c *Config) {}, "database.libpq_url"},
		{db.ProviderSQLite, func(c *Config) { c.Database.SQLitePath = "" }, "database.sqlite_path"},
		{db.ProviderMemory, func(c *Config) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Default()
			cfg.Database.Provider = tt.provider
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreConfigAndLogOptions(t *testing.T) {
	cfg := Default()
	cfg.Database.PostgresURL = "postgres://x"
	cfg.Telemetry.OTLPLogs = true

	sc := cfg.StoreConfig()
	assert.Equal(t, db.ProviderPostgres, sc.Provider)
	assert.Equal(t, "postgres://x", sc.PostgresURL)
	assert.True(t, sc.MigrateOnStart)

	lo := cfg.LogOptions()
	assert.True(t, lo.OTLP)
	assert.Equal(t, "candidate_api", lo.ServiceName)

	cfg.Telemetry.OTLPMetrics = true
	to := cfg.TelemetryOptions()
	assert.True(t, to.Logs)
	assert.True(t, to.Metrics)
	assert.Equal(t, "candidate_api", to.ServiceName)

	summary := cfg.Summary()
	assert.Equal(t, "8080", summary["server.port"])
	assert.Equal(t, "5m0s", summary["cache.ttl"])
	for _, k := range SecretKeys {
		assert.Contains(t, summary, k)
	}
}
