// Package config provides configuration loading and validation for the candidate API.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/jonathan/candidate-intake/internal/db"
	"github.com/jonathan/candidate-intake/internal/observability"
)

// EnvPrefix prefixes every environment variable, e.g. CANDIDATE_SERVER_PORT.
const EnvPrefix = "CANDIDATE"

// Config aggregates configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Provider       string `mapstructure:"provider"`
	PostgresURL    string `mapstructure:"postgres_url"`
	LibPQURL       string `mapstructure:"libpq_url"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	OTLPLogs    bool   `mapstructure:"otlp_logs"`
	OTLPMetrics bool   `mapstructure:"otlp_metrics"`
	ServiceName string `mapstructure:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Provider:       db.ProviderPostgres,
			SQLitePath:     "candidates.db",
			MigrateOnStart: true,
		},
		Cache: CacheConfig{TTL: 5 * time.Minute},
		Log:   LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{
			ServiceName: "candidate_api",
		},
	}
}

// Load reads configuration from an optional file and the environment.
// An explicit path must exist; otherwise ./candidate_api.{yaml,json,toml}
// is used when present. Environment variables use the CANDIDATE prefix with
// dots replaced by underscores, so "database.provider" becomes
// CANDIDATE_DATABASE_PROVIDER. DATABASE_URL is honoured when no postgres
// URL is configured.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("candidate_api")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Database.PostgresURL == "" {
		cfg.Database.PostgresURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string{}, parts...), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port))
	}

	switch c.Database.Provider {
	case db.ProviderPostgres:
		if c.Database.PostgresURL == "" {
			errs = multierror.Append(errs, errors.New("database.postgres_url (or DATABASE_URL) is required for the postgres provider"))
		}
	case db.ProviderLibPQ:
		if c.Database.LibPQURL == "" {
			errs = multierror.Append(errs, errors.New("database.libpq_url is required for the libpq provider"))
		}
	case db.ProviderSQLite:
		if c.Database.SQLitePath == "" {
			errs = multierror.Append(errs, errors.New("database.sqlite_path is required for the sqlite provider"))
		}
	case db.ProviderMemory:
	default:
		errs = multierror.Append(errs, fmt.Errorf("%w: %q", db.ErrUnknownProvider, c.Database.Provider))
	}

	if c.Cache.TTL <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Cache.Capacity < 0 {
		errs = multierror.Append(errs, fmt.Errorf("cache.capacity must be non-negative, got %d", c.Cache.Capacity))
	}

	if _, err := observability.ParseLevel(c.Log.Level); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = multierror.Append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errs.ErrorOrNil()
}

// StoreConfig converts the database section for db.Open.
func (c *Config) StoreConfig() db.Config {
	return db.Config{
		Provider:       c.Database.Provider,
		PostgresURL:    c.Database.PostgresURL,
		LibPQURL:       c.Database.LibPQURL,
		SQLitePath:     c.Database.SQLitePath,
		MigrateOnStart: c.Database.MigrateOnStart,
	}
}

// LogOptions converts the log and telemetry sections for observability.SetupLogging.
func (c *Config) LogOptions() observability.LogOptions {
	return observability.LogOptions{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		OTLP:        c.Telemetry.OTLPLogs,
		ServiceName: c.Telemetry.ServiceName,
	}
}

// TelemetryOptions converts the telemetry section for observability.SetupTelemetry.
func (c *Config) TelemetryOptions() observability.TelemetryOptions {
	return observability.TelemetryOptions{
		Logs:        c.Telemetry.OTLPLogs,
		Metrics:     c.Telemetry.OTLPMetrics,
		ServiceName: c.Telemetry.ServiceName,
	}
}

// Summary returns the effective settings keyed by their config names.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"server.port":               fmt.Sprint(c.Server.Port),
		"database.provider":         c.Database.Provider,
		"database.postgres_url":     c.Database.PostgresURL,
		"database.libpq_url":        c.Database.LibPQURL,
		"database.sqlite_path":      c.Database.SQLitePath,
		"database.migrate_on_start": fmt.Sprint(c.Database.MigrateOnStart),
		"cache.ttl":                 c.Cache.TTL.String(),
		"cache.capacity":            fmt.Sprint(c.Cache.Capacity),
		"log.level":                 c.Log.Level,
		"log.format":                c.Log.Format,
		"telemetry.otlp_logs":       fmt.Sprint(c.Telemetry.OTLPLogs),
		"telemetry.otlp_metrics":    fmt.Sprint(c.Telemetry.OTLPMetrics),
	}
}

// SecretKeys lists Summary keys that carry credentials.
var SecretKeys = []string{"database.postgres_url", "database.libpq_url"}
