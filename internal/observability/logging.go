package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// LogOptions configures SetupLogging.
type LogOptions struct {
	Level       string // debug, info, warn, error
	Format      string // text or json
	OTLP        bool   // also send records through the OpenTelemetry log bridge
	ServiceName string
	Output      io.Writer // defaults to os.Stdout
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger builds the process logger without installing it.
func NewLogger(opts LogOptions) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.OTLP {
		handler = slogmulti.Fanout(handler, otelslog.NewHandler(opts.ServiceName))
	}

	logger := slog.New(handler)
	if opts.ServiceName != "" {
		logger = logger.With(slog.String("app", opts.ServiceName))
	}
	return logger, nil
}

// SetupLogging builds the logger and makes it the slog default.
func SetupLogging(opts LogOptions) (*slog.Logger, error) {
	logger, err := NewLogger(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
