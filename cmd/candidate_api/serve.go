package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-intake/internal/cache"
	"github.com/jonathan/candidate-intake/internal/candidate"
	"github.com/jonathan/candidate-intake/internal/config"
	"github.com/jonathan/candidate-intake/internal/db"
	"github.com/jonathan/candidate-intake/internal/observability"
	"github.com/jonathan/candidate-intake/internal/server"
	"github.com/jonathan/candidate-intake/internal/validation"
)

var (
	servePort    int
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts candidate submissions on POST /api/candidate.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print effective settings on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTelemetry, err := observability.SetupTelemetry(cmd.Context(), cfg.TelemetryOptions())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Warn("Failed to shut down OpenTelemetry", slog.Any("error", err))
		}
	}()

	logger, err := observability.SetupLogging(cfg.LogOptions())
	if err != nil {
		return err
	}
	logger.Info("Application Starting up.",
		slog.Int("port", cfg.Server.Port),
		slog.String("provider", cfg.Database.Provider),
	)
	if serveVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSettings("CANDIDATE API SETTINGS", cfg.Summary(), config.SecretKeys...)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Application failed to start", slog.Any("error", err))
		return err
	}
	defer a.close()

	err = a.run(ctx)
	logger.Info("Shut down complete")
	return err
}

// app wires the store, cache, service and HTTP server for one process.
type app struct {
	store  db.Store
	cache  *cache.TTLCache
	server *server.Server
	logger *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := db.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate store: %w", err)
	}

	c := cache.New(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithCapacity(uint64(cfg.Cache.Capacity)),
	)
	svc := candidate.NewService(store, c, validation.NewCandidateValidator(), candidate.WithLogger(logger))
	srv := server.New(server.Config{Port: cfg.Server.Port, Logger: logger}, svc)

	return &app{store: store, cache: c, server: srv, logger: logger}, nil
}

// run serves until ctx is cancelled or the server fails.
func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.cache.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.cache.Stop()
		return nil
	})
	g.Go(func() error {
		return a.server.Run(gctx)
	})

	return g.Wait()
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close candidate store", slog.Any("error", err))
	}
}
