/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the net-worth planner server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, TOML, .env, PLANNER_* environment)
  3. Build the logger
  4. Open the plan store (SQLite or memory)
  5. Ensure the default plan exists, optionally seeding a demo scenario
  6. Serve HTTP until SIGINT/SIGTERM

COMMAND-LINE FLAGS:
  -config  TOML config file (default: planner.toml, skipped when missing)
  -env     .env file (default: .env, skipped when missing)
  -port    Overrides server.port
  -db      Overrides storage.path; ":memory:" keeps SQLite in memory
  -seed    Overrides plans.seed_scenario

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/planner.db"

  # Throwaway server with a demo plan
  PLANNER_STORAGE_DRIVER=memory ./server -seed=household

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Moserpilot/Finance-Planner-2/api"
	"github.com/Moserpilot/Finance-Planner-2/config"
	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/logging"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/planner/store"
	"github.com/Moserpilot/Finance-Planner-2/store/sqlite"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Flags
	configPath := flag.String("config", "planner.toml", "TOML config file")
	envPath := flag.String("env", ".env", "Dotenv file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	seed := flag.String("seed", "", "Demo scenario to load into the default plan (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *seed != "" {
		cfg.Plans.SeedScenario = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	plans, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer plans.Close()
	logger.Info().Str("driver", cfg.Storage.Driver).Str("path", cfg.Storage.Path).Msg("store opened")

	svc := planner.NewService(plans, logger)
	handler := api.NewHandler(svc, logger, cfg.Plans.DefaultID)

	if err := ensureDefaultPlan(ctx, svc, cfg.Plans.DefaultID, logger); err != nil {
		return err
	}
	if cfg.Plans.SeedScenario != "" {
		if _, err := handler.SeedScenario(ctx, cfg.Plans.DefaultID, cfg.Plans.SeedScenario); err != nil {
			return fmt.Errorf("failed to seed scenario %s: %w", cfg.Plans.SeedScenario, err)
		}
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func openStore(cfg config.StorageConfig) (planner.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return s, nil
	}
}

// ensureDefaultPlan creates an empty plan under id on first start.
func ensureDefaultPlan(ctx context.Context, svc *planner.Service, id string, logger *log.Logger) error {
	_, err := svc.Get(ctx, id)
	if !planner.IsNotFound(err) {
		return err
	}
	if _, err := svc.Create(ctx, id, document.New()); err != nil && !planner.IsConflict(err) {
		return fmt.Errorf("failed to create default plan: %w", err)
	}
	logger.Info().Str("plan_id", id).Msg("default plan created")
	return nil
}
