/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bookkeeping API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment), then apply flag overrides
  2. Initialize SQLite store
  3. Seed an empty store from a ledger file, if configured
  4. Create API handler and warm the replay cache
  5. Start the ledger sync when a seed file and interval are set
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port      HTTP server port (BOOKS_PORT, default: 8080)
  -db        SQLite database path (BOOKS_DB, default: books.db)
             Use ":memory:" for in-memory database
  -seed      Ledger file loaded when the store is empty (BOOKS_SEED)
  -sync      How often the seed file is re-imported when it changes
             (BOOKS_SYNC_INTERVAL, e.g. 30s; 0 disables)
  -currency  Default currency code (BOOKS_CURRENCY, default: USD)
  -log-level zerolog level (LOG_LEVEL, default: info)
  -env       Path to a .env file (default: ./.env if present)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the ledger sync
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment configuration
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
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/bookkeeping/api"
	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/config"
	"github.com/warp/bookkeeping/factory"
	"github.com/warp/bookkeeping/logger"
	"github.com/warp/bookkeeping/store/sqlite"
)

func main() {
	envFile := flag.String("env", "", "Path to a .env file")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	seed := flag.String("seed", "", "Ledger file loaded into an empty database")
	syncInterval := flag.Duration("sync", -1, "Seed file sync interval (0 disables)")
	currency := flag.String("currency", "", "Default currency code")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *seed != "" {
		cfg.SeedFile = *seed
	}
	if *syncInterval >= 0 {
		cfg.SyncInterval = *syncInterval
	}
	if *currency != "" {
		cfg.Currency = strings.ToUpper(*currency)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel)
	books.DefaultCurrency = cfg.Currency

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	ctx := context.Background()
	if cfg.SeedFile != "" {
		if err := seedStore(ctx, store, cfg.SeedFile, log); err != nil {
			log.Fatal().Err(err).Str("seed", cfg.SeedFile).Msg("failed to seed database")
		}
	}

	handler := api.NewHandler(store, log, cfg.Currency)
	if err := handler.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load records")
	}

	var ledgerSync *api.LedgerSync
	if cfg.SeedFile != "" && cfg.SyncInterval > 0 {
		ledgerSync = api.NewLedgerSync(handler, cfg.SeedFile, cfg.SyncInterval)
		ledgerSync.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if ledgerSync != nil {
		ledgerSync.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server stopped")
}

// seedStore loads a ledger file, but only into an empty store.
func seedStore(ctx context.Context, store *sqlite.Store, path string, log zerolog.Logger) error {
	current, err := store.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(current.Accounts) > 0 || len(current.Transactions) > 0 {
		log.Info().Str("seed", path).Msg("database not empty, skipping seed")
		return nil
	}

	snap, err := factory.LoadLedger(path)
	if err != nil {
		return err
	}
	if err := books.LoadSnapshot(ctx, store, snap); err != nil {
		return err
	}
	log.Info().
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.Transactions)).
		Msg("database seeded")
	return nil
}
