package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ammCore/internal/config"
	"ammCore/internal/engine"
	"ammCore/internal/storage"
	"ammCore/internal/storage/memory"
	"ammCore/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "amm",
		Short:        "Two-asset constant-product pool engine",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("store", config.StoreFile, "state backend (memory, file, postgres)")
	flags.String("state-file", "./data/state.json", "snapshot path for the file store")
	flags.String("pg-dsn", "", "Postgres DSN for the postgres store")
	flags.String("journal", "./data/journal.jsonl", "operation journal JSONL path, empty to disable")
	flags.Int("max-retries", 5, "postgres connect attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial postgres connect backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPoolCmd(),
		newLiquidityCmd(),
		newSwapCmd(),
		newQuoteCmd(),
		newCreditCmd(),
		newBalanceCmd(),
		newMigrateCmd(),
		newStatsCmd(),
	)
	return root
}

// session is the state every engine-backed command needs.
type session struct {
	ctx    context.Context
	cfg    config.Config
	logger *zap.Logger
	store  storage.Store
	engine *engine.Engine
	close  func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		stop()
		_ = logger.Sync()
		return nil, err
	}

	var journal storage.Journal = storage.NopJournal{}
	if cfg.Journal != "" {
		journal = storage.NewJsonlJournal(cfg.Journal)
	}

	logger.Debug("session open",
		zap.String("store", cfg.Store),
		zap.String("state_file", cfg.StateFile),
		zap.String("journal", cfg.Journal),
	)

	return &session{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: engine.New(store, journal, logger),
		close: func() {
			store.Close()
			stop()
			_ = logger.Sync()
		},
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreFile:
		return memory.Open(cfg.StateFile)
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN, postgres.Options{
			ConnectAttempts: cfg.MaxRetries,
			ConnectBackoff:  cfg.RetryBackoff,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
