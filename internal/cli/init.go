// Package cli provides common initialization shared by cmd/ledger and
// cmd/ledger-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// SetupLogger builds the application logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error; variables already set in the environment win.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return cfg, nil
}

var errInvalidConfig = errors.New("invalid configuration")

// InitStore opens the configured database and binds a LedgerStore to it.
// The returned close func releases the handle; the store itself never does.
func InitStore(ctx context.Context, cfg *config.Config, logger *log.Logger, reg prometheus.Registerer) (*storage.LedgerStore, func() error, error) {
	db, err := storage.Open(cfg.DBDriver, cfg.DBDSN)(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	opts := []storage.Option{storage.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, storage.WithMetrics(storage.NewMetrics(reg)))
	}

	store := storage.NewLedgerStore(opts...)
	if !store.Init(ctx, storage.Use(db)) {
		db.Close()
		return nil, nil, errors.New("ledger store initialization failed")
	}
	return store, db.Close, nil
}

// InitPublisher connects to the broker when AMQP is configured. It returns
// nil without error when it is not.
func InitPublisher(cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, fmt.Errorf("connect AMQP: %w", err)
	}
	return client, nil
}
