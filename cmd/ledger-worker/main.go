// Command ledger-worker consumes bill events and mirrors the ledger into a
// Google Sheet. It serves /health, /ready and /metrics on METRICS_ADDR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
	"ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second

	// Redeliveries of an already exported event are skipped within this window.
	dedupSize = 10_000
	dedupTTL  = time.Hour
)

func main() {
	resync := flag.Bool("resync", false, "export every bill once before consuming events")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)
	logger.Info("Starting ledger-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *resync); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, resync bool) error {
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required for the worker")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closeDB, err := cli.InitStore(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer closeDB()

	sheet, err := newSheet(ctx, cfg, logger)
	if err != nil {
		return err
	}
	exporter := worker.NewExportWorker(store, sheet, logger,
		worker.WithDedup(cache.NewDedup(dedupSize, dedupTTL)))

	if resync {
		n, err := exporter.Resync(ctx, core.DateRange{})
		if err != nil {
			// Events still flow; a later run can resync again.
			logger.Error("Startup resync incomplete", log.FieldError, err, log.FieldCount, n)
		}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}
	defer client.Close()

	handler := countEvents(reg, exporter.HandleEvent)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.ConsumeBillEvents(gctx, handler)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newRouter(reg, store.Bound),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// newSheet picks Google Sheets when configured and an in-process sheet
// otherwise, which keeps the consumer usable for local runs.
func newSheet(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.BillSheet, error) {
	if !cfg.SheetsEnabled() {
		logger.Warn("Google Sheets disabled - exporting to an in-memory sheet")
		return memory.New(), nil
	}

	client, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		logger.Error("Failed to write sheet header", log.FieldError, err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
