// Command ledger records bills and prints ledger reports as JSON.
//
// Usage:
//
//	ledger add -date 2025-01-31 -type expense -category Food -amount 12.50
//	ledger update -id 3 -amount 14
//	ledger delete -id 3
//	ledger get -id 3
//	ledger list [-type income|expense] [-start DATE] [-end DATE] [-sort date|amount] [-order asc|desc]
//	ledger totals [-start DATE] [-end DATE]
//	ledger categories -type expense [-start DATE] [-end DATE]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ledger/internal/cli"
	"ledger/internal/services"
)

func main() {
	// Load .env file for local development
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, stderr)

	store, closeDB, err := cli.InitStore(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeDB()

	var publisher services.EventPublisher
	client, err := cli.InitPublisher(cfg, logger)
	if err != nil {
		// Events are best effort; the write still happens.
		logger.Warn("Continuing without event publishing", "error", err)
	} else if client != nil {
		publisher = client
	}

	svc := services.NewLedgerService(store, publisher, logger)
	defer svc.Close()

	return cmd(ctx, svc, args[1:], stdout, stderr)
}
