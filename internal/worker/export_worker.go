package worker

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// ExportWorker mirrors ledger changes into a BillSheet.
type ExportWorker struct {
	store  *storage.LedgerStore
	sheet  sheets.BillSheet
	dedup  *cache.Dedup
	logger *log.Logger
}

type Option func(*ExportWorker)

// WithDedup skips events whose id was already handled successfully.
func WithDedup(d *cache.Dedup) Option {
	return func(w *ExportWorker) { w.dedup = d }
}

func NewExportWorker(store *storage.LedgerStore, sheet sheets.BillSheet, logger *log.Logger, opts ...Option) *ExportWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	w := &ExportWorker{
		store:  store,
		sheet:  sheet,
		logger: logger.WithComponent(log.ComponentWorker),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleEvent processes a single bill event from AMQP. A returned error
// requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *amqp.BillEvent) (err error) {
	if w.dedup != nil && e.ID != "" {
		if !w.dedup.Claim(e.ID) {
			w.logger.InfoContext(ctx, "Skipping duplicate bill event", log.FieldEventID, e.ID, log.FieldBillID, e.BillID)
			return nil
		}
		defer func() {
			if err != nil {
				w.dedup.Release(e.ID)
			}
		}()
	}

	w.logger.InfoContext(ctx, "Processing bill event",
		log.FieldEventID, e.ID,
		log.FieldEventKind, e.Kind,
		log.FieldBillID, e.BillID)

	switch e.Kind {
	case amqp.BillCreated, amqp.BillUpdated:
		return w.export(ctx, e)
	case amqp.BillDeleted:
		return w.remove(ctx, e)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event kind", log.FieldEventKind, e.Kind, log.FieldEventID, e.ID)
		return nil
	}
}

func (w *ExportWorker) export(ctx context.Context, e *amqp.BillEvent) error {
	rec, err := w.store.GetByIDErr(ctx, e.BillID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before we got here; the delete event clears the row.
		w.logger.InfoContext(ctx, "Bill no longer exists, skipping export",
			log.FieldBillID, e.BillID, log.FieldEventID, e.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get bill %d: %w", e.BillID, err)
	}

	ref, err := w.sheet.UpsertBill(ctx, rec)
	if err != nil {
		return fmt.Errorf("export bill %d: %w", e.BillID, err)
	}

	w.logger.InfoContext(ctx, "Exported bill",
		log.FieldBillID, rec.ID,
		log.FieldSheetsRef, ref,
		log.FieldBillType, rec.Type.String(),
		log.FieldAmount, rec.Amount)
	return nil
}

func (w *ExportWorker) remove(ctx context.Context, e *amqp.BillEvent) error {
	removed, err := w.sheet.RemoveBill(ctx, e.BillID)
	if err != nil {
		return fmt.Errorf("remove bill %d: %w", e.BillID, err)
	}
	if !removed {
		w.logger.InfoContext(ctx, "No sheet row for deleted bill", log.FieldBillID, e.BillID)
		return nil
	}
	w.logger.InfoContext(ctx, "Removed bill from sheet", log.FieldBillID, e.BillID)
	return nil
}

// Resync exports every bill in r. It recovers rows for events lost while the
// worker was down. Failures are counted and logged; the first one is returned
// after the pass completes.
func (w *ExportWorker) Resync(ctx context.Context, r core.DateRange) (int, error) {
	bills, err := w.store.ListBillsErr(ctx, core.ListOptions{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		SortBy:    core.SortByDate,
		SortOrder: core.Asc,
	})
	if err != nil {
		return 0, fmt.Errorf("list bills for resync: %w", err)
	}

	var firstErr error
	synced := 0
	for _, rec := range bills {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if _, err := w.sheet.UpsertBill(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export bill during resync",
				log.FieldBillID, rec.ID, log.FieldError, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("export bill %d: %w", rec.ID, err)
			}
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		log.FieldCount, len(bills),
		"synced", synced,
		"errors", len(bills)-synced)

	return synced, firstErr
}
