package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// EventPublisher announces ledger mutations. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishBillEvent(ctx context.Context, e *amqp.BillEvent) error
}

// LedgerService validates input before it reaches the store and announces
// successful writes to an optional publisher.
type LedgerService struct {
	store     *storage.LedgerStore
	publisher EventPublisher
	logger    *log.Logger
}

// NewLedgerService returns a service over a bound store. publisher may be nil.
func NewLedgerService(store *storage.LedgerStore, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// AddBill saves a bill and publishes bill.created.
func (s *LedgerService) AddBill(ctx context.Context, b core.Bill) (int64, error) {
	if err := b.Validate(); err != nil {
		return -1, fmt.Errorf("%w: %w", storage.ErrInvalidArgument, err)
	}

	id, err := s.store.InsertErr(ctx, b)
	if err != nil {
		return -1, fmt.Errorf("save bill: %w", err)
	}

	s.publish(ctx, amqp.BillCreated, id)
	return id, nil
}

// UpdateBill applies patch and publishes bill.updated when a row changed.
func (s *LedgerService) UpdateBill(ctx context.Context, id int64, patch core.BillPatch) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", storage.ErrInvalidArgument, err)
	}

	updated, err := s.store.UpdateErr(ctx, id, patch)
	if err != nil {
		return false, fmt.Errorf("update bill %d: %w", id, err)
	}
	if updated {
		s.publish(ctx, amqp.BillUpdated, id)
	}
	return updated, nil
}

// DeleteBill removes a bill and publishes bill.deleted when a row was removed.
func (s *LedgerService) DeleteBill(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteErr(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete bill %d: %w", id, err)
	}
	if deleted {
		s.publish(ctx, amqp.BillDeleted, id)
	}
	return deleted, nil
}

func (s *LedgerService) GetBill(ctx context.Context, id int64) (core.BillRecord, error) {
	return s.store.GetByIDErr(ctx, id)
}

func (s *LedgerService) ListBills(ctx context.Context, opts core.ListOptions) ([]core.BillRecord, error) {
	if err := validateRange(opts.Range()); err != nil {
		return []core.BillRecord{}, err
	}
	return s.store.ListBillsErr(ctx, opts)
}

func (s *LedgerService) Totals(ctx context.Context, r core.DateRange) (core.Totals, error) {
	if err := validateRange(r); err != nil {
		return core.Totals{}, err
	}
	return s.store.TotalsErr(ctx, r)
}

func (s *LedgerService) CategoryTotals(ctx context.Context, t core.BillType, r core.DateRange) ([]core.CategoryTotal, error) {
	if err := validateRange(r); err != nil {
		return []core.CategoryTotal{}, err
	}
	return s.store.CategoryTotalsErr(ctx, t, r)
}

// validateRange rejects malformed bounds that would otherwise compare as
// plain strings.
func validateRange(r core.DateRange) error {
	for _, d := range []string{r.StartDate, r.EndDate} {
		if d == "" {
			continue
		}
		if err := core.ValidateDate(d); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidArgument, err)
		}
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping event",
			log.FieldEventKind, kind, log.FieldBillID, id)
		return
	}

	e := amqp.NewBillEvent(kind, id)
	if err := s.publisher.PublishBillEvent(ctx, e); err != nil {
		// The write already succeeded; a lost event is only logged.
		s.logger.ErrorContext(ctx, "Failed to publish bill event",
			log.FieldEventID, e.ID, log.FieldEventKind, kind, log.FieldBillID, id,
			log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork)
	}
}

// Close releases the publisher when it owns a connection. The store handle is
// owned by whoever bound it.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	return errors.Join(errs...)
}
