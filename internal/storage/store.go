// Package storage persists bills in a single relational table and answers
// listing and aggregation queries over it.
//
// Every public operation on LedgerStore absorbs failures: it logs them and
// returns the operation's "nothing happened" value (-1, false, an empty
// slice or zero totals). The Err-suffixed variants return the same results
// together with an error from the taxonomy in errors.go.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ledger/internal/log"
)

const tracerName = "ledger/internal/storage"

// LedgerStore wraps the bill table on an explicitly owned store handle.
type LedgerStore struct {
	mu      sync.Mutex
	db      *sqlx.DB
	dialect dialect

	logger  *log.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*LedgerStore)

func WithLogger(logger *log.Logger) Option {
	return func(s *LedgerStore) {
		if logger != nil {
			s.logger = logger.WithComponent(log.ComponentStorage)
		}
	}
}

// WithMetrics records operation counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(s *LedgerStore) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *LedgerStore) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewLedgerStore returns an unbound store. Call Init before use; until then
// every operation reports its failure value.
func NewLedgerStore(opts ...Option) *LedgerStore {
	s := &LedgerStore{
		logger: log.Default(log.ComponentStorage),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init binds the store to the handle produced by open and bootstraps the
// schema. A second call on a bound store returns true without reopening.
// Open failures are logged and reported as false.
func (s *LedgerStore) Init(ctx context.Context, open Opener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return true
	}

	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "LedgerStore.init")
	defer span.End()

	if open == nil {
		s.logger.ErrorContext(ctx, "Database initialization failed", log.FieldError, "nil opener")
		span.SetStatus(codes.Error, "nil opener")
		return false
	}

	db, err := open(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Database initialization failed", log.FieldError, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false
	}

	d, err := dialectFor(db.DriverName())
	if err != nil {
		s.logger.ErrorContext(ctx, "Database initialization failed", log.FieldError, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false
	}

	s.db = db
	s.dialect = d

	// A bootstrap failure does not undo the bind; operations that need the
	// table fail at the store instead.
	_ = s.ensureSchema(ctx, db, d)

	s.logger.InfoContext(ctx, "Database initialized", log.FieldDriver, d.name)
	return true
}

// Bound reports whether Init has succeeded.
func (s *LedgerStore) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

func (s *LedgerStore) handle() (*sqlx.DB, dialect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, dialect{}, ErrNotInitialized
	}
	return s.db, s.dialect, nil
}

// begin starts the span and timer for op. The returned context no longer
// carries the caller's cancellation: once issued, a store call runs to
// completion or failure.
func (s *LedgerStore) begin(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "LedgerStore."+op,
		trace.WithAttributes(attribute.String("db.operation", op), attribute.String("db.sql.table", tableName)))
	start := time.Now()

	return ctx, func(err error) {
		s.metrics.observe(op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (s *LedgerStore) logFailure(ctx context.Context, op string, err error, args ...any) {
	fields := log.NewFields().WithOperation(op).WithError(err).WithErrorType(errorType(err))
	s.logger.ErrorContext(ctx, "Ledger operation failed", append(fields.ToSlice(), args...)...)
}
