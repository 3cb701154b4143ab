package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ledger/internal/log"
)

var (
	// ErrNotInitialized is returned when an operation runs before Init bound a handle.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrConstraint is returned when the store rejects a write, e.g. an unknown bill type.
	ErrConstraint = errors.New("constraint violation")
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("bill not found")
	// ErrInvalidArgument is returned for options the store cannot turn into a query.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStore wraps any other driver or I/O failure.
	ErrStore = errors.New("store fault")
)

// classify maps a driver error onto the store's error taxonomy, keeping the
// original error in the chain.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case isConstraintViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
	}
}

func isConstraintViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended result codes keep the primary code in the low byte.
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	return false
}

// errorType names the taxonomy bucket of err for logs and metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return log.ErrorTypeNotInitialized
	case errors.Is(err, ErrConstraint):
		return log.ErrorTypeConstraint
	case errors.Is(err, ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeDatabase
	}
}
