package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// sqlx only knows the cgo driver name "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Opener produces the handle a LedgerStore binds to on Init.
type Opener func(ctx context.Context) (*sqlx.DB, error)

// Open returns an Opener that opens or creates the named database.
// For sqlite the dsn is a file path whose parent directory is created on demand.
func Open(driver, dsn string) Opener {
	return func(ctx context.Context) (*sqlx.DB, error) {
		if _, err := dialectFor(driver); err != nil {
			return nil, err
		}

		if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}

		db, err := sqlx.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		if driver == DriverSQLite {
			// A single connection serialises writers and keeps :memory: databases
			// shared across calls.
			db.SetMaxOpenConns(1)
		}

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		return db, nil
	}
}

// Use returns an Opener for a handle the caller already owns.
func Use(db *sqlx.DB) Opener {
	return func(context.Context) (*sqlx.DB, error) {
		if db == nil {
			return nil, fmt.Errorf("nil database handle")
		}
		return db, nil
	}
}

type dialect struct {
	name        string
	createTable string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{name: DriverSQLite, createTable: sqliteCreateTable}, nil
	case DriverPostgres:
		return dialect{name: DriverPostgres, createTable: postgresCreateTable}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
