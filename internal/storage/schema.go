package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ledger/internal/core"
	"ledger/internal/log"
)

const (
	tableName = "bill"

	colID       = "bill_id"
	colDate     = "date"
	colType     = "type"
	colCategory = "category"
	colAmount   = "amount"
	colRemark   = "remark"
)

var typeCheck = fmt.Sprintf("CHECK (type IN ('%s', '%s'))", core.Income, core.Expense)

// AUTOINCREMENT keeps sqlite from handing out the id of a deleted max row again.
var sqliteCreateTable = `
CREATE TABLE IF NOT EXISTS bill (
    bill_id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    type TEXT ` + typeCheck + `,
    category TEXT,
    amount REAL,
    remark TEXT
)`

var postgresCreateTable = `
CREATE TABLE IF NOT EXISTS bill (
    bill_id BIGSERIAL PRIMARY KEY,
    date TEXT NOT NULL,
    type TEXT ` + typeCheck + `,
    category TEXT,
    amount DOUBLE PRECISION,
    remark TEXT
)`

const createDateIndex = `CREATE INDEX IF NOT EXISTS idx_bill_date ON bill (date)`

// EnsureSchema creates the bill table if it does not exist. It is safe to call
// on every startup.
func (s *LedgerStore) EnsureSchema(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, log.OpEnsureSchema)
	defer func() { done(err) }()

	db, d, err := s.handle()
	if err != nil {
		return err
	}
	return s.ensureSchema(ctx, db, d)
}

func (s *LedgerStore) ensureSchema(ctx context.Context, db *sqlx.DB, d dialect) error {
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create bill table", log.FieldDriver, d.name, log.FieldError, err)
		return classify("create bill table", err)
	}
	if _, err := db.ExecContext(ctx, createDateIndex); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create bill date index", log.FieldDriver, d.name, log.FieldError, err)
		return classify("create bill date index", err)
	}
	s.logger.InfoContext(ctx, "Bill table ready", log.FieldDriver, d.name)
	return nil
}
