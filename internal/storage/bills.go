package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
)

// billRow is the scan target for a bill table row. Nullable text and real
// columns are coalesced in selectColumns.
type billRow struct {
	ID       int64   `db:"bill_id"`
	Date     string  `db:"date"`
	Type     string  `db:"type"`
	Category string  `db:"category"`
	Amount   float64 `db:"amount"`
	Remark   string  `db:"remark"`
}

const selectColumns = `bill_id, date,
    COALESCE(type, '') AS type,
    COALESCE(category, '') AS category,
    COALESCE(amount, 0) AS amount,
    COALESCE(remark, '') AS remark`

func (r billRow) record() core.BillRecord {
	return core.BillRecord{
		ID: r.ID,
		Bill: core.Bill{
			Date:     r.Date,
			Type:     core.BillType(r.Type),
			Category: r.Category,
			Amount:   r.Amount,
			Remark:   r.Remark,
		},
	}
}

// Insert adds a bill and returns its new id, or -1 if the store is unbound or
// rejects the row.
func (s *LedgerStore) Insert(ctx context.Context, bill core.Bill) int64 {
	id, err := s.InsertErr(ctx, bill)
	if err != nil {
		s.logFailure(ctx, log.OpInsert, err,
			log.NewFields().WithBill(bill.Date, bill.Type.String(), bill.Category, bill.Amount).ToSlice()...)
		return -1
	}
	s.logger.InfoContext(ctx, "Bill added", log.FieldBillID, id, log.FieldBillType, bill.Type.String())
	return id
}

func (s *LedgerStore) InsertErr(ctx context.Context, bill core.Bill) (id int64, err error) {
	ctx, done := s.begin(ctx, log.OpInsert)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return -1, err
	}
	if !core.IsFinite(bill.Amount) {
		return -1, fmt.Errorf("insert bill: %w: %w", ErrInvalidArgument, core.ErrInvalidAmount)
	}

	// RETURNING is supported by both postgres and sqlite >= 3.35.
	query := db.Rebind(`INSERT INTO bill (date, type, category, amount, remark)
        VALUES (?, ?, ?, ?, ?) RETURNING bill_id`)
	err = db.QueryRowxContext(ctx, query,
		bill.Date, string(bill.Type), bill.Category, bill.Amount, bill.Remark,
	).Scan(&id)
	if err != nil {
		return -1, classify("insert bill", err)
	}
	return id, nil
}

// Update writes only the fields set in patch. It reports whether a row with
// the id was modified. An empty patch issues no statement and reports false.
func (s *LedgerStore) Update(ctx context.Context, id int64, patch core.BillPatch) bool {
	updated, err := s.UpdateErr(ctx, id, patch)
	if err != nil {
		s.logFailure(ctx, log.OpUpdate, err, log.FieldBillID, id)
		return false
	}
	s.logger.InfoContext(ctx, "Bill update finished", log.FieldBillID, id, "updated", updated)
	return updated
}

func (s *LedgerStore) UpdateErr(ctx context.Context, id int64, patch core.BillPatch) (updated bool, err error) {
	ctx, done := s.begin(ctx, log.OpUpdate)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		return false, nil
	}
	if patch.Amount != nil && !core.IsFinite(*patch.Amount) {
		return false, fmt.Errorf("update bill: %w: %w", ErrInvalidArgument, core.ErrInvalidAmount)
	}

	sets, args := assignments(patch)
	where, whereArgs, err := NewPredicates().EqualTo(colID, id).Clause()
	if err != nil {
		return false, err
	}

	query := db.Rebind("UPDATE bill SET " + strings.Join(sets, ", ") + where)
	res, err := db.ExecContext(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		return false, classify("update bill", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("update bill rows affected", err)
	}
	return n > 0, nil
}

func assignments(p core.BillPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	if p.Date != nil {
		sets = append(sets, colDate+" = ?")
		args = append(args, *p.Date)
	}
	if p.Type != nil {
		sets = append(sets, colType+" = ?")
		args = append(args, string(*p.Type))
	}
	if p.Category != nil {
		sets = append(sets, colCategory+" = ?")
		args = append(args, *p.Category)
	}
	if p.Amount != nil {
		sets = append(sets, colAmount+" = ?")
		args = append(args, *p.Amount)
	}
	if p.Remark != nil {
		sets = append(sets, colRemark+" = ?")
		args = append(args, *p.Remark)
	}
	return sets, args
}

// Delete removes the bill with the given id and reports whether a row was
// removed. A missing id is not an error.
func (s *LedgerStore) Delete(ctx context.Context, id int64) bool {
	deleted, err := s.DeleteErr(ctx, id)
	if err != nil {
		s.logFailure(ctx, log.OpDelete, err, log.FieldBillID, id)
		return false
	}
	s.logger.InfoContext(ctx, "Bill delete finished", log.FieldBillID, id, "deleted", deleted)
	return deleted
}

func (s *LedgerStore) DeleteErr(ctx context.Context, id int64) (deleted bool, err error) {
	ctx, done := s.begin(ctx, log.OpDelete)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return false, err
	}

	where, args, err := NewPredicates().EqualTo(colID, id).Clause()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM bill"+where), args...)
	if err != nil {
		return false, classify("delete bill", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("delete bill rows affected", err)
	}
	return n > 0, nil
}

// GetByID returns the bill with the given id. The boolean is false when no
// row matches or the lookup failed.
func (s *LedgerStore) GetByID(ctx context.Context, id int64) (core.BillRecord, bool) {
	rec, err := s.GetByIDErr(ctx, id)
	if errors.Is(err, ErrNotFound) {
		s.logger.DebugContext(ctx, "Bill not found", log.FieldBillID, id)
		return core.BillRecord{}, false
	}
	if err != nil {
		s.logFailure(ctx, log.OpGet, err, log.FieldBillID, id)
		return core.BillRecord{}, false
	}
	return rec, true
}

func (s *LedgerStore) GetByIDErr(ctx context.Context, id int64) (rec core.BillRecord, err error) {
	ctx, done := s.begin(ctx, log.OpGet)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return core.BillRecord{}, err
	}

	where, args, err := NewPredicates().EqualTo(colID, id).Clause()
	if err != nil {
		return core.BillRecord{}, err
	}
	var row billRow
	if err = db.GetContext(ctx, &row, db.Rebind("SELECT "+selectColumns+" FROM bill"+where), args...); err != nil {
		return core.BillRecord{}, classify("get bill", err)
	}
	return row.record(), nil
}
