package storage

import (
	"context"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/log"
)

// ListBills returns the bills matching opts. Without SortBy the result is
// ordered by date, most recent first. Any failure yields an empty slice.
func (s *LedgerStore) ListBills(ctx context.Context, opts core.ListOptions) []core.BillRecord {
	bills, err := s.ListBillsErr(ctx, opts)
	if err != nil {
		s.logFailure(ctx, log.OpList, err, log.NewFields().WithRange(opts.StartDate, opts.EndDate).ToSlice()...)
		return []core.BillRecord{}
	}
	return bills
}

func (s *LedgerStore) ListBillsErr(ctx context.Context, opts core.ListOptions) (bills []core.BillRecord, err error) {
	ctx, done := s.begin(ctx, log.OpList)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return []core.BillRecord{}, err
	}
	if err = opts.Validate(); err != nil {
		return []core.BillRecord{}, fmt.Errorf("list bills: %w: %w", ErrInvalidArgument, err)
	}

	where, args, err := listPredicates(opts).Clause()
	if err != nil {
		return []core.BillRecord{}, err
	}

	var rows []billRow
	if err = db.SelectContext(ctx, &rows, db.Rebind("SELECT "+selectColumns+" FROM bill"+where), args...); err != nil {
		return []core.BillRecord{}, classify("list bills", err)
	}

	bills = make([]core.BillRecord, len(rows))
	for i, r := range rows {
		bills[i] = r.record()
	}
	return bills, nil
}

func listPredicates(opts core.ListOptions) *Predicates {
	p := NewPredicates()
	if opts.Type != nil {
		p.EqualTo(colType, string(*opts.Type))
	}
	p.InRange(colDate, opts.Range())

	if opts.SortBy == "" {
		return p.OrderByDesc(colDate)
	}
	column := colAmount
	if opts.SortBy == core.SortByDate {
		column = colDate
	}
	if opts.SortOrder == core.Desc {
		return p.OrderByDesc(column)
	}
	return p.OrderByAsc(column)
}
