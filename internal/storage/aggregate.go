package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"ledger/internal/core"
	"ledger/internal/log"
)

// Totals sums income and expense amounts within r. The two scans run one
// after the other under a single failure boundary: if either fails, both
// totals are reported as zero.
func (s *LedgerStore) Totals(ctx context.Context, r core.DateRange) core.Totals {
	totals, err := s.TotalsErr(ctx, r)
	if err != nil {
		s.logFailure(ctx, log.OpTotals, err, log.NewFields().WithRange(r.StartDate, r.EndDate).ToSlice()...)
		return core.Totals{}
	}
	return totals
}

func (s *LedgerStore) TotalsErr(ctx context.Context, r core.DateRange) (totals core.Totals, err error) {
	ctx, done := s.begin(ctx, log.OpTotals)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return core.Totals{}, err
	}

	income, err := sumAmounts(ctx, db, core.Income, r)
	if err != nil {
		return core.Totals{}, err
	}
	expense, err := sumAmounts(ctx, db, core.Expense, r)
	if err != nil {
		return core.Totals{}, err
	}
	return core.Totals{TotalIncome: income, TotalExpense: expense}, nil
}

func sumAmounts(ctx context.Context, db *sqlx.DB, t core.BillType, r core.DateRange) (float64, error) {
	where, args, err := NewPredicates().EqualTo(colType, string(t)).InRange(colDate, r).Clause()
	if err != nil {
		return 0, err
	}

	rows, err := db.QueryxContext(ctx, db.Rebind("SELECT COALESCE(amount, 0) FROM bill"+where), args...)
	if err != nil {
		return 0, classify(fmt.Sprintf("scan %s amounts", t), err)
	}
	defer rows.Close()

	var sum core.Sum
	for rows.Next() {
		var amount float64
		if err := rows.Scan(&amount); err != nil {
			return 0, classify(fmt.Sprintf("read %s amount", t), err)
		}
		if err := sum.Add(amount); err != nil {
			return 0, fmt.Errorf("sum %s amounts: %w: %w", t, ErrStore, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, classify(fmt.Sprintf("iterate %s amounts", t), err)
	}
	return sum.Float64(), nil
}

// CategoryTotals groups bills of type t within r by exact category and sums
// their amounts. Results are ordered by total, largest first; the order of
// equal totals is unspecified.
func (s *LedgerStore) CategoryTotals(ctx context.Context, t core.BillType, r core.DateRange) []core.CategoryTotal {
	totals, err := s.CategoryTotalsErr(ctx, t, r)
	if err != nil {
		s.logFailure(ctx, log.OpCategoryTotals, err,
			append([]any{log.FieldBillType, t.String()}, log.NewFields().WithRange(r.StartDate, r.EndDate).ToSlice()...)...)
		return []core.CategoryTotal{}
	}
	return totals
}

func (s *LedgerStore) CategoryTotalsErr(ctx context.Context, t core.BillType, r core.DateRange) (totals []core.CategoryTotal, err error) {
	ctx, done := s.begin(ctx, log.OpCategoryTotals)
	defer func() { done(err) }()

	db, _, err := s.handle()
	if err != nil {
		return []core.CategoryTotal{}, err
	}
	if !t.IsValid() {
		return []core.CategoryTotal{}, fmt.Errorf("category totals: %w: %w %q", ErrInvalidArgument, core.ErrInvalidType, t)
	}

	where, args, err := NewPredicates().EqualTo(colType, string(t)).InRange(colDate, r).Clause()
	if err != nil {
		return []core.CategoryTotal{}, err
	}

	rows, err := db.QueryxContext(ctx,
		db.Rebind("SELECT COALESCE(category, '') AS category, COALESCE(amount, 0) AS amount FROM bill"+where), args...)
	if err != nil {
		return []core.CategoryTotal{}, classify("scan category amounts", err)
	}
	defer rows.Close()

	sums := make(map[string]*core.Sum)
	var order []string
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err = rows.Scan(&category, &amount); err != nil {
			return []core.CategoryTotal{}, classify("read category amount", err)
		}
		sum, ok := sums[category]
		if !ok {
			sum = &core.Sum{}
			sums[category] = sum
			order = append(order, category)
		}
		if err = sum.Add(amount); err != nil {
			return []core.CategoryTotal{}, fmt.Errorf("sum category %q: %w: %w", category, ErrStore, err)
		}
	}
	if err = rows.Err(); err != nil {
		return []core.CategoryTotal{}, classify("iterate category amounts", err)
	}

	totals = make([]core.CategoryTotal, 0, len(order))
	for _, category := range order {
		totals = append(totals, core.CategoryTotal{Category: category, Total: sums[category].Float64()})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals, nil
}
