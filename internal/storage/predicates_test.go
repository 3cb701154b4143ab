package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func TestPredicatesClause(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *Predicates
		clause string
		args   []any
	}{
		{
			name:   "empty",
			build:  NewPredicates,
			clause: "",
			args:   nil,
		},
		{
			name: "equality and range",
			build: func() *Predicates {
				return NewPredicates().EqualTo(colType, "expense").InRange(colDate, core.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31"})
			},
			clause: " WHERE type = ? AND date >= ? AND date <= ?",
			args:   []any{"expense", "2025-01-01", "2025-01-31"},
		},
		{
			name: "open ended range",
			build: func() *Predicates {
				return NewPredicates().InRange(colDate, core.DateRange{EndDate: "2025-01-31"})
			},
			clause: " WHERE date <= ?",
			args:   []any{"2025-01-31"},
		},
		{
			name: "ordering",
			build: func() *Predicates {
				return NewPredicates().EqualTo(colID, int64(3)).OrderByDesc(colDate).OrderByAsc(colAmount)
			},
			clause: " WHERE bill_id = ? ORDER BY date DESC, amount ASC",
			args:   []any{int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := tt.build().Clause()
			require.NoError(t, err)
			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPredicatesRejectUnknownColumn(t *testing.T) {
	_, _, err := NewPredicates().EqualTo("1=1; DROP TABLE bill; --", 1).Clause()
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = NewPredicates().OrderByAsc("created_at").Clause()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListPredicates(t *testing.T) {
	tests := []struct {
		name   string
		opts   core.ListOptions
		clause string
	}{
		{"default", core.ListOptions{}, " ORDER BY date DESC"},
		{"amount asc", core.ListOptions{SortBy: core.SortByAmount, SortOrder: core.Asc}, " ORDER BY amount ASC"},
		{"date desc", core.ListOptions{SortBy: core.SortByDate, SortOrder: core.Desc}, " ORDER BY date DESC"},
		{"type filter", core.ListOptions{Type: core.TypePtr(core.Income)}, " WHERE type = ? ORDER BY date DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, _, err := listPredicates(tt.opts).Clause()
			require.NoError(t, err)
			assert.Equal(t, tt.clause, clause)
		})
	}
}
