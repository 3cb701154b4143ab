package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.BillEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishBillEvent(_ context.Context, e *amqp.BillEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) kinds() []amqp.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

func newTestService(t *testing.T, pub EventPublisher) *LedgerService {
	t.Helper()
	store := storage.NewLedgerStore()
	require.True(t, store.Init(context.Background(), storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))))
	return NewLedgerService(store, pub, nil)
}

var lunch = core.Bill{Date: "2025-03-01", Type: core.Expense, Category: "Food", Amount: 12.5}

func TestLedgerService_Lifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	id, err := svc.AddBill(ctx, lunch)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	updated, err := svc.UpdateBill(ctx, id, core.BillPatch{}.WithAmount(15))
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := svc.GetBill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Amount)

	deleted, err := svc.DeleteBill(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, []amqp.EventKind{amqp.BillCreated, amqp.BillUpdated, amqp.BillDeleted}, pub.kinds())
	for _, e := range pub.events {
		assert.Equal(t, id, e.BillID)
	}
}

func TestLedgerService_NoEventWithoutChange(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	updated, err := svc.UpdateBill(ctx, 404, core.BillPatch{}.WithAmount(1))
	require.NoError(t, err)
	assert.False(t, updated)

	deleted, err := svc.DeleteBill(ctx, 404)
	require.NoError(t, err)
	assert.False(t, deleted)

	id, err := svc.AddBill(ctx, lunch)
	require.NoError(t, err)
	updated, err = svc.UpdateBill(ctx, id, core.BillPatch{})
	require.NoError(t, err)
	assert.False(t, updated)

	assert.Equal(t, []amqp.EventKind{amqp.BillCreated}, pub.kinds())
}

func TestLedgerService_Validation(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	tests := []struct {
		name   string
		bill   core.Bill
		target error
	}{
		{"bad date", core.Bill{Date: "2025-13-01", Type: core.Expense}, core.ErrInvalidDate},
		{"bad type", core.Bill{Date: "2025-01-01", Type: "refund"}, core.ErrInvalidType},
		{"negative amount", core.Bill{Date: "2025-01-01", Type: core.Income, Amount: -1}, core.ErrInvalidAmount},
		{"infinite amount", core.Bill{Date: "2025-01-01", Type: core.Income, Amount: math.Inf(1)}, core.ErrInvalidAmount},
		{"nan amount", core.Bill{Date: "2025-01-01", Type: core.Expense, Amount: math.NaN()}, core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := svc.AddBill(ctx, tt.bill)
			assert.Equal(t, int64(-1), id)
			require.ErrorIs(t, err, storage.ErrInvalidArgument)
			require.ErrorIs(t, err, tt.target)
		})
	}

	_, err := svc.UpdateBill(ctx, 1, core.BillPatch{}.WithDate("yesterday"))
	require.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = svc.UpdateBill(ctx, 1, core.BillPatch{}.WithAmount(math.Inf(-1)))
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.ListBills(ctx, core.ListOptions{StartDate: "2025/01/01"})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = svc.Totals(ctx, core.DateRange{EndDate: "soon"})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = svc.CategoryTotals(ctx, core.Expense, core.DateRange{StartDate: "x"})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	assert.Empty(t, pub.kinds())
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, pub)
	ctx := context.Background()

	id, err := svc.AddBill(ctx, lunch)
	require.NoError(t, err)

	_, err = svc.GetBill(ctx, id)
	require.NoError(t, err)
}

func TestLedgerService_Reports(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for _, b := range []core.Bill{
		{Date: "2025-01-01", Type: core.Income, Category: "Salary", Amount: 100},
		{Date: "2025-01-02", Type: core.Expense, Category: "Food", Amount: 30},
		{Date: "2025-01-03", Type: core.Expense, Category: "Food", Amount: 20},
	} {
		_, err := svc.AddBill(ctx, b)
		require.NoError(t, err)
	}

	totals, err := svc.Totals(ctx, core.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, core.Totals{TotalIncome: 100, TotalExpense: 50}, totals)

	cats, err := svc.CategoryTotals(ctx, core.Expense, core.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	require.NoError(t, err)
	assert.Equal(t, []core.CategoryTotal{{Category: "Food", Total: 50}}, cats)

	bills, err := svc.ListBills(ctx, core.ListOptions{Type: core.TypePtr(core.Expense)})
	require.NoError(t, err)
	assert.Len(t, bills, 2)
}

func TestLedgerService_Close(t *testing.T) {
	t.Run("nil publisher", func(t *testing.T) {
		assert.NoError(t, NewLedgerService(nil, nil, nil).Close())
	})

	t.Run("closes publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		require.NoError(t, NewLedgerService(nil, pub, nil).Close())
		assert.True(t, pub.closed)
	})
}
