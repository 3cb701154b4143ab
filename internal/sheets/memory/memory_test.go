package memory

import (
	"context"
	"testing"

	"ledger/internal/core"
)

func rec(id int64, amount float64) core.BillRecord {
	return core.BillRecord{ID: id, Bill: core.Bill{Date: "2025-01-01", Type: core.Expense, Category: "Food", Amount: amount}}
}

func TestSheetUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref, err := s.UpsertBill(ctx, rec(1, 10))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	if ref, _ = s.UpsertBill(ctx, rec(2, 20)); ref != "mem:2" {
		t.Fatalf("unexpected ref %q", ref)
	}

	// Same id overwrites in place.
	if ref, _ = s.UpsertBill(ctx, rec(1, 15)); ref != "mem:1" {
		t.Fatalf("expected overwrite of row 1, got %q", ref)
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0].Amount != 15 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	removed, err := s.RemoveBill(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	if removed, _ = s.RemoveBill(ctx, 1); removed {
		t.Fatal("second removal should report false")
	}
	if rows = s.Rows(); len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("unexpected rows after removal: %+v", rows)
	}

	// A new id never reuses a cleared slot.
	if ref, _ = s.UpsertBill(ctx, rec(3, 30)); ref != "mem:3" {
		t.Fatalf("unexpected ref %q", ref)
	}
}

func TestSheetRejectsInvalidID(t *testing.T) {
	if _, err := New().UpsertBill(context.Background(), rec(0, 1)); err == nil {
		t.Fatal("expected error for id 0")
	}
}
