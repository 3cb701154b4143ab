package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseBillType(t *testing.T) {
	cases := []struct {
		in   string
		want BillType
		ok   bool
	}{
		{"income", Income, true},
		{"Expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"收入", Income, true},
		{"支出", Expense, true},
		{"refund", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseBillType(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestValidateDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-01-01", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-1-1", false},
		{"01/02/2025", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidateDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestBillValidate(t *testing.T) {
	good := Bill{Date: "2025-01-01", Type: Expense, Category: "Food", Amount: 12.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// An empty category and a zero amount are both allowed.
	if err := (Bill{Date: "2025-01-01", Type: Income}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Bill{
		{Date: "", Type: Expense, Amount: 1},
		{Date: "2025-13-01", Type: Expense, Amount: 1},
		{Date: "2025-01-01", Type: "refund", Amount: 1},
		{Date: "2025-01-01", Type: Expense, Amount: -1},
		{Date: "2025-01-01", Type: Expense, Amount: math.Inf(1)},
		{Date: "2025-01-01", Type: Expense, Amount: math.NaN()},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBillPatch(t *testing.T) {
	if !(BillPatch{}).IsEmpty() {
		t.Fatal("zero patch should be empty")
	}

	p := BillPatch{}.WithAmount(42).WithRemark("")
	if p.IsEmpty() {
		t.Fatal("patch with fields should not be empty")
	}

	base := Bill{Date: "2025-01-01", Type: Expense, Category: "Food", Amount: 10, Remark: "lunch"}
	got := p.Apply(base)
	want := Bill{Date: "2025-01-01", Type: Expense, Category: "Food", Amount: 42, Remark: ""}
	if got != want {
		t.Fatalf("Apply = %+v, want %+v", got, want)
	}
}

func TestBillPatchValidate(t *testing.T) {
	if err := (BillPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch should validate, got %v", err)
	}
	if err := (BillPatch{}).WithCategory("").WithAmount(0).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (BillPatch{}).WithDate("2025-02-30").Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if err := (BillPatch{}).WithType("refund").Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	for _, a := range []float64{-0.01, math.Inf(1), math.Inf(-1), math.NaN()} {
		if err := (BillPatch{}).WithAmount(a).Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v expected ErrInvalidAmount, got %v", a, err)
		}
	}
}

func TestListOptionsValidate(t *testing.T) {
	good := []ListOptions{
		{},
		{Type: TypePtr(Income)},
		{SortBy: SortByDate},
		{SortBy: SortByAmount, SortOrder: Asc},
		{SortBy: SortByAmount, SortOrder: Desc},
	}
	for i, o := range good {
		if err := o.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	if err := (ListOptions{Type: TypePtr("refund")}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	bads := []ListOptions{
		{SortBy: "Date"},
		{SortBy: "category"},
		{SortBy: SortByAmount, SortOrder: "ascending"},
		{SortOrder: "DESC"},
	}
	for i, o := range bads {
		if err := o.Validate(); !errors.Is(err, ErrInvalidSort) {
			t.Fatalf("case %d expected ErrInvalidSort, got %v", i, err)
		}
	}
}

func TestTotalsBalance(t *testing.T) {
	if got := (Totals{TotalIncome: 350, TotalExpense: 50}).Balance(); got != 300 {
		t.Fatalf("expected 300, got %v", got)
	}
}
