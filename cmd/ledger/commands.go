package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage"
)

var errUsage = errors.New("usage")

const usage = `usage: ledger <command> [flags]

commands:
  add         record a bill
  update      change fields of a bill
  delete      remove a bill
  get         print one bill
  list        list bills
  totals      income and expense totals
  categories  per-category totals for one type`

type command func(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error

var commands = map[string]command{
	"add":        runAdd,
	"update":     runUpdate,
	"delete":     runDelete,
	"get":        runGet,
	"list":       runList,
	"totals":     runTotals,
	"categories": runCategories,
}

type billJSON struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Remark   string  `json:"remark"`
}

func toBillJSON(r core.BillRecord) billJSON {
	return billJSON{ID: r.ID, Date: r.Date, Type: r.Type.String(), Category: r.Category, Amount: r.Amount, Remark: r.Remark}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return nil
}

func parseType(s string) (*core.BillType, error) {
	if s == "" {
		return nil, nil
	}
	t, err := core.ParseBillType(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return &t, nil
}

func requireID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	return nil
}

func runAdd(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("add", stderr)
	date := fs.String("date", "", "bill date (YYYY-MM-DD)")
	typ := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category name")
	amount := fs.String("amount", "0", "amount, dot or comma decimal separator")
	remark := fs.String("remark", "", "free text note")
	if err := parse(fs, args); err != nil {
		return err
	}

	t, err := parseType(*typ)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: -type is required", errUsage)
	}
	a, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	id, err := svc.AddBill(ctx, core.Bill{Date: *date, Type: *t, Category: *category, Amount: a, Remark: *remark})
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]int64{"id": id})
}

func runUpdate(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("update", stderr)
	id := fs.Int64("id", 0, "bill id")
	date := fs.String("date", "", "new date (YYYY-MM-DD)")
	typ := fs.String("type", "", "new type")
	category := fs.String("category", "", "new category")
	amount := fs.String("amount", "", "new amount")
	remark := fs.String("remark", "", "new remark")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	// Only flags given on the command line become part of the patch, so an
	// explicit empty value clears a field.
	var patch core.BillPatch
	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "date":
			patch = patch.WithDate(*date)
		case "type":
			t, err := core.ParseBillType(*typ)
			if err != nil {
				perr = err
				return
			}
			patch = patch.WithType(t)
		case "category":
			patch = patch.WithCategory(*category)
		case "amount":
			a, err := core.ParseAmount(*amount)
			if err != nil {
				perr = err
				return
			}
			patch = patch.WithAmount(a)
		case "remark":
			patch = patch.WithRemark(*remark)
		}
	})
	if perr != nil {
		return fmt.Errorf("%w: %w", errUsage, perr)
	}

	updated, err := svc.UpdateBill(ctx, *id, patch)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]bool{"updated": updated})
}

func runDelete(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("delete", stderr)
	id := fs.Int64("id", 0, "bill id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	deleted, err := svc.DeleteBill(ctx, *id)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]bool{"deleted": deleted})
}

func runGet(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("get", stderr)
	id := fs.Int64("id", 0, "bill id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	rec, err := svc.GetBill(ctx, *id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("bill %d not found", *id)
	}
	if err != nil {
		return err
	}
	return writeJSON(stdout, toBillJSON(rec))
}

func rangeFlags(fs *flag.FlagSet) (start, end *string) {
	start = fs.String("start", "", "first date included (YYYY-MM-DD)")
	end = fs.String("end", "", "last date included (YYYY-MM-DD)")
	return start, end
}

func runList(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("list", stderr)
	typ := fs.String("type", "", "only income or expense")
	start, end := rangeFlags(fs)
	sortBy := fs.String("sort", "", "date or amount (default: date, newest first)")
	order := fs.String("order", "", "asc or desc")
	if err := parse(fs, args); err != nil {
		return err
	}

	t, err := parseType(*typ)
	if err != nil {
		return err
	}
	opts := core.ListOptions{
		Type:      t,
		StartDate: *start,
		EndDate:   *end,
		SortBy:    core.SortField(*sortBy),
		SortOrder: core.SortOrder(*order),
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	bills, err := svc.ListBills(ctx, opts)
	if err != nil {
		return err
	}

	out := make([]billJSON, len(bills))
	for i, b := range bills {
		out[i] = toBillJSON(b)
	}
	return writeJSON(stdout, out)
}

func runTotals(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("totals", stderr)
	start, end := rangeFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	totals, err := svc.Totals(ctx, core.DateRange{StartDate: *start, EndDate: *end})
	if err != nil {
		return err
	}
	return writeJSON(stdout, struct {
		TotalIncome  float64 `json:"total_income"`
		TotalExpense float64 `json:"total_expense"`
		Balance      float64 `json:"balance"`
	}{totals.TotalIncome, totals.TotalExpense, totals.Balance()})
}

func runCategories(ctx context.Context, svc *services.LedgerService, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("categories", stderr)
	typ := fs.String("type", string(core.Expense), "income or expense")
	start, end := rangeFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	t, err := parseType(*typ)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: -type is required", errUsage)
	}
	totals, err := svc.CategoryTotals(ctx, *t, core.DateRange{StartDate: *start, EndDate: *end})
	if err != nil {
		return err
	}

	type categoryJSON struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}
	out := make([]categoryJSON, len(totals))
	for i, c := range totals {
		out[i] = categoryJSON{Category: c.Category, Total: c.Total}
	}
	return writeJSON(stdout, out)
}
