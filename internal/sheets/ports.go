package sheets

import (
	"context"
	"strconv"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// BillSheet mirrors ledger rows into a spreadsheet, one row per bill id.
	BillSheet interface {
		// UpsertBill overwrites the row for rec.ID or appends one.
		UpsertBill(ctx context.Context, rec core.BillRecord) (rowRef string, err error)
		// RemoveBill clears the row for id, reporting whether one existed.
		RemoveBill(ctx context.Context, id int64) (removed bool, err error)
	}
)

// Header is the column layout shared by every BillSheet implementation.
var Header = []string{"ID", "Date", "Type", "Category", "Amount", "Remark"}

// Row renders rec in Header order.
func Row(rec core.BillRecord) []any {
	return []any{
		strconv.FormatInt(rec.ID, 10),
		rec.Date,
		rec.Type.String(),
		rec.Category,
		rec.Amount,
		rec.Remark,
	}
}
