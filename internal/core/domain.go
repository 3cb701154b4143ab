package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only calendar format stored in the ledger. It sorts
// lexicographically in date order, which range filters and ordering rely on.
const DateLayout = "2006-01-02"

const (
	Income  BillType = "income"
	Expense BillType = "expense"
)

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type (
	BillType  string
	SortField string
	SortOrder string

	// Bill is an unsaved ledger entry.
	Bill struct {
		Date     string
		Type     BillType
		Category string
		Amount   float64
		Remark   string
	}

	// BillRecord is a persisted Bill carrying its store-assigned identity.
	BillRecord struct {
		ID int64
		Bill
	}

	// BillPatch describes a sparse update. Nil fields are left untouched.
	BillPatch struct {
		Date     *string
		Type     *BillType
		Category *string
		Amount   *float64
		Remark   *string
	}

	// DateRange is inclusive on both ends; an empty bound is unbounded.
	DateRange struct {
		StartDate string
		EndDate   string
	}

	ListOptions struct {
		Type      *BillType
		StartDate string
		EndDate   string
		SortBy    SortField
		SortOrder SortOrder
	}
)

var (
	ErrInvalidType   = errors.New("invalid bill type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidSort   = errors.New("invalid sort option")
)

// Labels used by the mobile client that first produced ledger data.
var legacyTypeLabels = map[string]BillType{
	"收入": Income,
	"支出": Expense,
}

func (t BillType) IsValid() bool {
	return t == Income || t == Expense
}

func (t BillType) String() string {
	return string(t)
}

// ParseBillType accepts "income"/"expense" in any case and the legacy labels.
func ParseBillType(s string) (BillType, error) {
	s = strings.TrimSpace(s)
	if t, ok := legacyTypeLabels[s]; ok {
		return t, nil
	}
	t := BillType(strings.ToLower(s))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// ValidateDate checks that s is a real calendar date in DateLayout.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// Validate is used by callers that want to reject a bill before it reaches
// the store. The store itself only enforces the type constraint and rejects
// amounts that are not finite.
func (b Bill) Validate() error {
	if err := ValidateDate(b.Date); err != nil {
		return err
	}
	if !b.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, b.Type)
	}
	return validateAmount(b.Amount)
}

func validateAmount(a float64) error {
	if a < 0 || !IsFinite(a) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, a)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p BillPatch) IsEmpty() bool {
	return p.Date == nil && p.Type == nil && p.Category == nil && p.Amount == nil && p.Remark == nil
}

func (p BillPatch) WithDate(d string) BillPatch {
	p.Date = &d
	return p
}

func (p BillPatch) WithType(t BillType) BillPatch {
	p.Type = &t
	return p
}

func (p BillPatch) WithCategory(c string) BillPatch {
	p.Category = &c
	return p
}

func (p BillPatch) WithAmount(a float64) BillPatch {
	p.Amount = &a
	return p
}

func (p BillPatch) WithRemark(r string) BillPatch {
	p.Remark = &r
	return p
}

// Validate checks the fields the patch sets with the same rules as Bill.Validate.
func (p BillPatch) Validate() error {
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, *p.Type)
	}
	if p.Amount != nil {
		return validateAmount(*p.Amount)
	}
	return nil
}

// Apply returns b with the patch's fields overlaid.
func (p BillPatch) Apply(b Bill) Bill {
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Remark != nil {
		b.Remark = *p.Remark
	}
	return b
}

// Range returns the date bounds of the options.
func (o ListOptions) Range() DateRange {
	return DateRange{StartDate: o.StartDate, EndDate: o.EndDate}
}

// Validate rejects an unknown type filter and sort values outside
// {date, amount} and {asc, desc}. Empty sort values select the defaults.
func (o ListOptions) Validate() error {
	if o.Type != nil && !o.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, *o.Type)
	}
	switch o.SortBy {
	case "", SortByDate, SortByAmount:
	default:
		return fmt.Errorf("%w: sort by %q", ErrInvalidSort, o.SortBy)
	}
	switch o.SortOrder {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidSort, o.SortOrder)
	}
	return nil
}

// TypePtr is a convenience for filling optional type fields.
func TypePtr(t BillType) *BillType {
	return &t
}
