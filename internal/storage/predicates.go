package storage

import (
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Predicate renders a filter as a SQL suffix (WHERE and ORDER BY) with bind
// arguments in "?" placeholder form. Callers rebind for the target driver.
type Predicate interface {
	Clause() (string, []any, error)
}

// Predicates is a composable predicate over the bill table. Conditions are
// combined with AND; orderings apply in the order they were added.
type Predicates struct {
	conds  []string
	args   []any
	orders []string
	err    error
}

var _ Predicate = (*Predicates)(nil)

var knownColumns = map[string]struct{}{
	colID:       {},
	colDate:     {},
	colType:     {},
	colCategory: {},
	colAmount:   {},
	colRemark:   {},
}

func NewPredicates() *Predicates {
	return &Predicates{}
}

func (p *Predicates) EqualTo(column string, value any) *Predicates {
	return p.cond(column, "=", value)
}

func (p *Predicates) GreaterThanOrEqualTo(column string, value any) *Predicates {
	return p.cond(column, ">=", value)
}

func (p *Predicates) LessThanOrEqualTo(column string, value any) *Predicates {
	return p.cond(column, "<=", value)
}

func (p *Predicates) OrderByAsc(column string) *Predicates {
	return p.order(column, "ASC")
}

func (p *Predicates) OrderByDesc(column string) *Predicates {
	return p.order(column, "DESC")
}

// InRange restricts column to the inclusive range; empty bounds are skipped.
func (p *Predicates) InRange(column string, r core.DateRange) *Predicates {
	if r.StartDate != "" {
		p.GreaterThanOrEqualTo(column, r.StartDate)
	}
	if r.EndDate != "" {
		p.LessThanOrEqualTo(column, r.EndDate)
	}
	return p
}

func (p *Predicates) cond(column, op string, value any) *Predicates {
	if !p.check(column) {
		return p
	}
	p.conds = append(p.conds, column+" "+op+" ?")
	p.args = append(p.args, value)
	return p
}

func (p *Predicates) order(column, dir string) *Predicates {
	if !p.check(column) {
		return p
	}
	p.orders = append(p.orders, column+" "+dir)
	return p
}

// check keeps column names out of the query unless they belong to the table.
func (p *Predicates) check(column string) bool {
	if _, ok := knownColumns[column]; ok {
		return true
	}
	if p.err == nil {
		p.err = fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, column)
	}
	return false
}

func (p *Predicates) Clause() (string, []any, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	var b strings.Builder
	if len(p.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(p.conds, " AND "))
	}
	if len(p.orders) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(p.orders, ", "))
	}
	return b.String(), p.args, nil
}
