// Package core provides money parsing and handling utilities.
//
// Amounts are stored as REAL in the ledger. Parsing and summing go through
// decimal so that two-decimal currency values do not pick up binary float
// drift on the way in or while being aggregated.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values are rejected; zero is allowed.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// IsFinite reports whether amount is neither NaN nor an infinity.
func IsFinite(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Sum accumulates amounts exactly and converts the result back to float64.
type Sum struct {
	total decimal.Decimal
}

// Add fails on NaN and infinities, which have no decimal representation.
func (s *Sum) Add(amount float64) error {
	if !IsFinite(amount) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	s.total = s.total.Add(decimal.NewFromFloat(amount))
	return nil
}

func (s Sum) Float64() float64 {
	return s.total.InexactFloat64()
}
