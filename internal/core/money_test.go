package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0", 0, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSum(t *testing.T) {
	var s Sum
	for _, a := range []float64{0.1, 0.2, 0.3} {
		if err := s.Add(a); err != nil {
			t.Fatalf("Add(%v): %v", a, err)
		}
	}
	if got := s.Float64(); got != 0.6 {
		t.Fatalf("expected 0.6, got %v", got)
	}

	var empty Sum
	if got := empty.Float64(); got != 0 {
		t.Fatalf("expected 0 for empty sum, got %v", got)
	}
}

func TestSumRejectsNonFinite(t *testing.T) {
	var s Sum
	if err := s.Add(1.5); err != nil {
		t.Fatalf("Add(1.5): %v", err)
	}
	for _, a := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if err := s.Add(a); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Add(%v) expected ErrInvalidAmount, got %v", a, err)
		}
	}
	if got := s.Float64(); got != 1.5 {
		t.Fatalf("rejected amounts must not change the sum, got %v", got)
	}
}
