package storage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"ledger/internal/core"
	"ledger/internal/log"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := newTestStore(t, WithMetrics(m))
	ctx := context.Background()

	id := s.Insert(ctx, core.Bill{Date: "2025-01-01", Type: core.Expense, Amount: 1})
	s.Insert(ctx, core.Bill{Date: "2025-01-01", Type: "refund", Amount: 1})
	s.GetByID(ctx, id)
	s.GetByID(ctx, id+100)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(log.OpInsert, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(log.OpInsert, "constraint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(log.OpGet, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(log.OpGet, "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.observe(log.OpList, nil, 0)
}
