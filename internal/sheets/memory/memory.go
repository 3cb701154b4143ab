package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	"ledger/internal/sheets"
)

var _ sheets.BillSheet = (*Sheet)(nil)

// Sheet keeps exported rows in process. Cleared rows keep their slot, the
// same way a cleared spreadsheet row does.
type Sheet struct {
	mu   sync.Mutex
	rows []*core.BillRecord
}

func New() *Sheet {
	return &Sheet{}
}

// UpsertBill stores rec and returns a synthetic row reference.
func (s *Sheet) UpsertBill(_ context.Context, rec core.BillRecord) (string, error) {
	if rec.ID <= 0 {
		return "", fmt.Errorf("invalid bill id %d", rec.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(rec.ID); i >= 0 {
		s.rows[i] = &rec
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.rows = append(s.rows, &rec)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Sheet) RemoveBill(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return false, nil
	}
	s.rows[i] = nil
	return true, nil
}

// Rows returns the live rows in sheet order.
func (s *Sheet) Rows() []core.BillRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BillRecord, 0, len(s.rows))
	for _, r := range s.rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (s *Sheet) find(id int64) int {
	for i, r := range s.rows {
		if r != nil && r.ID == id {
			return i
		}
	}
	return -1
}
