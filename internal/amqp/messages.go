package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names the ledger mutation a BillEvent announces.
type EventKind string

const (
	BillCreated EventKind = "bill.created"
	BillUpdated EventKind = "bill.updated"
	BillDeleted EventKind = "bill.deleted"
)

func (k EventKind) IsValid() bool {
	switch k {
	case BillCreated, BillUpdated, BillDeleted:
		return true
	}
	return false
}

// BillEvent is a lightweight notification that a bill changed.
// It carries only the id; consumers read the current row from the ledger.
type BillEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	BillID    int64     `json:"bill_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillEvent stamps a fresh event id and the current time.
func NewBillEvent(kind EventKind, billID int64) *BillEvent {
	return &BillEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		BillID:    billID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *BillEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BillEventFromJSON decodes and checks an event body.
func BillEventFromJSON(data []byte) (*BillEvent, error) {
	var e BillEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.BillID <= 0 {
		return nil, fmt.Errorf("invalid bill id %d", e.BillID)
	}
	return &e, nil
}
