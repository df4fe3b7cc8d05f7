package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"agency/internal/core"
)

// LedgerEvent announces a stored revenue or expense. The worker reads the
// record itself from the document store.
type LedgerEvent struct {
	Kind      core.Kind `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind core.Kind, id string) *LedgerEvent {
	return &LedgerEvent{Kind: kind, ID: id, Timestamp: time.Now()}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("ledger event without id")
	}
	if msg.Kind != core.KindRevenue && msg.Kind != core.KindExpense {
		return nil, errors.New("ledger event for unsupported kind " + string(msg.Kind))
	}
	return &msg, nil
}
