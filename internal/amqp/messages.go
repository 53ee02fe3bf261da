package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LedgerEventMessage notifies consumers that a ledger record changed.
// It carries only the entity kind, action and record id; consumers fetch
// the current state from the database if they need it.
type LedgerEventMessage struct {
	EventID   string    `json:"event_id"`
	Entity    string    `json:"entity"` // account | card | expense | income
	Action    string    `json:"action"` // created | updated | deleted
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event message with a fresh event id.
func NewLedgerEventMessage(entity, action, recordID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		EventID:   uuid.NewString(),
		Entity:    entity,
		Action:    action,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
