package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerEventMessage(t *testing.T) {
	msg := NewLedgerEventMessage("expense", "created", "rec-123")

	if msg.Entity != "expense" {
		t.Errorf("NewLedgerEventMessage() Entity = %v, want expense", msg.Entity)
	}
	if msg.Action != "created" {
		t.Errorf("NewLedgerEventMessage() Action = %v, want created", msg.Action)
	}
	if msg.RecordID != "rec-123" {
		t.Errorf("NewLedgerEventMessage() RecordID = %v, want rec-123", msg.RecordID)
	}
	if msg.EventID == "" {
		t.Error("NewLedgerEventMessage() EventID should not be empty")
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewLedgerEventMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewLedgerEventMessage() Timestamp should be recent")
	}
}

func TestLedgerEventMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &LedgerEventMessage{
		EventID:   "evt-1",
		Entity:    "account",
		Action:    "updated",
		RecordID:  "acc-9",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := LedgerEventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerEventMessageFromJSON() error = %v", err)
	}

	if parsedMsg.EventID != msg.EventID {
		t.Errorf("Parsed EventID = %v, want %v", parsedMsg.EventID, msg.EventID)
	}
	if parsedMsg.Entity != msg.Entity {
		t.Errorf("Parsed Entity = %v, want %v", parsedMsg.Entity, msg.Entity)
	}
	if parsedMsg.Action != msg.Action {
		t.Errorf("Parsed Action = %v, want %v", parsedMsg.Action, msg.Action)
	}
	if parsedMsg.RecordID != msg.RecordID {
		t.Errorf("Parsed RecordID = %v, want %v", parsedMsg.RecordID, msg.RecordID)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestLedgerEventMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"event_id": 42, "entity": []}`)

	_, err := LedgerEventMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("LedgerEventMessageFromJSON() should fail with invalid JSON")
	}
}
