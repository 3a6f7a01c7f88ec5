package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLoan     EntityType = "loan"
	EntityTypeCustomer EntityType = "customer"
	EntityTypeFee      EntityType = "fee"
)

// Additional event types for lifecycle-specific events
const (
	EventTypeStatusChanged EventType = "status_changed"
	EventTypeEmiPaid       EventType = "emi_paid"
	EventTypePenaltyAdded  EventType = "penalty_added"
	EventTypePaid          EventType = "paid"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "loan.status_changed"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "loan"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoanCreated creates a loan.created event
func LoanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanStatusChanged creates a loan.status_changed event
func LoanStatusChanged(payload interface{}) Event {
	return NewEvent(EventTypeStatusChanged, EntityTypeLoan, payload)
}

// LoanEmiPaid creates a loan.emi_paid event
func LoanEmiPaid(payload interface{}) Event {
	return NewEvent(EventTypeEmiPaid, EntityTypeLoan, payload)
}

// LoanPenaltyAdded creates a loan.penalty_added event
func LoanPenaltyAdded(payload interface{}) Event {
	return NewEvent(EventTypePenaltyAdded, EntityTypeLoan, payload)
}

// LoanDeleted creates a loan.deleted event
func LoanDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeLoan, payload)
}

// CustomerCreated creates a customer.created event
func CustomerCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCustomer, payload)
}

// CustomerUpdated creates a customer.updated event
func CustomerUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCustomer, payload)
}

// FeePaid creates a fee.paid event
func FeePaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeFee, payload)
}
