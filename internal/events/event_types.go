package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted      EventType = "session.started"
	EventSessionEnded        EventType = "session.ended"
	EventSessionRevoked      EventType = "session.revoked"
	EventVendorCreated       EventType = "vendor.created"
	EventVendorDeleted       EventType = "vendor.deleted"
	EventProductCreated      EventType = "product.created"
	EventProductDeleted      EventType = "product.deleted"
	EventOrderStatusChanged  EventType = "order.status_changed"
	EventSubscriptionChanged EventType = "subscription.changed"
	EventUserStatusChanged   EventType = "user.status_changed"
)

// AllEventTypes lists every event the console emits.
var AllEventTypes = []EventType{
	EventSessionStarted,
	EventSessionEnded,
	EventSessionRevoked,
	EventVendorCreated,
	EventVendorDeleted,
	EventProductCreated,
	EventProductDeleted,
	EventOrderStatusChanged,
	EventSubscriptionChanged,
	EventUserStatusChanged,
}

// Event represents an administrative action or session transition.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	SubjectID string    `json:"subject_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, sessionID, subjectID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// StatusChangedPayload records a status transition requested by an admin.
type StatusChangedPayload struct {
	Status string `json:"status"`
}

// VendorCreatedPayload payload.
type VendorCreatedPayload struct {
	Email      string   `json:"email"`
	Categories []string `json:"categories"`
}
