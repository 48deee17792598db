package audit

import "time"

// Event is an immutable, append-only record of a call-control decision.
//
// Invariants:
// - Events are never updated or deleted.
// - Recording is best-effort; do not block call flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table transfer_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the record.
	Type EventType `json:"type" db:"type"`

	// CallID is the provider id of the leg the event concerns, when known.
	CallID string `json:"call_id,omitempty" db:"call_id"`

	// Department is the resolved department keyword for transfer events.
	Department string `json:"department,omitempty" db:"department"`

	// Token is the correlation token the assistant supplied with a
	// transfer request.
	Token string `json:"token,omitempty" db:"token"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallRegistered    EventType = "call_registered"
	EventTypeTransferInitiated EventType = "transfer_initiated"
	EventTypeTransferFailed    EventType = "transfer_failed"
	EventTypeLegStatus         EventType = "leg_status"
)
