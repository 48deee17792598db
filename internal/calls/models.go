package calls

import "time"

// Call represents one leg of a phone interaction.
//
// NOTE: This is a domain model only. The provider-assigned identifier
// (Twilio CallSid) is stored as ProviderCallID; never mix provider SDK
// types into this model.
//
// Persistence invariant: rows are written by the telephony provider's
// status pipeline, never by this service. Reporting reads them as-is.
type Call struct {
	ProviderCallID string `json:"provider_call_id" db:"provider_call_id"`

	Role CallRole `json:"role" db:"role"`

	From string `json:"from" db:"from_number"`
	To   string `json:"to" db:"to_number"`

	Status CallStatus `json:"status" db:"status"`

	// DurationSeconds is the billable duration reported by the provider.
	DurationSeconds int `json:"duration" db:"duration"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CallRole distinguishes the two legs of a transfer bridge.
type CallRole string

const (
	RoleCustomer   CallRole = "customer"
	RoleDepartment CallRole = "department"
)

// CallStatus values use the provider's hyphenated wire form so status
// webhooks can be compared without translation.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusCanceled   CallStatus = "canceled"
)

// IsUnreachable reports whether a department leg status means the human
// side never joined the bridge and the customer needs the fallback
// announcement.
func (s CallStatus) IsUnreachable() bool {
	switch s {
	case CallStatusNoAnswer, CallStatusBusy, CallStatusFailed:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the provider lifecycle statuses.
func (s CallStatus) IsValid() bool {
	switch s {
	case CallStatusQueued, CallStatusRinging, CallStatusInProgress,
		CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer,
		CallStatusBusy, CallStatusCanceled:
		return true
	default:
		return false
	}
}
