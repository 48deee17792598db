package reporting

import (
	"time"

	"callbridge/internal/calls"
)

// TimeRange bounds a query; From inclusive, To exclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ListCallsRequest asks for historical call legs. This surface is a
// read-only pass-through over rows the provider pipeline already stored;
// the orchestration core never writes here.
type ListCallsRequest struct {
	Range TimeRange `json:"range"`

	// Status filters to one lifecycle status when set.
	Status calls.CallStatus `json:"status,omitempty"`

	// Role filters to customer or department legs when set.
	Role calls.CallRole `json:"role,omitempty"`

	// Limit caps the page size; defaults applied by the service.
	Limit int `json:"limit,omitempty"`
}

// ListCallsResult is the page returned to the operator API.
type ListCallsResult struct {
	Calls []calls.Call `json:"calls"`
	Total int          `json:"total"`
}
