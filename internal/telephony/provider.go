package telephony

import "context"

// CallController is the provider-agnostic surface the transfer
// orchestrator drives calls through.
//
// Rules:
// - No provider SDK or HTTP specifics outside telephony adapters.
// - Both operations are bounded request/response waits against the
//   provider; callers pass a request-scoped context.
type CallController interface {
	// UpdateCall redirects an existing live call to a new instruction URL.
	// Used to park the customer in the conference and to play the fallback
	// announcement.
	UpdateCall(ctx context.Context, callID string, upd CallUpdate) error

	// CreateCall places a new outbound call and returns the provider's
	// identifier for the created leg.
	CreateCall(ctx context.Context, req CallCreate) (string, error)
}

// CallUpdate redirects a live call to a new call-control document.
type CallUpdate struct {
	// InstructionURL is fetched by the provider for the next TwiML to run.
	InstructionURL string
}

// CallCreate places an outbound call leg.
type CallCreate struct {
	To   string
	From string

	// InstructionURL is run when the callee answers.
	InstructionURL string

	// StatusCallbackURL receives lifecycle status notifications for the
	// created leg. Optional.
	StatusCallbackURL string
}
