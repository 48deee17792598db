package transfer

import (
	"context"
	"errors"
	"fmt"

	"callbridge/internal/calls"
	"callbridge/internal/directory"
	"callbridge/internal/registry"
	"callbridge/internal/telephony"
	"callbridge/pkg/logger"
)

// Typed failures surfaced to the invoking tool. All are recovered at the
// HTTP boundary and turned into structured error results; none terminate
// the process.
var (
	// ErrNoActiveCall means no customer leg was registered when the
	// transfer was requested.
	ErrNoActiveCall = errors.New("transfer: no active customer call")

	// ErrCustomerUpdateFailed means the provider rejected the hold
	// redirect (e.g. the customer call already ended).
	ErrCustomerUpdateFailed = errors.New("transfer: customer hold redirect failed")

	// ErrDepartmentDialFailed means the provider rejected the outbound
	// department dial after the customer was parked.
	ErrDepartmentDialFailed = errors.New("transfer: department dial failed")

	// ErrTransferInFlight means the single transfer slot is already held.
	ErrTransferInFlight = errors.New("transfer: a transfer is already in progress")
)

// Request asks to move the active customer call to a department. Token is
// the opaque correlation identifier supplied by the invoking tool; it is
// echoed in the result so the tool can match responses to requests.
type Request struct {
	Department string
	Token      string
}

// Result is the success payload for an initiated transfer.
type Result struct {
	Token   string
	Message string

	Department        string
	DestinationNumber string
	DepartmentCallID  string
}

// Endpoints are the externally reachable instruction URLs handed to the
// telephony provider.
type Endpoints struct {
	// ConferenceURL serves the bridge-merge document for both legs.
	ConferenceURL string

	// AnnounceURL serves the apology-and-hangup document.
	AnnounceURL string

	// StatusCallbackURL receives department leg lifecycle notifications.
	StatusCallbackURL string
}

func (e Endpoints) validate() error {
	if e.ConferenceURL == "" || e.AnnounceURL == "" || e.StatusCallbackURL == "" {
		return errors.New("transfer: all endpoint urls are required")
	}
	return nil
}

// SlotGuard bounds the number of in-flight transfer bridges to one.
// A nil guard disables the limit.
type SlotGuard interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Orchestrator runs the transfer state machine: park the customer in the
// conference, dial the department at the same conference, and react to the
// department leg's status callbacks.
type Orchestrator struct {
	directory  *directory.Directory
	store      registry.ActiveCallStore
	provider   telephony.CallController
	endpoints  Endpoints
	fromNumber string

	// slots is optional; see SlotGuard.
	slots SlotGuard
}

func NewOrchestrator(dir *directory.Directory, store registry.ActiveCallStore, provider telephony.CallController, endpoints Endpoints, fromNumber string, slots SlotGuard) (*Orchestrator, error) {
	if dir == nil {
		return nil, errors.New("transfer: directory is required")
	}
	if store == nil {
		return nil, errors.New("transfer: call store is required")
	}
	if provider == nil {
		return nil, errors.New("transfer: call controller is required")
	}
	if err := endpoints.validate(); err != nil {
		return nil, err
	}
	if fromNumber == "" {
		return nil, errors.New("transfer: from number is required")
	}
	return &Orchestrator{
		directory:  dir,
		store:      store,
		provider:   provider,
		endpoints:  endpoints,
		fromNumber: fromNumber,
		slots:      slots,
	}, nil
}

// InitiateTransfer parks the active customer call in the conference and
// dials the requested department into the same room.
//
// Failure ordering matters: the directory lookup cannot fail, a missing
// customer leg fails before any provider call, and a rejected hold
// redirect fails before the department is dialed. A failed dial triggers a
// best-effort compensating redirect of the parked customer to the fallback
// announcement so nobody is left in a silent room.
func (o *Orchestrator) InitiateTransfer(ctx context.Context, req Request) (Result, error) {
	log := logger.From(ctx)

	dept := o.directory.Canonical(req.Department)
	number := o.directory.Resolve(req.Department)

	customerID, err := o.store.ActiveCustomerCall(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("transfer: read active customer call: %w", err)
	}
	if customerID == "" {
		return Result{}, ErrNoActiveCall
	}

	if o.slots != nil {
		ok, err := o.slots.Acquire(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("transfer: acquire slot: %w", err)
		}
		if !ok {
			return Result{}, ErrTransferInFlight
		}
	}

	log.Info("transfer requested",
		"department", dept,
		"destination", number,
		"customer_call_id", customerID,
	)

	// Hold step: the customer hears conference-join audio until the
	// department leg arrives.
	err = o.provider.UpdateCall(ctx, customerID, telephony.CallUpdate{
		InstructionURL: o.endpoints.ConferenceURL,
	})
	if err != nil {
		o.releaseSlot(ctx)
		return Result{}, fmt.Errorf("%w: %v", ErrCustomerUpdateFailed, err)
	}

	deptCallID, err := o.provider.CreateCall(ctx, telephony.CallCreate{
		To:                number,
		From:              o.fromNumber,
		InstructionURL:    o.endpoints.ConferenceURL,
		StatusCallbackURL: o.endpoints.StatusCallbackURL,
	})
	if err != nil {
		// The customer is already parked; send them to the announcement
		// instead of leaving them stranded in the room.
		if annErr := o.provider.UpdateCall(ctx, customerID, telephony.CallUpdate{
			InstructionURL: o.endpoints.AnnounceURL,
		}); annErr != nil {
			log.Error("fallback redirect after failed dial also failed",
				"customer_call_id", customerID, "err", annErr)
		}
		o.releaseSlot(ctx)
		return Result{}, fmt.Errorf("%w: %v", ErrDepartmentDialFailed, err)
	}

	log.Info("department leg dialed",
		"department", dept,
		"department_call_id", deptCallID,
		"customer_call_id", customerID,
	)

	return Result{
		Token:             req.Token,
		Message:           fmt.Sprintf("Transfer initiated to %s.", dept),
		Department:        dept,
		DestinationNumber: number,
		DepartmentCallID:  deptCallID,
	}, nil
}

// HandleDepartmentStatus reacts to a status notification for the
// department leg. Unreachable outcomes (no-answer, busy, failed) redirect
// whichever customer call is currently active to the fallback
// announcement; every other status needs no action.
//
// This handler is terminal: the provider only expects an acknowledgment,
// so internal failures are logged and swallowed, never returned.
func (o *Orchestrator) HandleDepartmentStatus(ctx context.Context, callID string, status calls.CallStatus) {
	log := logger.From(ctx)
	log.Info("department status received", "call_id", callID, "status", string(status))

	switch {
	case status.IsUnreachable():
		// Look the customer up fresh; the active leg may have changed
		// since the transfer was initiated.
		customerID, err := o.store.ActiveCustomerCall(ctx)
		if err != nil {
			log.Error("active call lookup failed during fallback", "err", err)
			o.releaseSlot(ctx)
			return
		}
		if customerID == "" {
			log.Warn("no active customer call to redirect to fallback", "department_call_id", callID)
			o.releaseSlot(ctx)
			return
		}
		if err := o.provider.UpdateCall(ctx, customerID, telephony.CallUpdate{
			InstructionURL: o.endpoints.AnnounceURL,
		}); err != nil {
			log.Error("failed to redirect customer call to fallback",
				"customer_call_id", customerID, "err", err)
		}
		o.releaseSlot(ctx)

	case status == calls.CallStatusCompleted:
		// Bridge ended normally; free the transfer slot.
		o.releaseSlot(ctx)
	}
}

func (o *Orchestrator) releaseSlot(ctx context.Context) {
	if o.slots == nil {
		return
	}
	if err := o.slots.Release(ctx); err != nil {
		logger.From(ctx).Error("transfer slot release failed", "err", err)
	}
}
