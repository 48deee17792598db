package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call-control events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records the decision trail of the transfer flow.
//
// IMPORTANT:
// - The trail is internal-only. Do not expose these records to callers.
// - Callers should treat recording as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCallRegistered records a new customer leg taking the active slot.
func (s *Service) LogCallRegistered(ctx context.Context, callID string) error {
	return s.Append(ctx, Event{
		Type:    EventTypeCallRegistered,
		CallID:  callID,
		Message: "customer call registered",
	})
}

// LogTransferInitiated records a transfer that reached the dial stage.
// callID is the department leg created for the transfer.
func (s *Service) LogTransferInitiated(ctx context.Context, callID, department, token string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeTransferInitiated,
		CallID:     callID,
		Department: department,
		Token:      token,
		Message:    "transfer initiated",
	})
}

// LogTransferFailed records a transfer that could not be started.
func (s *Service) LogTransferFailed(ctx context.Context, department, token, reason string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeTransferFailed,
		Department: department,
		Token:      token,
		Message:    reason,
	})
}

// LogLegStatus records a department-leg lifecycle notification.
func (s *Service) LogLegStatus(ctx context.Context, callID, status string) error {
	return s.Append(ctx, Event{
		Type:    EventTypeLegStatus,
		CallID:  callID,
		Message: status,
	})
}
