package reporting

import (
	"context"
	"errors"

	"callbridge/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Repository abstracts read access to stored call legs.
// Implementations must treat the store as immutable history.
type Repository interface {
	ListCalls(ctx context.Context, req ListCallsRequest) ([]calls.Call, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// ListCalls validates and forwards the query. Pure formatting concern;
// no orchestration state is consulted.
func (s *Service) ListCalls(ctx context.Context, req ListCallsRequest) (ListCallsResult, error) {
	if s.repo == nil {
		return ListCallsResult{}, errors.New("reporting: repository not configured")
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return ListCallsResult{}, ErrInvalidRequest
	}
	if req.Status != "" && !req.Status.IsValid() {
		return ListCallsResult{}, ErrInvalidRequest
	}
	if req.Role != "" && req.Role != calls.RoleCustomer && req.Role != calls.RoleDepartment {
		return ListCallsResult{}, ErrInvalidRequest
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	rows, err := s.repo.ListCalls(ctx, req)
	if err != nil {
		return ListCallsResult{}, err
	}
	return ListCallsResult{Calls: rows, Total: len(rows)}, nil
}
