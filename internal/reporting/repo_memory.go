package reporting

import (
	"context"
	"sort"
	"sync"

	"callbridge/internal/calls"
)

// MemoryRepo is a simple in-memory reporting repository for tests and
// early development.
type MemoryRepo struct {
	mu    sync.Mutex
	Calls []calls.Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCalls(_ context.Context, req ListCallsRequest) ([]calls.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]calls.Call, 0)
	for _, c := range r.Calls {
		if c.CreatedAt.Before(req.Range.From) || !c.CreatedAt.Before(req.Range.To) {
			continue
		}
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		if req.Role != "" && c.Role != req.Role {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}
