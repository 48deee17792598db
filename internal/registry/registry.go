package registry

import (
	"context"
	"sync"
)

// ActiveCallStore tracks the provider identifier of the currently active
// customer call leg so asynchronous webhooks can be correlated back to it.
//
// Semantics are deliberately last-write-wins: a new inbound call
// unconditionally overwrites the previous identifier. The store holds one
// slot; this is the documented capacity limit of the service, not an
// accident of shared state.
type ActiveCallStore interface {
	// SetActiveCustomerCall overwrites the tracked customer call id.
	SetActiveCustomerCall(ctx context.Context, id string) error

	// ActiveCustomerCall returns the most recently set id, or "" when no
	// customer call has been registered yet.
	ActiveCustomerCall(ctx context.Context) (string, error)

	// ClearActiveCustomerCall forgets the tracked id. Clearing an empty
	// slot is a no-op.
	ClearActiveCustomerCall(ctx context.Context) error
}

// MemoryStore is a process-local ActiveCallStore. Reads and writes are
// atomic with respect to each other; suitable for a single-instance
// deployment and for tests.
type MemoryStore struct {
	mu sync.Mutex
	id string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) SetActiveCustomerCall(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryStore) ActiveCustomerCall(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryStore) ClearActiveCustomerCall(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
