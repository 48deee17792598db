package registry

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.SetActiveCustomerCall(ctx, "CA_A"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetActiveCustomerCall(ctx, "CA_B"); err != nil {
		t.Fatalf("set: %v", err)
	}
	id, err := s.ActiveCustomerCall(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if id != "CA_B" {
		t.Fatalf("expected CA_B, got %q", id)
	}
}

func TestMemoryStore_EmptyWhenNeverSet(t *testing.T) {
	id, err := NewMemoryStore().ActiveCustomerCall(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty sentinel, got %q", id)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.SetActiveCustomerCall(ctx, "CA_A")
	if err := s.ClearActiveCustomerCall(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	id, _ := s.ActiveCustomerCall(ctx)
	if id != "" {
		t.Fatalf("expected cleared slot, got %q", id)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	// Exercises the mutex under the race detector; the final value must be
	// one of the written ids, never a torn read.
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	ids := []string{"CA_1", "CA_2", "CA_3", "CA_4"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = s.SetActiveCustomerCall(ctx, id)
			_, _ = s.ActiveCustomerCall(ctx)
		}(id)
	}
	wg.Wait()

	got, _ := s.ActiveCustomerCall(ctx)
	found := false
	for _, id := range ids {
		if got == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("unexpected final id %q", got)
	}
}
