package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{CallID: "CA1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogTransferInitiated(context.Background(), "CA2", "hr", "t1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].Type != EventTypeTransferInitiated {
		t.Fatalf("expected transfer_initiated, got %q", evs[0].Type)
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned: %+v", evs[0])
	}
	if evs[0].Department != "hr" || evs[0].Token != "t1" {
		t.Fatalf("expected transfer fields captured: %+v", evs[0])
	}
}

func TestService_LogLegStatus(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogLegStatus(context.Background(), "CA2", "no-answer"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if len(evs) != 1 || evs[0].CallID != "CA2" || evs[0].Message != "no-answer" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}
