package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLedger_CreateAndGet(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	rec := NewRecord("task-1")
	if err := ledger.Create(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ledger.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "task-1" || got.Status != StatusProcessing {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestMemoryLedger_CreateDuplicate(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	_ = ledger.Create(ctx, NewRecord("task-1"))
	err := ledger.Create(ctx, NewRecord("task-1"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryLedger_GetNotFound(t *testing.T) {
	ledger := NewMemoryLedger()

	_, err := ledger.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryLedger_Has(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	_ = ledger.Create(ctx, NewRecord("task-1"))

	ok, err := ledger.Has(ctx, "task-1")
	if err != nil || !ok {
		t.Errorf("expected existing record, got ok=%v err=%v", ok, err)
	}

	ok, err = ledger.Has(ctx, "task-2")
	if err != nil || ok {
		t.Errorf("expected missing record, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryLedger_UpdateMergesFields(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	_ = ledger.Create(ctx, NewRecord("task-1"))

	err := ledger.Update(ctx, "task-1", Update{
		Status:   StatusPtr(StatusReady),
		VideoURL: StringPtr("https://cdn/v.mp4"),
		Prompt:   StringPtr("a prompt"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := ledger.Get(ctx, "task-1")
	if got.Status != StatusReady || got.VideoURL != "https://cdn/v.mp4" || got.Prompt != "a prompt" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestMemoryLedger_UpdateMissingIsNoOp(t *testing.T) {
	ledger := NewMemoryLedger()

	err := ledger.Update(context.Background(), "nonexistent", Update{Status: StatusPtr(StatusReady)})
	if err != nil {
		t.Errorf("update after delete must be harmless, got %v", err)
	}
}

func TestMemoryLedger_TerminalStatusImmutable(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	_ = ledger.Create(ctx, NewRecord("task-1"))

	_ = ledger.Update(ctx, "task-1", Update{Status: StatusPtr(StatusReady), VideoURL: StringPtr("https://cdn/v.mp4")})
	_ = ledger.Update(ctx, "task-1", Update{Status: StatusPtr(StatusError), Error: StringPtr("late failure")})

	got, _ := ledger.Get(ctx, "task-1")
	if got.Status != StatusReady {
		t.Errorf("terminal status changed to %s", got.Status)
	}
}

func TestMemoryLedger_GetReturnsClone(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	_ = ledger.Create(ctx, NewRecord("task-1"))

	got, _ := ledger.Get(ctx, "task-1")
	got.Status = StatusError

	fresh, _ := ledger.Get(ctx, "task-1")
	if fresh.Status != StatusProcessing {
		t.Error("modifying returned record should not affect the ledger")
	}
}
