package job

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestRedisLedger connects to the Redis named by REDIS_ADDR, or
// skips the test when none is available.
func newTestRedisLedger(t *testing.T) *RedisLedger {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis ledger tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLedger(rdb)
}

func TestRedisLedger_CreateGetUpdate(t *testing.T) {
	ledger := newTestRedisLedger(t)
	ctx := context.Background()
	taskID := "task-" + uuid.NewString()

	if err := ledger.Create(ctx, NewRecord(taskID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ledger.Create(ctx, NewRecord(taskID)); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	ok, err := ledger.Has(ctx, taskID)
	if err != nil || !ok {
		t.Fatalf("expected existing record, got ok=%v err=%v", ok, err)
	}

	err = ledger.Update(ctx, taskID, Update{
		Status:   StatusPtr(StatusReady),
		VideoURL: StringPtr("https://cdn/v.mp4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ledger.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusReady || got.VideoURL != "https://cdn/v.mp4" {
		t.Errorf("unexpected record %+v", got)
	}

	// Terminal status must not move again.
	_ = ledger.Update(ctx, taskID, Update{Status: StatusPtr(StatusError)})
	got, _ = ledger.Get(ctx, taskID)
	if got.Status != StatusReady {
		t.Errorf("terminal status changed to %s", got.Status)
	}
}

func TestRedisLedger_MissingID(t *testing.T) {
	ledger := newTestRedisLedger(t)
	ctx := context.Background()
	taskID := "task-" + uuid.NewString()

	if _, err := ledger.Get(ctx, taskID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if err := ledger.Update(ctx, taskID, Update{Status: StatusPtr(StatusReady)}); err != nil {
		t.Errorf("update of missing id must be a no-op, got %v", err)
	}
	ok, err := ledger.Has(ctx, taskID)
	if err != nil || ok {
		t.Errorf("expected missing record, got ok=%v err=%v", ok, err)
	}
}
