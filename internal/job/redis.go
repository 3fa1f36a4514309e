package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Compile-time check that RedisLedger implements Ledger.
var _ Ledger = (*RedisLedger)(nil)

// keyPrefix namespaces job records in Redis.
const keyPrefix = "adreel:jobs:"

// RedisLedger persists job records as JSON values in Redis, so a poller
// querying after a process restart still sees the job. Update is a
// read-merge-write without a transaction: the launcher is the sole
// writer per id, so last-write-wins per key is sufficient.
type RedisLedger struct {
	rdb *redis.Client
}

// NewRedisLedger creates a Redis-backed job ledger.
func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

func key(id string) string {
	return keyPrefix + id
}

// Create stores a new record. SETNX enforces that an existing id is
// never overwritten.
func (l *RedisLedger) Create(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ledger: marshal record: %w", err)
	}
	ok, err := l.rdb.SetNX(ctx, key(rec.ID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("ledger: create %s: %w", rec.ID, err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

// Update merges a partial update into the stored record. A missing id
// is a no-op.
func (l *RedisLedger) Update(ctx context.Context, id string, u Update) error {
	rec, err := l.Get(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rec.apply(u)
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ledger: marshal record: %w", err)
	}
	if err := l.rdb.Set(ctx, key(id), raw, 0).Err(); err != nil {
		return fmt.Errorf("ledger: update %s: %w", id, err)
	}
	return nil
}

// Get retrieves a record by id.
func (l *RedisLedger) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := l.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("ledger: unmarshal record %s: %w", id, err)
	}
	return &rec, nil
}

// Has reports whether a record exists.
func (l *RedisLedger) Has(ctx context.Context, id string) (bool, error) {
	n, err := l.rdb.Exists(ctx, key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger: exists %s: %w", id, err)
	}
	return n > 0, nil
}
