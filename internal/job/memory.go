package job

import (
	"context"
	"sync"
)

// Compile-time check that MemoryLedger implements Ledger.
var _ Ledger = (*MemoryLedger)(nil)

// MemoryLedger is an in-memory implementation of Ledger. It uses a map
// with RWMutex for thread-safe access. Suitable for tests and keyless
// local runs; production uses RedisLedger so records survive restarts.
type MemoryLedger struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

// NewMemoryLedger creates a new in-memory job ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		jobs: make(map[string]*Record),
	}
}

// Create stores a new record, cloning to avoid external mutations.
func (l *MemoryLedger) Create(_ context.Context, rec *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.jobs[rec.ID]; ok {
		return ErrAlreadyExists
	}
	l.jobs[rec.ID] = rec.Clone()
	return nil
}

// Update merges a partial update into the stored record.
func (l *MemoryLedger) Update(_ context.Context, id string, u Update) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.jobs[id]
	if !ok {
		return nil
	}
	rec.apply(u)
	return nil
}

// Get retrieves a record by id, returning a clone.
func (l *MemoryLedger) Get(_ context.Context, id string) (*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return rec.Clone(), nil
}

// Len returns the number of stored records.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.jobs)
}

// Has reports whether a record exists.
func (l *MemoryLedger) Has(_ context.Context, id string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.jobs[id]
	return ok, nil
}
