package job

import (
	"context"
	"errors"
)

// Static errors for ledger operations.
var (
	// ErrJobNotFound is returned when a job cannot be found by id.
	ErrJobNotFound = errors.New("job not found")
	// ErrAlreadyExists is returned when Create is called with an id that
	// is already in the ledger. Ids are never reused.
	ErrAlreadyExists = errors.New("job already exists")
)

// Ledger defines the interface for job record persistence. There is
// exactly one writer per id after creation (the launcher); readers may
// overlap that writer freely.
type Ledger interface {
	// Create stores a new record. Returns ErrAlreadyExists if the id is
	// taken; an existing record, terminal or not, is never overwritten.
	Create(ctx context.Context, rec *Record) error

	// Update merges a partial update into the record. A missing id is a
	// no-op, not an error, so a write racing an external delete is
	// harmless. A terminal status is never changed.
	Update(ctx context.Context, id string, u Update) error

	// Get retrieves a record by id. Returns ErrJobNotFound if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// Has reports whether a record exists without fetching it.
	Has(ctx context.Context, id string) (bool, error)
}
