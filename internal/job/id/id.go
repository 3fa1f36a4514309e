// Package id provides unique identifier generation for jobs.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generate creates a new opaque task id.
// Format: task-<uuid>
// Example: task-8f14e45f-ceea-4672-9b5a-5c3bd2f9f3a1
func Generate() string {
	return fmt.Sprintf("task-%s", uuid.NewString())
}
