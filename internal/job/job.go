// Package job provides the durable job ledger and the launcher that
// runs the generation pipeline in the background. The ledger is the
// only state shared between the submission path and the background run.
package job

import (
	"time"
)

// Status represents the externally visible state of a job. Transitions
// are monotonic: processing → ready or processing → error, never back.
type Status string

const (
	// StatusProcessing indicates the pipeline is still running.
	StatusProcessing Status = "processing"
	// StatusReady indicates the video artifact is available.
	StatusReady Status = "ready"
	// StatusError indicates the pipeline terminated with a failure.
	StatusError Status = "error"
)

// IsTerminal returns true if the status will not change further.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

// Record is the unit of durable state, keyed by task id.
type Record struct {
	ID           string            `json:"id"`
	Status       Status            `json:"status"`
	VideoURL     string            `json:"video_url,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Prompt       string            `json:"prompt,omitempty"`
	Error        string            `json:"error,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewRecord creates a processing record for a freshly submitted job.
func NewRecord(id string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        id,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone creates a deep copy of the record for safe reads.
func (r *Record) Clone() *Record {
	out := *r
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Update is a partial record mutation. Nil fields are left unchanged;
// Metadata entries are merged additively.
type Update struct {
	Status       *Status
	VideoURL     *string
	ThumbnailURL *string
	Prompt       *string
	Error        *string
	Metadata     map[string]string
}

// apply merges the update into the record. A terminal status is never
// overwritten: a late status write against a finished job is dropped
// while the rest of the merge still lands.
func (r *Record) apply(u Update) {
	if u.Status != nil && !r.Status.IsTerminal() {
		r.Status = *u.Status
	}
	if u.VideoURL != nil {
		r.VideoURL = *u.VideoURL
	}
	if u.ThumbnailURL != nil {
		r.ThumbnailURL = *u.ThumbnailURL
	}
	if u.Prompt != nil {
		r.Prompt = *u.Prompt
	}
	if u.Error != nil {
		r.Error = *u.Error
	}
	if len(u.Metadata) > 0 {
		if r.Metadata == nil {
			r.Metadata = make(map[string]string, len(u.Metadata))
		}
		for k, v := range u.Metadata {
			r.Metadata[k] = v
		}
	}
	r.UpdatedAt = time.Now().UTC()
}

// StatusPtr is a convenience for building Updates.
func StatusPtr(s Status) *Status {
	return &s
}

// StringPtr is a convenience for building Updates.
func StringPtr(s string) *string {
	return &s
}
