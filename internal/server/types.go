// Package server provides the HTTP surface for the AdReel API.
// It includes handlers, middleware, routes, and DTOs separated from
// domain types.
package server

// CreateJobRequest is the HTTP request body for submitting a job.
type CreateJobRequest struct {
	// Subject is the product or topic the video advertises.
	Subject string `json:"subject" validate:"required"`
	// ImageURL is the source image the render starts from.
	ImageURL string `json:"imageUrl" validate:"required,url"`
	// Style selects the creative direction; defaults to handheld.
	Style string `json:"style" validate:"omitempty,oneof=handheld cinematic"`
}

// CreateJobResponse is the HTTP response after submitting a job.
type CreateJobResponse struct {
	// TaskID is the id to poll for progress.
	TaskID string `json:"taskId"`
}

// JobResponse is the HTTP response for polling a job.
type JobResponse struct {
	Status       string            `json:"status"`
	VideoURL     string            `json:"videoUrl,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Error        string            `json:"error,omitempty"`
	Prompt       string            `json:"prompt,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
