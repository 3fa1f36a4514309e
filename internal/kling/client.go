// Package kling provides an HTTP client for a Kling-style
// image-to-video rendering API with a create-task endpoint and a
// poll-by-task-id status endpoint.
package kling

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/adreel/adreel-api/internal/httpx"
)

// Static errors for render calls.
var (
	// ErrAPIKeyNotSet is returned when a render is attempted without a
	// KLING_API_KEY configured.
	ErrAPIKeyNotSet = errors.New("kling: KLING_API_KEY is not set")
	// ErrNoTaskID is returned when the submit response is well-formed but
	// carries no task identifier. Distinct from a transport failure: the
	// provider accepted the request shape and still returned nothing
	// usable.
	ErrNoTaskID = errors.New("kling: submit returned no task id")
	// ErrNoVideoURL is returned when the provider reports success with no
	// deliverable URL.
	ErrNoVideoURL = errors.New("kling: success state with no video url")
)

const defaultBaseURL = "https://api.klingai.com"

// State is the provider-reported task state.
type State string

const (
	StateSuccess State = "success"
	StateError   State = "error"
	// Anything else ("pending", "queueing", ...) means keep polling.
)

// SubmitOptions contains the fixed render configuration. Every job uses
// portrait framing suited to short-form feeds.
type SubmitOptions struct {
	AspectRatio     string
	Frames          int
	RemoveWatermark bool
}

// DefaultSubmitOptions returns the render configuration used by the
// pipeline.
func DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{
		AspectRatio:     "9:16",
		Frames:          121,
		RemoveWatermark: true,
	}
}

// PollResult contains the outcome of one status poll.
type PollResult struct {
	State        State
	VideoURL     string // set when State is StateSuccess
	ThumbnailURL string // optional, set when State is StateSuccess
	Error        string // set when State is StateError
}

// Renderer defines the interface for video rendering providers.
type Renderer interface {
	// Submit creates a render task and returns its opaque id.
	Submit(ctx context.Context, prompt, imageURL string, opts SubmitOptions) (string, error)

	// Poll fetches the task state once, without retry. A dropped poll is
	// the caller's business: it waits for the next interval.
	Poll(ctx context.Context, taskID string) (PollResult, error)
}

// Client is the HTTP implementation of Renderer.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpx.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the rendering API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a render client. An empty API key is allowed;
// Submit and Poll report ErrAPIKeyNotSet before issuing any call.
func NewClient(apiKey string, httpClient *httpx.Client, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type submitRequest struct {
	Prompt          string `json:"prompt"`
	ImageURL        string `json:"image_url"`
	AspectRatio     string `json:"aspect_ratio"`
	Frames          int    `json:"frames"`
	RemoveWatermark bool   `json:"remove_watermark"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	State  string        `json:"state"`
	Videos []statusVideo `json:"videos,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type statusVideo struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Submit creates a render task from the prompt and source image.
func (c *Client) Submit(ctx context.Context, prompt, imageURL string, opts SubmitOptions) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyNotSet
	}

	req := httpx.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/v1/videos",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		Body: submitRequest{
			Prompt:          prompt,
			ImageURL:        imageURL,
			AspectRatio:     opts.AspectRatio,
			Frames:          opts.Frames,
			RemoveWatermark: opts.RemoveWatermark,
		},
	}

	var resp submitResponse
	if err := c.http.DoJSON(ctx, "render submission", req, &resp); err != nil {
		return "", fmt.Errorf("kling: submit: %w", err)
	}

	if resp.TaskID == "" {
		if resp.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrNoTaskID, resp.Error)
		}
		return "", ErrNoTaskID
	}

	return resp.TaskID, nil
}

// Poll fetches the task state once. On success it extracts the first
// result URL; a success state with no URL is itself an error.
func (c *Client) Poll(ctx context.Context, taskID string) (PollResult, error) {
	if c.apiKey == "" {
		return PollResult{}, ErrAPIKeyNotSet
	}

	req := httpx.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v1/videos/%s", c.baseURL, taskID),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
	}

	var resp statusResponse
	if err := c.http.DoJSONOnce(ctx, "render status", req, &resp); err != nil {
		return PollResult{}, fmt.Errorf("kling: poll: %w", err)
	}

	result := PollResult{State: State(resp.State)}
	switch result.State {
	case StateSuccess:
		if len(resp.Videos) == 0 || resp.Videos[0].URL == "" {
			return PollResult{}, ErrNoVideoURL
		}
		result.VideoURL = resp.Videos[0].URL
		result.ThumbnailURL = resp.Videos[0].ThumbnailURL
	case StateError:
		result.Error = resp.Error
		if result.Error == "" {
			result.Error = "video generation failed"
		}
	}

	return result, nil
}
