// Package openai provides a chat-completion client for prompt
// synthesis. It speaks the OpenAI wire format and works with any
// compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adreel/adreel-api/internal/httpx"
)

// Static errors for completion calls.
var (
	// ErrAPIKeyNotSet is returned when a completion is attempted without
	// an OPENAI_API_KEY configured.
	ErrAPIKeyNotSet = errors.New("openai: OPENAI_API_KEY is not set")
	// ErrNoContent is returned when the provider answers successfully but
	// the completion is empty. Distinct from a transport failure: the
	// provider is up, its contract is not being honored.
	ErrNoContent = errors.New("openai: completion returned no content")
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Completer defines the interface for text-generation providers.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Client is the HTTP implementation of Completer.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *httpx.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for an OpenAI-compatible API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient creates a completion client. An empty API key is allowed;
// Complete reports ErrAPIKeyNotSet before issuing any call.
func NewClient(apiKey string, httpClient *httpx.Client, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		http:    httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one chat completion and returns the trimmed text of the
// first generated message.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyNotSet
	}

	req := httpx.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		Body: chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			MaxTokens: maxTokens,
		},
	}

	var resp chatResponse
	if err := c.http.DoJSON(ctx, "prompt synthesis", req, &resp); err != nil {
		return "", fmt.Errorf("openai: completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoContent
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrNoContent
	}

	return content, nil
}
