package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adreel/adreel-api/internal/httpx"
)

func TestComplete_MissingAPIKey(t *testing.T) {
	c := NewClient("", httpx.NewClient())
	_, err := c.Complete(context.Background(), "system", "user", 100)
	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Fatalf("expected ErrAPIKeyNotSet, got %v", err)
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("expected default model, got %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if req.MaxTokens != 300 {
			t.Errorf("expected bounded completion, got max_tokens=%d", req.MaxTokens)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A handheld shot of the serum.  "}}]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", httpx.NewClient(), WithBaseURL(server.URL))
	got, err := c.Complete(context.Background(), "system prompt", "user prompt", 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A handheld shot of the serum." {
		t.Errorf("expected trimmed content, got %q", got)
	}
}

func TestComplete_EmptyCompletionIsNoContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"blank content", `{"choices":[{"message":{"content":"   "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient("test-key", httpx.NewClient(), WithBaseURL(server.URL))
			_, err := c.Complete(context.Background(), "s", "u", 100)

			if !errors.Is(err, ErrNoContent) {
				t.Fatalf("expected ErrNoContent, got %v", err)
			}
			// Must be tellable apart from a transport failure.
			var exhausted *httpx.RetriesExhaustedError
			if errors.As(err, &exhausted) {
				t.Error("no-content error must not look like a transport error")
			}
		})
	}
}

func TestComplete_TransportFailureCarriesStageLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient("test-key", httpx.NewClient(httpx.WithBaseBackoff(1)), WithBaseURL(server.URL))
	_, err := c.Complete(context.Background(), "s", "u", 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "prompt synthesis") {
		t.Errorf("expected stage label in error, got %q", err.Error())
	}
}
