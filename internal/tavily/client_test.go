package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/adreel/adreel-api/internal/httpx"
)

func TestSearch_MissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := NewClient("", httpx.NewClient(), WithBaseURL(server.URL))
	_, err := c.Search(context.Background(), "Glow Serum trends")

	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Fatalf("expected ErrAPIKeyNotSet, got %v", err)
	}
	if !strings.Contains(err.Error(), "TAVILY_API_KEY") {
		t.Errorf("expected error to name the missing variable, got %q", err.Error())
	}
	if calls.Load() != 0 {
		t.Error("expected no HTTP call for a missing key")
	}
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SearchDepth != "advanced" {
			t.Errorf("expected advanced search depth, got %q", req.SearchDepth)
		}
		if req.MaxResults != 3 {
			t.Errorf("expected 3 max results, got %d", req.MaxResults)
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"t1","url":"u1","content":"c1"},{"title":"t2","url":"u2","content":"c2"}]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", httpx.NewClient(), WithBaseURL(server.URL))
	resp, err := c.Search(context.Background(), "Glow Serum trends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Title != "t1" {
		t.Errorf("expected first title 't1', got %q", resp.Results[0].Title)
	}
	if !strings.Contains(resp.Serialize(), "c2") {
		t.Errorf("expected serialized results to carry content, got %q", resp.Serialize())
	}
}

func TestSearch_MissingResultsFieldFallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"serums are trending"}`))
	}))
	defer server.Close()

	c := NewClient("test-key", httpx.NewClient(), WithBaseURL(server.URL))
	resp, err := c.Search(context.Background(), "Glow Serum trends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no parsed results, got %d", len(resp.Results))
	}
	if !strings.Contains(resp.Serialize(), "serums are trending") {
		t.Errorf("expected raw body fallback, got %q", resp.Serialize())
	}
}

func TestSearch_ProviderDownWrapsStageLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient("test-key", httpx.NewClient(httpx.WithBaseBackoff(1)), WithBaseURL(server.URL))
	_, err := c.Search(context.Background(), "Glow Serum trends")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "trend research") {
		t.Errorf("expected stage label in error, got %q", err.Error())
	}
}
