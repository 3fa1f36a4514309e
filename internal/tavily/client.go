// Package tavily provides an HTTP client for the Tavily search API,
// used to gather marketing-trend signals about a product before prompt
// synthesis.
package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/adreel/adreel-api/internal/httpx"
)

// ErrAPIKeyNotSet is returned when a search is attempted without a
// TAVILY_API_KEY configured. This is a configuration error and is never
// retried.
var ErrAPIKeyNotSet = errors.New("tavily: TAVILY_API_KEY is not set")

const (
	defaultBaseURL = "https://api.tavily.com"
	// maxResults bounds how many trend snippets one search returns.
	maxResults = 3
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse holds the parsed hits plus the raw body. The raw body
// is kept so callers can fall back to it when the results field is
// absent; this client fetches, it does not interpret.
type SearchResponse struct {
	Results []Result
	raw     json.RawMessage
}

// Serialize returns the results as JSON, or the raw response body when
// the results field was missing.
func (r *SearchResponse) Serialize() string {
	if len(r.Results) == 0 {
		return string(r.raw)
	}
	out, err := json.Marshal(r.Results)
	if err != nil {
		return string(r.raw)
	}
	return string(out)
}

// Searcher defines the interface for trend search providers.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// Client is the HTTP implementation of Searcher.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpx.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the Tavily API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a Tavily client. An empty API key is allowed here;
// Search reports ErrAPIKeyNotSet before issuing any call so a missing
// key surfaces as a job-level error rather than a startup failure.
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

type searchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

// Search runs one advanced-depth query and returns the raw hits.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	req := httpx.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/search",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		Body: searchRequest{
			Query:       query,
			SearchDepth: "advanced",
			MaxResults:  maxResults,
		},
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, "trend research", req, &raw); err != nil {
		return nil, fmt.Errorf("tavily: search: %w", err)
	}

	resp := &SearchResponse{raw: raw}
	var parsed struct {
		Results []Result `json:"results"`
	}
	// A body without a results field is not an error; the raw payload
	// is passed downstream as-is.
	_ = json.Unmarshal(raw, &parsed)
	resp.Results = parsed.Results

	return resp, nil
}
