// Package search provides a small client for a Tavily-compatible web search
// REST API, used by the gather collaborator to retrieve source material.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.tavily.com"

// Result is one retrieved document from the search API.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response is the decoded search API reply.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Options configures the search client.
type Options struct {
	// BaseURL of the API. Defaults to the hosted endpoint; tests point it at
	// an httptest server.
	BaseURL string

	// MaxResults caps the number of results requested per query.
	MaxResults int

	// SearchDepth selects "basic" or "advanced" retrieval.
	SearchDepth string

	// IncludeAnswer requests the API's synthesized answer alongside results.
	IncludeAnswer bool

	// HTTPClient allows injecting a custom transport. Defaults to a client
	// with a 30s timeout.
	HTTPClient *http.Client
}

// Client calls the search API. Configuration is immutable after
// construction, so a single client is safe to share across stage
// invocations and runs.
type Client struct {
	apiKey string
	opts   Options
}

// NewClient creates a search client for the given API key.
func NewClient(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:       defaultBaseURL,
		MaxResults:    5,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{apiKey: apiKey, opts: opts}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// Search runs one query against the API.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   c.opts.SearchDepth,
		MaxResults:    c.opts.MaxResults,
		IncludeAnswer: c.opts.IncludeAnswer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search api returned status %d: %s", resp.StatusCode, snippet)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &out, nil
}
