package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSearch(t *testing.T) {
	var received searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(Response{
			Query:  received.Query,
			Answer: "synthesized answer",
			Results: []Result{
				{Title: "Hit", URL: "https://example.com", Content: "body", Score: 0.92},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", func(o *Options) {
		o.BaseURL = srv.URL
		o.MaxResults = 3
		o.SearchDepth = "advanced"
	})

	resp, err := c.Search(context.Background(), "quantum computing")
	require.NoError(t, err)

	assert.Equal(t, "test-key", received.APIKey)
	assert.Equal(t, "quantum computing", received.Query)
	assert.Equal(t, 3, received.MaxResults)
	assert.Equal(t, "advanced", received.SearchDepth)
	assert.True(t, received.IncludeAnswer)

	assert.Equal(t, "synthesized answer", resp.Answer)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0.92, resp.Results[0].Score)
}

func TestClientSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", func(o *Options) { o.BaseURL = srv.URL })

	_, err := c.Search(context.Background(), "topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClientSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient("key", func(o *Options) { o.BaseURL = srv.URL })

	_, err := c.Search(context.Background(), "topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClientSearchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient("key", func(o *Options) { o.BaseURL = srv.URL })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "topic")
	assert.Error(t, err)
}
