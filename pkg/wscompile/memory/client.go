// Package memory implements a thin client for the long-term memory store.
// Unlike session context, memories compete as ordinary candidates: they
// enter scoring and selection on equal footing with generator output.
package memory

import (
	"context"
	"fmt"

	wshttp "github.com/contextforge/wscompile/pkg/internal/http"
)

// Memory is one stored fact or preference about a user.
type Memory struct {
	Text      string   `json:"text"`
	Source    string   `json:"source"`
	Relevance *float64 `json:"relevance,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// MemoriesResponse is the memory store's response to a memory fetch.
type MemoriesResponse struct {
	UserID   string   `json:"user_id"`
	Memories []Memory `json:"memories"`
	Count    int      `json:"count"`
}

// FormattedResponse is a pre-rendered block of memory text for a user.
// Supplemental to the compile path: the core pipeline needs individual
// memory records to score and select them, not a single blob, so nothing
// here calls GetFormatted; it is exposed for callers that want a quick
// summary outside the compile pipeline.
type FormattedResponse struct {
	UserID       string `json:"user_id"`
	Query        string `json:"query"`
	FormattedText string `json:"formatted_text"`
	MemoryCount  int    `json:"memory_count"`
}

// Client talks to the memory store HTTP API.
type Client struct {
	http *wshttp.Client
}

// NewClient builds a memory client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{http: wshttp.NewClient(wshttp.Config{BaseURL: baseURL})}
}

// NewClientWithConfig builds a memory client with full control over
// timeout and rate limiting.
func NewClientWithConfig(cfg wshttp.Config) *Client {
	return &Client{http: wshttp.NewClient(cfg)}
}

// GetMemories fetches up to limit memories relevant to query for a user.
func (c *Client) GetMemories(ctx context.Context, userID, query string, limit int) (MemoriesResponse, error) {
	if limit <= 0 {
		limit = 5
	}

	var resp MemoriesResponse
	err := c.http.DoJSON(ctx, wshttp.Request{
		Method: "GET",
		Path:   fmt.Sprintf("/memory/%s", userID),
		Query: map[string]string{
			"query": query,
			"limit": fmt.Sprintf("%d", limit),
		},
	}, &resp)
	if err != nil {
		return MemoriesResponse{}, fmt.Errorf("memory fetch: %w", err)
	}
	return resp, nil
}

// GetFormatted fetches a single rendered text block of memories for a user.
func (c *Client) GetFormatted(ctx context.Context, userID, query string, limit int) (FormattedResponse, error) {
	if limit <= 0 {
		limit = 5
	}

	var resp FormattedResponse
	err := c.http.DoJSON(ctx, wshttp.Request{
		Method: "GET",
		Path:   fmt.Sprintf("/memory/%s/formatted", userID),
		Query: map[string]string{
			"query": query,
			"limit": fmt.Sprintf("%d", limit),
		},
	}, &resp)
	if err != nil {
		return FormattedResponse{}, fmt.Errorf("formatted memory fetch: %w", err)
	}
	return resp, nil
}

// HealthCheck reports whether the memory store is reachable.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	resp, err := c.http.Get(ctx, "/health")
	if err != nil {
		return false, err
	}
	return resp.StatusCode < 400, nil
}
