// Package session implements a thin client for the session store that
// tracks an in-progress conversation: the spans it returns are pre-selected
// by recency and bypass candidate scoring entirely.
package session

import (
	"context"
	"fmt"

	wshttp "github.com/contextforge/wscompile/pkg/internal/http"
)

// ContextSpan is one turn of prior conversation the session store judged
// worth carrying forward.
type ContextSpan struct {
	Text          string `json:"text"`
	Role          string `json:"role"`
	Timestamp     string `json:"timestamp"`
	TokenEstimate int    `json:"token_estimate"`
}

// ContextResponse is the session store's response to a context fetch.
type ContextResponse struct {
	SessionID            string        `json:"session_id"`
	ContextSpans         []ContextSpan `json:"context_spans"`
	TotalTokensEstimate  int           `json:"total_tokens_estimate"`
}

// State is the session store's free-form key/value state for a session.
// Supplemental to the compile path: nothing in the core pipeline calls
// GetState, but it is part of the collaborator's protocol and useful for
// callers inspecting a session directly.
type State struct {
	SessionID string                 `json:"session_id"`
	State     map[string]interface{} `json:"state"`
	Exists    bool                   `json:"exists"`
}

// Client talks to the session store HTTP API.
type Client struct {
	http *wshttp.Client
}

// NewClient builds a session client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{http: wshttp.NewClient(wshttp.Config{BaseURL: baseURL})}
}

// NewClientWithConfig builds a session client with full control over
// timeout and rate limiting, for deployments that need to shield the
// session store from bursty compile traffic.
func NewClientWithConfig(cfg wshttp.Config) *Client {
	return &Client{http: wshttp.NewClient(cfg)}
}

// GetContext fetches up to limit recent context spans for a session.
func (c *Client) GetContext(ctx context.Context, sessionID string, limit int) (ContextResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	var resp ContextResponse
	err := c.http.DoJSON(ctx, wshttp.Request{
		Method: "GET",
		Path:   fmt.Sprintf("/session/%s/context", sessionID),
		Query:  map[string]string{"limit": fmt.Sprintf("%d", limit)},
	}, &resp)
	if err != nil {
		return ContextResponse{}, fmt.Errorf("session context fetch: %w", err)
	}
	return resp, nil
}

// GetState fetches the free-form state blob for a session.
func (c *Client) GetState(ctx context.Context, sessionID string) (State, error) {
	var resp State
	err := c.http.DoJSON(ctx, wshttp.Request{
		Method: "GET",
		Path:   fmt.Sprintf("/session/%s/state", sessionID),
	}, &resp)
	if err != nil {
		return State{}, fmt.Errorf("session state fetch: %w", err)
	}
	return resp, nil
}

// HealthCheck reports whether the session store is reachable.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	resp, err := c.http.Get(ctx, "/health")
	if err != nil {
		return false, err
	}
	return resp.StatusCode < 400, nil
}
