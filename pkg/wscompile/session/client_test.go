package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContextParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/sess-1/context", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		resp := ContextResponse{
			SessionID: "sess-1",
			ContextSpans: []ContextSpan{
				{Text: "hello", Role: "user", Timestamp: "t1", TokenEstimate: 5},
			},
			TotalTokensEstimate: 5,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.GetContext(context.Background(), "sess-1", 10)

	require.NoError(t, err)
	require.Len(t, resp.ContextSpans, 1)
	assert.Equal(t, "hello", resp.ContextSpans[0].Text)
}

func TestGetContextDefaultsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(ContextResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetContext(context.Background(), "sess-1", 0)
	require.NoError(t, err)
}

func TestGetStateParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/sess-1/state", r.URL.Path)
		resp := State{SessionID: "sess-1", State: map[string]interface{}{"foo": "bar"}, Exists: true}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	state, err := client.GetState(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.True(t, state.Exists)
	assert.Equal(t, "bar", state.State["foo"])
}

func TestHealthCheckReflectsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ok, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
