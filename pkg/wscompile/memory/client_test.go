package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMemoriesParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/memory/user-1", r.URL.Path)
		assert.Equal(t, "deploy", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		relevance := 0.77
		resp := MemoriesResponse{
			UserID: "user-1",
			Memories: []Memory{
				{Text: "prefers staged rollouts", Source: "chat", Relevance: &relevance, Category: "preferences"},
			},
			Count: 1,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.GetMemories(context.Background(), "user-1", "deploy", 5)

	require.NoError(t, err)
	require.Len(t, resp.Memories, 1)
	assert.Equal(t, "prefers staged rollouts", resp.Memories[0].Text)
	assert.InDelta(t, 0.77, *resp.Memories[0].Relevance, 1e-9)
}

func TestGetMemoriesDefaultsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(MemoriesResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetMemories(context.Background(), "user-1", "q", 0)
	require.NoError(t, err)
}

func TestHealthCheckReflectsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ok, err := client.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
