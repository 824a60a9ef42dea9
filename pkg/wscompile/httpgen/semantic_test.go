package httpgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contextforge/wscompile/pkg/wscompile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractQuerySemanticPrefersIntent(t *testing.T) {
	signals := wscompile.DerivedSignals{Intent: "fix the flaky test", Keywords: []string{"flaky", "test"}}
	assert.Equal(t, "fix the flaky test", extractQuerySemantic(signals))
}

func TestExtractQuerySemanticFallsBackToKeywords(t *testing.T) {
	signals := wscompile.DerivedSignals{Keywords: []string{"rollback", "deploy"}}
	assert.Equal(t, "rollback deploy", extractQuerySemantic(signals))
}

func TestExtractQuerySemanticEmptyWhenNothingToSay(t *testing.T) {
	assert.Equal(t, "", extractQuerySemantic(wscompile.DerivedSignals{}))
}

func TestSemanticGenerateChunkLevelResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "deploy rollback", req.Query)

		docVersionID, spanID := "doc-1", "span-1"
		charStart, charEnd := 0, 120
		tokenCost := 42
		resp := semanticSearchResponse{
			Candidates: []semanticCandidate{
				{
					Path: "03_workstreams/infra/rollback.md", Score: 0.82,
					DocVersionID: &docVersionID, SpanID: &spanID, CharStart: &charStart, CharEnd: &charEnd,
					TokenCost: &tokenCost,
				},
			},
			NumResults: 1,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := NewSemantic(server.URL, 0)
	candidates, err := gen.Generate(context.Background(), wscompile.DerivedSignals{Keywords: []string{"deploy", "rollback"}}, wscompile.HardFilters{}, 10)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "doc-1", c.SpanRef.DocVersionID)
	assert.Equal(t, "span-1", c.SpanRef.SpanID)
	assert.Equal(t, 42, c.SpanRef.TokenCost)
	assert.Equal(t, wscompile.SourceWorkstream, c.Metadata.SourceType)
	assert.Equal(t, "infra", c.Metadata.Workstream)
	assert.Equal(t, 0.82, c.Scores.Semantic)
}

func TestSemanticGenerateLegacyDocumentLevelResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := "abc123"
		size := 400
		resp := semanticSearchResponse{
			Candidates: []semanticCandidate{
				{ChunkID: 7, Path: "02_knowledge/notes.md", Score: 0.55, Hash: &hash, Size: &size},
			},
			NumResults: 1,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := NewSemantic(server.URL, 0)
	candidates, err := gen.Generate(context.Background(), wscompile.DerivedSignals{Intent: "notes"}, wscompile.HardFilters{}, 10)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "abc123", c.SpanRef.DocVersionID)
	assert.Equal(t, "span_7", c.SpanRef.SpanID)
	assert.Equal(t, 100, c.SpanRef.TokenCost)
	assert.Equal(t, wscompile.SourceKnowledge, c.Metadata.SourceType)
}

func TestSemanticGenerateNoQuerySkipsRequest(t *testing.T) {
	gen := NewSemantic("http://unused.invalid", 0)
	candidates, err := gen.Generate(context.Background(), wscompile.DerivedSignals{}, wscompile.HardFilters{}, 10)
	require.NoError(t, err)
	assert.Nil(t, candidates)
}
