package wscompile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemoCandidatesAreWellFormed(t *testing.T) {
	candidates := DemoCandidates()
	require := assert.New(t)

	require.Len(candidates, 10)

	seen := map[SpanKey]bool{}
	for _, c := range candidates {
		key := c.SpanRef.Key()
		require.False(seen[key], "duplicate span key %+v", key)
		seen[key] = true

		require.Greater(c.SpanRef.TokenCost, 0)
		require.NotEmpty(c.TextPreview)
		require.NotEmpty(c.Metadata.Filepath)
		require.NotEmpty(c.Metadata.SourceType)
	}
}

func TestDemoCandidatesFillMockGenerator(t *testing.T) {
	gen := &MockGenerator{GenName: "mock_semantic", Candidates: DemoCandidates()}
	out, err := gen.Generate(context.Background(), DerivedSignals{}, HardFilters{}, 200)
	assert.NoError(t, err)
	assert.Len(t, out, 10)
}
