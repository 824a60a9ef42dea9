package wscompile_test

import (
	"testing"

	. "github.com/contextforge/wscompile/pkg/wscompile"
	"github.com/contextforge/wscompile/pkg/wstestutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateWorkingSetReadsEachFileOnce(t *testing.T) {
	reader := wstestutil.NewMockFileReader(map[string]string{
		"doc.md": "0123456789abcdefghij",
	})

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s1", CharStart: 0, CharEnd: 5, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "doc.md"}},
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s2", CharStart: 5, CharEnd: 10, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "doc.md"}},
	}

	ws := HydrateWorkingSet(reader, selected)

	require.Len(t, reader.Reads(), 1, "the same file should be read at most once per compile")
	assert.Equal(t, "01234", ws.Spans[0].Text)
	assert.Equal(t, "56789", ws.Spans[1].Text)
	assert.Equal(t, 20, ws.TotalTokens)
}

func TestHydrateWorkingSetUnicodeSafeSlicing(t *testing.T) {
	reader := wstestutil.NewMockFileReader(map[string]string{
		"unicode.md": "héllo wörld 日本語",
	})

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s1", CharStart: 0, CharEnd: 5, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "unicode.md"}},
	}

	ws := HydrateWorkingSet(reader, selected)

	assert.Equal(t, "héllo", ws.Spans[0].Text)
}

func TestHydrateWorkingSetOutOfBoundsOffset(t *testing.T) {
	reader := wstestutil.NewMockFileReader(map[string]string{
		"short.md": "abc",
	})

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s1", CharStart: 10, CharEnd: 20, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "short.md"}},
	}

	ws := HydrateWorkingSet(reader, selected)

	assert.Contains(t, ws.Spans[0].Text, "out of bounds")
}

func TestHydrateWorkingSetClampsOverrunEnd(t *testing.T) {
	reader := wstestutil.NewMockFileReader(map[string]string{
		"short.md": "abcde",
	})

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s1", CharStart: 2, CharEnd: 100, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "short.md"}},
	}

	ws := HydrateWorkingSet(reader, selected)

	assert.Equal(t, "cde", ws.Spans[0].Text)
}

func TestHydrateWorkingSetReadFailurePlaceholder(t *testing.T) {
	reader := wstestutil.NewMockFileReader(nil)

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "v1", SpanID: "s1", CharStart: 0, CharEnd: 5, TokenCost: 10}, Metadata: SpanMetadata{Filepath: "missing.md"}},
	}

	ws := HydrateWorkingSet(reader, selected)

	assert.Contains(t, ws.Spans[0].Text, "Could not read")
}

func TestHydrateWorkingSetSkipsSessionAndMemorySpans(t *testing.T) {
	reader := wstestutil.NewMockFileReader(map[string]string{})

	selected := []WSItem{
		{SpanRef: SpanRef{DocVersionID: "session:1", SpanID: "s1", TokenCost: 30}, Text: "already here", Metadata: SpanMetadata{SourceType: SourceSession}},
		{SpanRef: SpanRef{DocVersionID: "memory:u1", SpanID: "m1", TokenCost: 20}, Text: "also here", Metadata: SpanMetadata{SourceType: SourceMemory}},
	}

	ws := HydrateWorkingSet(reader, selected)

	assert.Empty(t, reader.Reads())
	assert.Equal(t, "already here", ws.Spans[0].Text)
	assert.Equal(t, "also here", ws.Spans[1].Text)
	assert.Equal(t, 50, ws.TotalTokens)
}

func TestComputeSourceDistributionTallies(t *testing.T) {
	ws := WorkingSet{Spans: []WSItem{
		{SpanRef: SpanRef{DocVersionID: "doc1", TokenCost: 100}},
		{SpanRef: SpanRef{DocVersionID: "doc1", TokenCost: 50}},
		{SpanRef: SpanRef{DocVersionID: "doc2", TokenCost: 30}},
	}}

	dist := ComputeSourceDistribution(ws)

	assert.Equal(t, 150, dist["doc1"])
	assert.Equal(t, 30, dist["doc2"])
}
