package wscompile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCandidate(source, id string, tokenCost int, semantic, lexical float64, embedding []float64) CandidateSpan {
	cand := CandidateSpan{
		SpanRef: SpanRef{DocVersionID: source, SpanID: id, TokenCost: tokenCost},
		Scores:  ScoreChannels{Semantic: semantic, Lexical: lexical},
		Metadata: SpanMetadata{
			Filepath: source,
		},
		Embedding: embedding,
	}
	cand.BaseScore = semantic*0.7 + lexical*0.3
	return cand
}

// TestSelectionBudgetRespected covers scenario S1: 20 candidates of equal
// cost/score from a single source, budget 3000, expect high utilization
// without exceeding the budget.
func TestSelectionBudgetRespected(t *testing.T) {
	var candidates []CandidateSpan
	for i := 0; i < 20; i++ {
		candidates = append(candidates, mkCandidate("test.md", fmt.Sprintf("s%d", i), 300, 0.8, 0.7, nil))
	}

	prefs := DefaultSoftPreferences()
	selected, _ := SelectWithMMR(candidates, 3000, prefs, false)

	total := 0
	for _, item := range selected {
		total += item.SpanRef.TokenCost
	}

	assert.LessOrEqual(t, total, 3000)
	assert.GreaterOrEqual(t, total, 2550)
}

// TestSelectionMMRDiversity covers scenario S2: two distinct topic
// clusters by embedding; MMR with lambda=0.3 should surface both topics
// rather than exhausting the budget on the single highest-scoring topic.
func TestSelectionMMRDiversity(t *testing.T) {
	var candidates []CandidateSpan
	riskScores := []float64{0.90, 0.85, 0.80, 0.75, 0.70}
	rollbackScores := []float64{0.70, 0.65, 0.60, 0.55, 0.50}

	for i, s := range riskScores {
		c := mkCandidate("risk.md", fmt.Sprintf("risk-%d", i), 500, s, 0, []float64{1, 0, 0})
		c.BaseScore = s
		candidates = append(candidates, c)
	}
	for i, s := range rollbackScores {
		c := mkCandidate("rollback.md", fmt.Sprintf("rollback-%d", i), 500, s, 0, []float64{0, 1, 0})
		c.BaseScore = s
		candidates = append(candidates, c)
	}

	prefs := SoftPreferences{DiversityLambda: 0.3, MaxSingleSourceRatio: 1.0}
	selected, _ := SelectWithMMR(candidates, 5000, prefs, false)

	var hasRisk, hasRollback bool
	for _, item := range selected {
		if item.Metadata.Filepath == "risk.md" {
			hasRisk = true
		}
		if item.Metadata.Filepath == "rollback.md" {
			hasRollback = true
		}
	}

	assert.True(t, hasRisk)
	assert.True(t, hasRollback)
	assert.GreaterOrEqual(t, len(selected), 8)
}

// TestSelectionSourceDiversityCap covers scenario S3: a dominant source
// should be capped once the diversity guard activates.
func TestSelectionSourceDiversityCap(t *testing.T) {
	var candidates []CandidateSpan
	for i := 0; i < 8; i++ {
		c := mkCandidate("doc_A", fmt.Sprintf("a-%d", i), 500, 0.9, 0.8, nil)
		c.BaseScore = 0.9
		candidates = append(candidates, c)
	}
	for i := 0; i < 2; i++ {
		c := mkCandidate("doc_B", fmt.Sprintf("b-%d", i), 500, 0.5, 0.5, nil)
		c.BaseScore = 0.5
		candidates = append(candidates, c)
	}

	prefs := SoftPreferences{DiversityLambda: 0.0, MaxSingleSourceRatio: 0.55}
	selected, _ := SelectWithMMR(candidates, 5000, prefs, false)

	total, fromA := 0, 0
	for _, item := range selected {
		total += item.SpanRef.TokenCost
		if item.Metadata.Filepath == "doc_A" {
			fromA += item.SpanRef.TokenCost
		}
	}

	require.Greater(t, total, 0)
	assert.LessOrEqual(t, float64(fromA)/float64(total), 0.56)
}

func TestSelectionNoDuplicateKeys(t *testing.T) {
	candidates := []CandidateSpan{
		mkCandidate("doc1", "span1", 100, 0.9, 0.1, nil),
		mkCandidate("doc1", "span2", 100, 0.8, 0.1, nil),
		mkCandidate("doc2", "span1", 100, 0.7, 0.1, nil),
	}

	selected, _ := SelectWithMMR(candidates, 1000, DefaultSoftPreferences(), false)

	seen := map[SpanKey]bool{}
	for _, item := range selected {
		key := item.SpanRef.Key()
		assert.False(t, seen[key], "duplicate key selected")
		seen[key] = true
	}
}

func TestSelectionExplainProducesOneReasonPerSpan(t *testing.T) {
	candidates := []CandidateSpan{
		mkCandidate("doc1", "span1", 100, 0.9, 0.1, nil),
		mkCandidate("doc1", "span2", 100, 0.8, 0.1, nil),
	}

	selected, explanations := SelectWithMMR(candidates, 1000, DefaultSoftPreferences(), true)

	assert.Len(t, explanations, len(selected))
}

// TestSelectionDeterministicTieBreak covers the bit-identical-rerun
// requirement: candidates with equal BaseScore must select in the same
// order regardless of the order they arrive in, since fan-out across
// concurrent generators does not guarantee a stable arrival order. The
// source cap is lifted so all three spans fit and the whole order is
// compared.
func TestSelectionDeterministicTieBreak(t *testing.T) {
	forward := []CandidateSpan{
		mkCandidate("doc1", "span1", 300, 0.8, 0.1, nil),
		mkCandidate("doc1", "span2", 300, 0.8, 0.1, nil),
		mkCandidate("doc2", "span1", 300, 0.8, 0.1, nil),
	}
	for i := range forward {
		forward[i].BaseScore = 0.8
	}

	reversed := make([]CandidateSpan, len(forward))
	for i, c := range forward {
		reversed[len(forward)-1-i] = c
	}

	prefs := DefaultSoftPreferences()
	prefs.MaxSingleSourceRatio = 1.0
	selectedForward, _ := SelectWithMMR(forward, 900, prefs, false)
	selectedReversed, _ := SelectWithMMR(reversed, 900, prefs, false)

	require.Len(t, selectedForward, 3)
	require.Len(t, selectedReversed, 3)
	for i := range selectedForward {
		assert.Equal(t, selectedForward[i].SpanRef.Key(), selectedReversed[i].SpanRef.Key())
	}
}

func TestSelectionEmptyInput(t *testing.T) {
	selected, explanations := SelectWithMMR(nil, 1000, DefaultSoftPreferences(), true)
	assert.Nil(t, selected)
	assert.Nil(t, explanations)
}
