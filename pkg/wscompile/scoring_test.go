package wscompile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScoresMinMax(t *testing.T) {
	candidates := []CandidateSpan{
		{Scores: ScoreChannels{Semantic: 0.0}},
		{Scores: ScoreChannels{Semantic: 5.0}},
		{Scores: ScoreChannels{Semantic: 10.0}},
	}

	NormalizeScores(candidates)

	assert.Equal(t, 0.0, candidates[0].Scores.Semantic)
	assert.InDelta(t, 0.5, candidates[1].Scores.Semantic, 1e-9)
	assert.Equal(t, 1.0, candidates[2].Scores.Semantic)
}

func TestNormalizeScoresNoSpreadCollapsesToOneOrZero(t *testing.T) {
	candidates := []CandidateSpan{
		{Scores: ScoreChannels{Semantic: 0.7}},
		{Scores: ScoreChannels{Semantic: 0.7}},
		{Scores: ScoreChannels{Semantic: 0.7, Lexical: 0.0}},
	}

	NormalizeScores(candidates)

	assert.Equal(t, 1.0, candidates[0].Scores.Semantic)
	assert.Equal(t, 1.0, candidates[1].Scores.Semantic)
	assert.Equal(t, 0.0, candidates[2].Scores.Lexical)
}

func TestComputeBaseScoreWeightedSum(t *testing.T) {
	weights := ScoreWeights{Semantic: 0.4, Lexical: 0.2, Structural: 0.2, Graph: 0.1, Recency: 0.05, StageBoost: 0.05}
	prefs := SoftPreferences{ScoreWeights: weights}

	cand := CandidateSpan{
		Scores:   ScoreChannels{Semantic: 1.0, Lexical: 1.0, Structural: 0.0, Graph: 0.0},
		Metadata: SpanMetadata{RecencyScore: 1.0},
	}

	score := ComputeBaseScore(&cand, prefs)

	assert.InDelta(t, 0.4+0.2+0.05, score, 1e-9)
}

func TestComputeBaseScoreStageBoost(t *testing.T) {
	prefs := SoftPreferences{
		ScoreWeights: ScoreWeights{StageBoost: 0.05},
		PreferStages: []string{"memory_decisions"},
	}

	boosted := CandidateSpan{Metadata: SpanMetadata{Stage: "memory_decisions"}}
	unboosted := CandidateSpan{Metadata: SpanMetadata{Stage: "memory_prefs"}}

	assert.InDelta(t, 0.05, ComputeBaseScore(&boosted, prefs), 1e-9)
	assert.InDelta(t, 0.0, ComputeBaseScore(&unboosted, prefs), 1e-9)
}

// TestScoringMonotone checks invariant 8: increasing a positive channel
// weight cannot decrease base_score for a candidate with a non-negative
// contribution on that channel.
func TestScoringMonotone(t *testing.T) {
	cand := CandidateSpan{Scores: ScoreChannels{Semantic: 0.6, Lexical: 0.3}}

	low := ComputeBaseScore(&cand, SoftPreferences{ScoreWeights: ScoreWeights{Semantic: 0.1, Lexical: 0.1}})
	high := ComputeBaseScore(&cand, SoftPreferences{ScoreWeights: ScoreWeights{Semantic: 0.5, Lexical: 0.1}})

	assert.GreaterOrEqual(t, high, low)
}

func TestCosineSimilarityUnitVectors(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0, 0}, []float64{1, 0, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0, 0}, []float64{0, 1, 0}), 1e-9)
}
