package wscompile

import "math"

const normalizeEpsilon = 1e-6

// NormalizeScores min-max normalizes each of the four score channels across
// the whole candidate set, in place. A channel with zero spread collapses
// to 1.0 for any non-zero raw value and 0.0 otherwise, so a generator that
// only produces one scoring tier still distinguishes "matched" from
// "didn't".
func NormalizeScores(candidates []CandidateSpan) {
	if len(candidates) == 0 {
		return
	}

	semMin, semMax := math.MaxFloat64, -math.MaxFloat64
	lexMin, lexMax := math.MaxFloat64, -math.MaxFloat64
	structMin, structMax := math.MaxFloat64, -math.MaxFloat64
	graphMin, graphMax := math.MaxFloat64, -math.MaxFloat64

	for _, c := range candidates {
		semMin, semMax = math.Min(semMin, c.Scores.Semantic), math.Max(semMax, c.Scores.Semantic)
		lexMin, lexMax = math.Min(lexMin, c.Scores.Lexical), math.Max(lexMax, c.Scores.Lexical)
		structMin, structMax = math.Min(structMin, c.Scores.Structural), math.Max(structMax, c.Scores.Structural)
		graphMin, graphMax = math.Min(graphMin, c.Scores.Graph), math.Max(graphMax, c.Scores.Graph)
	}

	for i := range candidates {
		candidates[i].Scores.Semantic = normalizeChannel(candidates[i].Scores.Semantic, semMin, semMax)
		candidates[i].Scores.Lexical = normalizeChannel(candidates[i].Scores.Lexical, lexMin, lexMax)
		candidates[i].Scores.Structural = normalizeChannel(candidates[i].Scores.Structural, structMin, structMax)
		candidates[i].Scores.Graph = normalizeChannel(candidates[i].Scores.Graph, graphMin, graphMax)
	}
}

func normalizeChannel(x, min, max float64) float64 {
	if max <= min+normalizeEpsilon {
		if x > normalizeEpsilon {
			return 1.0
		}
		return 0.0
	}
	return (x - min) / (max - min)
}

// ComputeBaseScore combines a candidate's normalized channel scores,
// recency, and stage preference into a single weighted score.
func ComputeBaseScore(cand *CandidateSpan, prefs SoftPreferences) float64 {
	w := prefs.ScoreWeights

	score := w.Semantic*cand.Scores.Semantic +
		w.Lexical*cand.Scores.Lexical +
		w.Structural*cand.Scores.Structural +
		w.Graph*cand.Scores.Graph +
		w.Recency*cand.Metadata.RecencyScore

	if cand.Metadata.Stage != "" && containsString(prefs.PreferStages, cand.Metadata.Stage) {
		score += w.StageBoost
	}

	return score
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// CosineSimilarity computes cosine similarity assuming both vectors are
// already unit-normalized, so it reduces to a dot product.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// ScoreCandidates normalizes channels and fills in BaseScore for every
// candidate. Call after fusion, before selection.
func ScoreCandidates(candidates []CandidateSpan, prefs SoftPreferences) {
	NormalizeScores(candidates)
	for i := range candidates {
		candidates[i].BaseScore = ComputeBaseScore(&candidates[i], prefs)
	}
}
