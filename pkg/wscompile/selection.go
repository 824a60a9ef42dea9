package wscompile

import (
	"fmt"
	"math"
	"sort"
)

const (
	minBaselineSpans      = 3
	minBaselineTokenRatio = 0.2
	mmrTieBreakEpsilon    = 0.01
)

// SelectWithMMR runs the greedy MMR knapsack selection: at each step it picks
// the remaining candidate with the highest marginal-relevance score, subject
// to the token budget and a per-source diversity cap, falling back to a
// smaller candidate when the current best no longer fits.
func SelectWithMMR(candidates []CandidateSpan, budgetTokens int, prefs SoftPreferences, explain bool) ([]WSItem, []SpanExplanation) {
	if len(candidates) == 0 {
		return nil, nil
	}

	cands := make([]CandidateSpan, len(candidates))
	copy(cands, candidates)

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].BaseScore != cands[j].BaseScore {
			return cands[i].BaseScore > cands[j].BaseScore
		}
		if cands[i].SpanRef.DocVersionID != cands[j].SpanRef.DocVersionID {
			return cands[i].SpanRef.DocVersionID < cands[j].SpanRef.DocVersionID
		}
		return cands[i].SpanRef.SpanID < cands[j].SpanRef.SpanID
	})

	maxCandidates := budgetTokens / 100
	if maxCandidates < 200 {
		maxCandidates = 200
	}
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}

	var (
		selected           []WSItem
		explanations       []SpanExplanation
		usedTokens         int
		sourceTokens       = map[string]int{}
		selectedEmbeddings [][]float64
	)

	for usedTokens < budgetTokens && len(cands) > 0 {
		bestIdx, bestScore, penalty := findBestMMR(cands, selectedEmbeddings, prefs.DiversityLambda)
		cand := cands[bestIdx]
		tokenCost := cand.SpanRef.TokenCost

		if usedTokens+tokenCost > budgetTokens {
			smallerIdx, ok := findSmallerSpan(cands, budgetTokens-usedTokens)
			if !ok {
				break
			}
			smaller := cands[smallerIdx]
			cands = removeAt(cands, smallerIdx)

			if usedTokens+smaller.SpanRef.TokenCost > budgetTokens {
				break
			}
			if !fitsSourceDiversity(smaller, usedTokens, len(selected), budgetTokens, sourceTokens, cands, prefs) {
				continue
			}

			selected, usedTokens, selectedEmbeddings = acceptCandidate(smaller, selected, usedTokens, sourceTokens, selectedEmbeddings)
			if explain {
				explanations = append(explanations, explainSelection(smaller, bestScore, penalty))
			}
			continue
		}

		if !fitsSourceDiversity(cand, usedTokens, len(selected), budgetTokens, sourceTokens, cands, prefs) {
			cands = removeAt(cands, bestIdx)
			continue
		}

		cands = removeAt(cands, bestIdx)
		selected, usedTokens, selectedEmbeddings = acceptCandidate(cand, selected, usedTokens, sourceTokens, selectedEmbeddings)
		if explain {
			explanations = append(explanations, explainSelection(cand, bestScore, penalty))
		}
	}

	return selected, explanations
}

// fitsSourceDiversity decides whether accepting cand would breach the
// per-source token ratio cap. The cap only activates once a baseline of
// selected spans or used budget exists and more than one source is in
// play; this single check governs both the main MMR-pick path and the
// smaller-span fallback path, so the guard behaves identically regardless
// of which path is trying to accept the candidate.
func fitsSourceDiversity(cand CandidateSpan, usedTokens, selectedCount, budgetTokens int, sourceTokens map[string]int, remaining []CandidateSpan, prefs SoftPreferences) bool {
	source := cand.Metadata.Filepath
	tokenCost := cand.SpanRef.TokenCost

	uniqueSources := map[string]struct{}{}
	for s := range sourceTokens {
		uniqueSources[s] = struct{}{}
	}
	for _, c := range remaining {
		uniqueSources[c.Metadata.Filepath] = struct{}{}
	}
	if len(uniqueSources) <= 1 {
		return true
	}

	baselineMet := selectedCount >= minBaselineSpans || float64(usedTokens) >= minBaselineTokenRatio*float64(budgetTokens)
	if !baselineMet {
		return true
	}

	newSourceTokens := sourceTokens[source] + tokenCost
	newTotal := usedTokens + tokenCost
	return float64(newSourceTokens) <= prefs.MaxSingleSourceRatio*float64(newTotal)
}

func acceptCandidate(cand CandidateSpan, selected []WSItem, usedTokens int, sourceTokens map[string]int, selectedEmbeddings [][]float64) ([]WSItem, int, [][]float64) {
	item := WSItem{
		SpanRef:  cand.SpanRef,
		Metadata: cand.Metadata,
	}
	if cand.Metadata.SourceType == SourceMemory {
		item.Text = cand.TextPreview
	}

	selected = append(selected, item)
	usedTokens += cand.SpanRef.TokenCost
	sourceTokens[cand.Metadata.Filepath] += cand.SpanRef.TokenCost
	if cand.Embedding != nil {
		selectedEmbeddings = append(selectedEmbeddings, cand.Embedding)
	}
	return selected, usedTokens, selectedEmbeddings
}

func findBestMMR(candidates []CandidateSpan, selectedEmbeddings [][]float64, lambda float64) (int, float64, float64) {
	bestIdx := 0
	bestMMR := -math.MaxFloat64
	bestPenalty := 0.0

	for idx, cand := range candidates {
		maxSim := 0.0
		if len(selectedEmbeddings) > 0 && cand.Embedding != nil {
			for _, selEmb := range selectedEmbeddings {
				sim := CosineSimilarity(cand.Embedding, selEmb)
				if sim > maxSim {
					maxSim = sim
				}
			}
		}

		diversityPenalty := (1 - lambda) * maxSim
		mmrScore := lambda*cand.BaseScore - diversityPenalty

		var isBetter bool
		if math.Abs(mmrScore-bestMMR) < mmrTieBreakEpsilon {
			isBetter = cand.SpanRef.TokenCost < candidates[bestIdx].SpanRef.TokenCost
		} else {
			isBetter = mmrScore > bestMMR
		}

		if isBetter {
			bestMMR = mmrScore
			bestIdx = idx
			bestPenalty = diversityPenalty
		}
	}

	return bestIdx, bestMMR, bestPenalty
}

func findSmallerSpan(candidates []CandidateSpan, maxTokens int) (int, bool) {
	bestIdx := -1
	bestScore := -math.MaxFloat64
	for idx, c := range candidates {
		if c.SpanRef.TokenCost <= maxTokens && c.BaseScore > bestScore {
			bestScore = c.BaseScore
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func removeAt(candidates []CandidateSpan, idx int) []CandidateSpan {
	return append(candidates[:idx], candidates[idx+1:]...)
}

func explainSelection(cand CandidateSpan, finalScore, diversityPenalty float64) SpanExplanation {
	return SpanExplanation{
		SpanRef:          cand.SpanRef,
		FinalScore:       finalScore,
		BaseScore:        cand.BaseScore,
		DiversityPenalty: diversityPenalty,
		Reasons:          explainCandidate(cand, finalScore),
	}
}

func explainCandidate(cand CandidateSpan, finalScore float64) []string {
	var reasons []string

	if cand.Scores.Semantic > 0.5 {
		reasons = append(reasons, formatReason("semantic match", cand.Scores.Semantic))
	}
	if cand.Scores.Lexical > 0.5 {
		reasons = append(reasons, formatReason("keyword match", cand.Scores.Lexical))
	}
	if cand.Scores.Structural > 0.5 {
		reasons = append(reasons, formatReason("structural relevance", cand.Scores.Structural))
	}
	if cand.Metadata.SectionTitle != "" {
		reasons = append(reasons, fmt.Sprintf("section: %s", cand.Metadata.SectionTitle))
	}
	if cand.Metadata.Stage != "" {
		reasons = append(reasons, fmt.Sprintf("stage: %s", cand.Metadata.Stage))
	}

	reasons = append(reasons, formatReason("final MMR score", finalScore))
	return reasons
}

func formatReason(label string, value float64) string {
	return fmt.Sprintf("%s: %.2f", label, value)
}
