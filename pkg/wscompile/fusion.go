package wscompile

import "math"

// FuseCandidates merges candidates from every generator into one set,
// keyed by (doc_version_id, span_id). A span returned by more than one
// channel keeps its best score per channel (max-per-channel merge) and the
// metadata of the first candidate set that contains it. GenerateAll returns
// sets in generator order, so which generator's metadata wins does not
// depend on which one finished first.
func FuseCandidates(candidateSets [][]CandidateSpan) []CandidateSpan {
	fused := make(map[SpanKey]CandidateSpan)
	order := make([]SpanKey, 0)

	for _, candidates := range candidateSets {
		for _, cand := range candidates {
			key := cand.SpanRef.Key()
			existing, ok := fused[key]
			if !ok {
				fused[key] = cand
				order = append(order, key)
				continue
			}

			existing.Scores.Semantic = math.Max(existing.Scores.Semantic, cand.Scores.Semantic)
			existing.Scores.Lexical = math.Max(existing.Scores.Lexical, cand.Scores.Lexical)
			existing.Scores.Structural = math.Max(existing.Scores.Structural, cand.Scores.Structural)
			existing.Scores.Graph = math.Max(existing.Scores.Graph, cand.Scores.Graph)
			fused[key] = existing
		}
	}

	out := make([]CandidateSpan, 0, len(order))
	for _, key := range order {
		out = append(out, fused[key])
	}
	return out
}
