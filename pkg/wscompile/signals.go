package wscompile

import "strings"

// Embedder turns free text into a fixed-dimension vector. It is a seam for
// a real embedding backend; the zero value of the package never calls one.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// noopEmbedder returns a zero vector of a fixed dimension. It lets the rest
// of the pipeline treat embeddings as always-present without special-casing
// "no embedding model configured".
type noopEmbedder struct {
	dim int
}

func (e noopEmbedder) Embed(text string) ([]float64, error) {
	return make([]float64, e.dim), nil
}

// NoopEmbedder returns an Embedder producing zero vectors of the given
// dimension. Used as the default when no real embedding backend is wired.
func NoopEmbedder(dim int) Embedder {
	return noopEmbedder{dim: dim}
}

const defaultEmbeddingDim = 768

// DeriveSignals is pure and total: it extracts the query signals the rest
// of the pipeline consumes from a compile request, with no I/O beyond the
// injected embedder.
func DeriveSignals(req CompileRequest, embedder Embedder) (DerivedSignals, error) {
	if embedder == nil {
		embedder = NoopEmbedder(defaultEmbeddingDim)
	}

	embedding, err := embedder.Embed(req.Intent)
	if err != nil {
		return DerivedSignals{}, err
	}

	var structHints StructHints
	keywords := extractKeywords(req.Intent)

	for _, sig := range req.QuerySignals {
		switch sig.Kind {
		case QuerySignalKeywords:
			keywords = append(keywords, sig.Keywords...)
		case QuerySignalStructuralHints:
			structHints.SectionPatterns = append(structHints.SectionPatterns, sig.StructuralHints.SectionPatterns...)
			structHints.DocTypes = append(structHints.DocTypes, sig.StructuralHints.DocTypes...)
		case QuerySignalNaturalLanguage:
			keywords = append(keywords, extractKeywords(sig.NaturalLanguage)...)
		}
	}

	return DerivedSignals{
		Intent:          req.Intent,
		IntentEmbedding: embedding,
		Keywords:        dedupeStrings(keywords),
		StructHints:     structHints,
		EpisodeContext:  req.TaskID,
	}, nil
}

// extractKeywords lowercases and filters short stopword-ish tokens from
// free text. This is a placeholder signal, not an NLP pipeline: real
// keyword extraction belongs behind the Embedder/Generator seams.
func extractKeywords(text string) []string {
	fields := strings.Fields(text)
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		lower := strings.ToLower(f)
		if len(lower) > 3 {
			keywords = append(keywords, lower)
		}
	}
	return keywords
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
