// Package httpgen implements Generators backed by external search
// services: a semantic (embedding/vector) service and a lexical (BM25)
// service, both speaking a small JSON search protocol over HTTP.
package httpgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	wshttp "github.com/contextforge/wscompile/pkg/internal/http"
	"github.com/contextforge/wscompile/pkg/wscompile"
)

// searchRequest is shared by the semantic and lexical services.
type searchRequest struct {
	Query   string         `json:"query"`
	K       int            `json:"k"`
	Filters *searchFilters `json:"filters,omitempty"`
}

type searchFilters struct {
	Workstream   string   `json:"workstream,omitempty"`
	AllowedPaths []string `json:"allowed_paths,omitempty"`
}

func buildFilters(filters wscompile.HardFilters) *searchFilters {
	if len(filters.AllowedPaths) == 0 && len(filters.RequiredWorkstreams) == 0 {
		return nil
	}
	f := &searchFilters{AllowedPaths: filters.AllowedPaths}
	if len(filters.RequiredWorkstreams) > 0 {
		f.Workstream = filters.RequiredWorkstreams[0]
	}
	return f
}

// semanticSearchResponse is the Python vector-search service's response.
type semanticSearchResponse struct {
	Candidates  []semanticCandidate `json:"candidates"`
	QueryTimeMs float64             `json:"query_time_ms"`
	NumResults  int                 `json:"num_results"`
}

// semanticCandidate covers both the current chunk-level response shape
// and the legacy document-level shape the service still sometimes emits.
type semanticCandidate struct {
	ChunkID int     `json:"chunk_id"`
	Path    string  `json:"path"`
	Score   float64 `json:"score"`

	DocVersionID *string `json:"doc_version_id,omitempty"`
	SpanID       *string `json:"span_id,omitempty"`
	CharStart    *int    `json:"char_start,omitempty"`
	CharEnd      *int    `json:"char_end,omitempty"`
	TokenCost    *int    `json:"token_cost,omitempty"`

	Hash *string `json:"hash,omitempty"`
	Size *int    `json:"size,omitempty"`
}

// Semantic is a Generator backed by an HTTP vector-search service.
type Semantic struct {
	client *wshttp.Client
}

// NewSemantic builds a semantic generator against serviceURL, rate-limited
// to ratePerSecond requests/sec (0 disables rate limiting).
func NewSemantic(serviceURL string, ratePerSecond float64) *Semantic {
	return &Semantic{client: wshttp.NewClient(wshttp.Config{
		BaseURL:   serviceURL,
		RateLimit: ratePerSecond,
	})}
}

func (g *Semantic) Name() string {
	return "http_semantic"
}

func extractQuerySemantic(signals wscompile.DerivedSignals) string {
	if signals.Intent != "" {
		return signals.Intent
	}
	if len(signals.Keywords) > 0 {
		return strings.Join(signals.Keywords, " ")
	}
	return ""
}

func (g *Semantic) Generate(ctx context.Context, signals wscompile.DerivedSignals, filters wscompile.HardFilters, topK int) ([]wscompile.CandidateSpan, error) {
	query := extractQuerySemantic(signals)
	if query == "" {
		return nil, nil
	}

	req := searchRequest{Query: query, K: topK * 3, Filters: buildFilters(filters)}

	var resp semanticSearchResponse
	if err := g.client.PostJSON(ctx, "/search", req, &resp); err != nil {
		return nil, fmt.Errorf("semantic service: %w", err)
	}

	candidates := make([]wscompile.CandidateSpan, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		candidates = append(candidates, semanticToCandidate(c))
	}
	return candidates, nil
}

func semanticToCandidate(c semanticCandidate) wscompile.CandidateSpan {
	now := time.Now().Unix()
	sourceType := classifyPath(c.Path)
	workstream := extractWorkstream(c.Path)

	var docVersionID, spanID string
	var charStart, charEnd, tokenCost int

	if c.DocVersionID != nil && c.SpanID != nil && c.CharStart != nil && c.CharEnd != nil {
		docVersionID = *c.DocVersionID
		spanID = *c.SpanID
		charStart = *c.CharStart
		charEnd = *c.CharEnd
		if c.TokenCost != nil {
			tokenCost = *c.TokenCost
		} else {
			tokenCost = charEnd - charStart
			if tokenCost < 10 {
				tokenCost = 10
			}
		}
	} else {
		hash := "unknown"
		if c.Hash != nil {
			hash = *c.Hash
		}
		size := 1000
		if c.Size != nil {
			size = *c.Size
		}
		docVersionID = hash
		spanID = fmt.Sprintf("span_%d", c.ChunkID)
		charStart = 0
		charEnd = size
		tokenCost = size / 4
		if tokenCost < 10 {
			tokenCost = 10
		}
	}

	return wscompile.CandidateSpan{
		SpanRef: wscompile.SpanRef{
			DocVersionID: docVersionID,
			SpanID:       spanID,
			CharStart:    charStart,
			CharEnd:      charEnd,
			TokenCost:    tokenCost,
		},
		Scores:      wscompile.ScoreChannels{Semantic: c.Score},
		TextPreview: fmt.Sprintf("Content from %s", c.Path),
		Metadata: wscompile.SpanMetadata{
			Filepath:     c.Path,
			Workstream:   workstream,
			CreatedAt:    now,
			RecencyScore: 0.9,
			SourceType:   sourceType,
		},
	}
}

func classifyPath(path string) wscompile.SourceType {
	switch {
	case strings.Contains(path, "03_workstreams/"):
		return wscompile.SourceWorkstream
	case strings.Contains(path, "02_knowledge/"):
		return wscompile.SourceKnowledge
	case strings.Contains(path, "01_context/"):
		return wscompile.SourceContext
	default:
		return wscompile.SourceArtifact
	}
}

func extractWorkstream(path string) string {
	if !strings.Contains(path, "03_workstreams/") {
		return ""
	}
	parts := strings.Split(path, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}
