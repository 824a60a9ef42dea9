package httpgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	wshttp "github.com/contextforge/wscompile/pkg/internal/http"
	"github.com/contextforge/wscompile/pkg/wscompile"
)

// lexicalSearchResponse is the Python BM25 service's response.
type lexicalSearchResponse struct {
	Query       string              `json:"query"`
	K           int                 `json:"k"`
	Results     []lexicalCandidate  `json:"results"`
	QueryTimeMs float64             `json:"query_time_ms"`
}

type lexicalCandidate struct {
	DocID int     `json:"doc_id"`
	Path  string  `json:"path"`
	Hash  string  `json:"hash"`
	Score float64 `json:"score"`
	Size  int     `json:"size"`
}

// Lexical is a Generator backed by an HTTP BM25 search service.
type Lexical struct {
	client *wshttp.Client
}

// NewLexical builds a lexical generator against serviceURL, rate-limited
// to ratePerSecond requests/sec (0 disables rate limiting).
func NewLexical(serviceURL string, ratePerSecond float64) *Lexical {
	return &Lexical{client: wshttp.NewClient(wshttp.Config{
		BaseURL:   serviceURL,
		RateLimit: ratePerSecond,
	})}
}

func (g *Lexical) Name() string {
	return "http_lexical"
}

func extractQueryLexical(signals wscompile.DerivedSignals) string {
	if len(signals.Keywords) > 0 {
		return strings.Join(signals.Keywords, " ")
	}
	return signals.Intent
}

func (g *Lexical) Generate(ctx context.Context, signals wscompile.DerivedSignals, filters wscompile.HardFilters, topK int) ([]wscompile.CandidateSpan, error) {
	query := extractQueryLexical(signals)
	if query == "" {
		return nil, nil
	}

	req := searchRequest{Query: query, K: topK * 3, Filters: buildFilters(filters)}

	var resp lexicalSearchResponse
	if err := g.client.PostJSON(ctx, "/search", req, &resp); err != nil {
		return nil, fmt.Errorf("lexical service: %w", err)
	}

	candidates := make([]wscompile.CandidateSpan, 0, len(resp.Results))
	for _, c := range resp.Results {
		candidates = append(candidates, lexicalToCandidate(c))
	}
	return candidates, nil
}

func lexicalToCandidate(c lexicalCandidate) wscompile.CandidateSpan {
	now := time.Now().Unix()
	sourceType := classifyPath(c.Path)
	workstream := extractWorkstream(c.Path)

	tokenCost := c.Size / 4
	if tokenCost < 10 {
		tokenCost = 10
	}

	return wscompile.CandidateSpan{
		SpanRef: wscompile.SpanRef{
			DocVersionID: c.Hash,
			SpanID:       fmt.Sprintf("span_%d", c.DocID),
			CharStart:    0,
			CharEnd:      c.Size,
			TokenCost:    tokenCost,
		},
		Scores:      wscompile.ScoreChannels{Lexical: c.Score},
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
