package wscompile

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/contextforge/wscompile/pkg/telemetry"
	"github.com/contextforge/wscompile/pkg/wscompile/memory"
	"github.com/contextforge/wscompile/pkg/wscompile/session"
	"github.com/contextforge/wscompile/pkg/wscompile/wserrors"
	"go.opentelemetry.io/otel/trace"
)

// maxContextRatio caps how much of the total budget pre-selected session
// context may consume; the remainder is reserved for retrieval, including
// memory candidates.
const maxContextRatio = 0.5

// memoryMaxCandidatesEnv lets operators tune how many memory candidates
// compete for a slot without a redeploy.
const memoryMaxCandidatesEnv = "MEMORY_MAX_CANDIDATES"

const defaultMemoryMaxCandidates = 10

// Engine is the working set compiler: it owns the generator fan-out and
// the optional session/memory collaborators, and exposes a single
// CompileWorkingSet entry point. The zero value is not usable; build one
// with NewEngine.
type Engine struct {
	Generators    []Generator
	SessionClient *session.Client
	MemoryClient  *memory.Client
	Embedder      Embedder
	FileReader    FileReader

	memoryMaxCandidates int
	tracer              trace.Tracer
	telemetrySettings   *telemetry.Settings
}

// NewEngine builds an Engine. sessionClient and memoryClient may be nil,
// in which case session context and memory candidates are simply skipped.
func NewEngine(generators []Generator, sessionClient *session.Client, memoryClient *memory.Client, settings *telemetry.Settings) *Engine {
	return &Engine{
		Generators:          generators,
		SessionClient:       sessionClient,
		MemoryClient:        memoryClient,
		memoryMaxCandidates: readMemoryMaxCandidates(),
		tracer:              telemetry.GetTracer(settings),
		telemetrySettings:   settings,
	}
}

func readMemoryMaxCandidates() int {
	if v := os.Getenv(memoryMaxCandidatesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMemoryMaxCandidates
}

// CompileWorkingSet runs the full pipeline: signal derivation, concurrent
// generation, session/memory enrichment, fusion, scoring, MMR selection,
// and filesystem hydration.
func (e *Engine) CompileWorkingSet(ctx context.Context, req CompileRequest) (CompileResponse, error) {
	if req.BudgetTokens <= 0 {
		return CompileResponse{}, wserrors.NewCompileError(wserrors.ErrInvalidRequest, "validate", req.Intent, fmt.Errorf("budget_tokens must be positive, got %d", req.BudgetTokens))
	}

	start := time.Now()

	attrs := telemetry.GetBaseAttributes(req.Intent, req.BudgetTokens, e.telemetrySettings)
	result, err := telemetry.RecordSpan(ctx, e.tracer, telemetry.SpanOptions{
		Name:        "wscompile.compile_workingset",
		Attributes:  attrs,
		EndWhenDone: true,
	}, func(ctx context.Context, _ trace.Span) (CompileResponse, error) {
		return e.compile(ctx, req, start)
	})
	return result, err
}

func (e *Engine) compile(ctx context.Context, req CompileRequest, start time.Time) (CompileResponse, error) {
	log.Printf("wscompile: compiling intent=%q budget=%d session_id=%q user_id=%q", req.Intent, req.BudgetTokens, req.SessionID, req.UserID)

	signals, err := DeriveSignals(req, e.Embedder)
	if err != nil {
		return CompileResponse{}, wserrors.NewCompileError(wserrors.ErrInvalidRequest, "derive_signals", req.Intent, err)
	}

	sessionSpans := e.fetchContextualEnrichment(ctx, req)

	maxContextTokens := int(float64(req.BudgetTokens) * maxContextRatio)
	contextualTokens := 0
	for _, s := range sessionSpans {
		contextualTokens += s.SpanRef.TokenCost
	}
	if contextualTokens > maxContextTokens && maxContextTokens > 0 {
		for contextualTokens > maxContextTokens && len(sessionSpans) > 0 {
			removed := sessionSpans[0]
			sessionSpans = sessionSpans[1:]
			contextualTokens -= removed.SpanRef.TokenCost
			if contextualTokens < 0 {
				contextualTokens = 0
			}
		}
	}

	retrievalBudget := req.BudgetTokens
	if contextualTokens > 0 {
		retrievalBudget = req.BudgetTokens - contextualTokens
		if retrievalBudget < 0 {
			retrievalBudget = 0
		}
		log.Printf("wscompile: budget allocation %d/%d retrieval, %d/%d session context (cap %d)",
			retrievalBudget, req.BudgetTokens, contextualTokens, req.BudgetTokens, maxContextTokens)
	}

	topK := EstimateTopK(req.BudgetTokens)
	candidateSets, err := GenerateAll(ctx, e.Generators, signals, req.HardFilters, topK)
	if err != nil {
		return CompileResponse{}, wserrors.NewCompileError(wserrors.ErrNoCandidates, "generate", req.Intent, err)
	}

	totalGenerated := 0
	for _, set := range candidateSets {
		totalGenerated += len(set)
	}

	memoryCandidates := e.fetchMemoryCandidates(ctx, req)
	totalGenerated += len(memoryCandidates)
	if len(memoryCandidates) > 0 {
		candidateSets = append(candidateSets, memoryCandidates)
	}

	fused := FuseCandidates(candidateSets)
	totalAfterDedup := len(fused)

	ScoreCandidates(fused, req.SoftPrefs)

	selected, explanations := SelectWithMMR(fused, retrievalBudget, req.SoftPrefs, req.Explain)

	finalSelected := make([]WSItem, 0, len(sessionSpans)+len(selected))
	finalSelected = append(finalSelected, sessionSpans...)
	finalSelected = append(finalSelected, selected...)

	workingSet := HydrateWorkingSet(e.FileReader, finalSelected)

	sourceDistribution := ComputeSourceDistribution(workingSet)
	utilization := 0.0
	if req.BudgetTokens > 0 {
		utilization = float64(workingSet.TotalTokens) / float64(req.BudgetTokens)
	}

	stats := CompileStats{
		CandidatesGenerated:  totalGenerated,
		CandidatesAfterDedup: totalAfterDedup,
		CandidatesSelected:   len(workingSet.Spans),
		TokenUtilization:     utilization,
		SourceDistribution:   sourceDistribution,
		GenerationTimeMs:     time.Since(start).Milliseconds(),
	}

	log.Printf("wscompile: compiled %d spans, %d tokens (%.1f%% utilization)", len(workingSet.Spans), workingSet.TotalTokens, utilization*100)

	resp := CompileResponse{
		WorkingSet: workingSet,
		Stats:      stats,
	}
	if req.Explain {
		resp.Rationale = explanations
	}
	return resp, nil
}

// fetchContextualEnrichment fetches session context. Failures are logged
// and degrade to no session context rather than failing the compile: a
// working set missing recent conversation is still useful, a 500 is not.
func (e *Engine) fetchContextualEnrichment(ctx context.Context, req CompileRequest) []WSItem {
	if e.SessionClient == nil || req.SessionID == "" {
		return nil
	}

	spans, err := e.fetchSessionContext(ctx, req.SessionID)
	if err != nil {
		log.Printf("wscompile: failed to fetch session context: %v (continuing without session context)", err)
		return nil
	}
	log.Printf("wscompile: retrieved %d session context spans", len(spans))
	return spans
}

func (e *Engine) fetchSessionContext(ctx context.Context, sessionID string) ([]WSItem, error) {
	context, err := e.SessionClient.GetContext(ctx, sessionID, 10)
	if err != nil {
		return nil, err
	}

	spans := make([]WSItem, 0, len(context.ContextSpans))
	for idx, span := range context.ContextSpans {
		spanID := fmt.Sprintf("session-%s-%d", sessionID, idx)
		spans = append(spans, WSItem{
			SpanRef: SpanRef{
				SpanID:       spanID,
				DocVersionID: fmt.Sprintf("session:%s", sessionID),
				CharStart:    0,
				CharEnd:      len(span.Text),
				TokenCost:    span.TokenEstimate,
			},
			Text: span.Text,
			Metadata: SpanMetadata{
				Filepath:     fmt.Sprintf("session/%s", sessionID),
				CreatedAt:    0,
				RecencyScore: 1.0,
				SourceType:   SourceSession,
				Tags:         []string{"session", "conversation"},
			},
		})
	}
	return spans, nil
}

var memoryStageByCategory = map[string]string{
	"user_preferences":  "memory_prefs",
	"preferences":       "memory_prefs",
	"project_context":   "memory_project",
	"decisions":         "memory_decisions",
	"project_decisions": "memory_decisions",
}

// fetchMemoryCandidates fetches memories and converts them into ordinary
// candidates so they compete in scoring and MMR selection rather than
// being force-included like session context.
func (e *Engine) fetchMemoryCandidates(ctx context.Context, req CompileRequest) []CandidateSpan {
	if e.MemoryClient == nil || req.UserID == "" {
		return nil
	}

	resp, err := e.MemoryClient.GetMemories(ctx, req.UserID, req.Intent, e.memoryMaxCandidates)
	if err != nil {
		log.Printf("wscompile: failed to fetch memory candidates: %v (continuing without memories)", err)
		return nil
	}

	now := time.Now().Unix()
	candidates := make([]CandidateSpan, 0, len(resp.Memories))
	for idx, mem := range resp.Memories {
		if isBlank(mem.Text) {
			continue
		}

		tokenCost := len(mem.Text) / 4
		if tokenCost < 10 {
			tokenCost = 10
		}

		semantic := 0.8
		if mem.Relevance != nil {
			semantic = *mem.Relevance
		}

		stage := "memory"
		tags := []string{"memory", mem.Source}
		if mem.Category != "" {
			if mapped, ok := memoryStageByCategory[mem.Category]; ok {
				stage = mapped
			}
			tags = append(tags, mem.Category)
		}

		candidates = append(candidates, CandidateSpan{
			SpanRef: SpanRef{
				DocVersionID: fmt.Sprintf("memory:%s", req.UserID),
				SpanID:       fmt.Sprintf("memory-%s-%d", req.UserID, idx),
				CharStart:    0,
				CharEnd:      len(mem.Text),
				TokenCost:    tokenCost,
			},
			Scores:      ScoreChannels{Semantic: semantic},
			TextPreview: mem.Text,
			Metadata: SpanMetadata{
				Filepath:     fmt.Sprintf("memory/%s", req.UserID),
				Stage:        stage,
				CreatedAt:    now,
				RecencyScore: 0.95,
				SourceType:   SourceMemory,
				Tags:         tags,
			},
		})
	}

	log.Printf("wscompile: retrieved %d memory candidates for user %s", len(candidates), req.UserID)
	return candidates
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
