// Package wscompile implements the working set compiler: the pipeline that
// fans out candidate generation across pluggable channels, fuses and scores
// the results, and runs a constrained MMR knapsack selection to assemble a
// bounded, diverse, explainable bundle of spans for a downstream agent.
package wscompile

// SpanRef is the immutable, addressable identity of a span: a character
// range within one version of a document. Identity is (DocVersionID, SpanID).
type SpanRef struct {
	DocVersionID string `json:"doc_version_id"`
	SpanID       string `json:"span_id"`
	CharStart    int    `json:"char_start"`
	CharEnd      int    `json:"char_end"`
	TokenCost    int    `json:"token_cost"`
}

// Key returns the (doc_version_id, span_id) identity tuple used for fusion
// and duplicate detection.
func (s SpanRef) Key() SpanKey {
	return SpanKey{DocVersionID: s.DocVersionID, SpanID: s.SpanID}
}

// SpanKey is the map key type for span identity.
type SpanKey struct {
	DocVersionID string
	SpanID       string
}

// ScoreChannels holds the four parallel scoring signals. Pre-normalization
// values live in [0, inf); post-normalization values live in [0, 1]. Zero
// means the channel did not contribute.
type ScoreChannels struct {
	Semantic   float64 `json:"semantic"`
	Lexical    float64 `json:"lexical"`
	Structural float64 `json:"structural"`
	Graph      float64 `json:"graph"`
}

// SourceType is a closed variant naming where a span came from. Go has no
// native sum type, so this is a string-backed enum; every switch over it
// should be exhaustive and fall back to SourceArtifact for unrecognized
// values rather than panicking, since this runs on a serving path.
type SourceType string

const (
	SourceContext    SourceType = "context"
	SourceKnowledge  SourceType = "knowledge"
	SourceWorkstream SourceType = "workstream"
	SourceArtifact   SourceType = "artifact"
	SourceSession    SourceType = "session"
	SourceMemory     SourceType = "memory"
)

// SpanMetadata carries everything about a span besides its text and scores.
type SpanMetadata struct {
	Filepath     string     `json:"filepath"`
	Workstream   string     `json:"workstream,omitempty"`
	Stage        string     `json:"stage,omitempty"`
	SectionTitle string     `json:"section_title,omitempty"`
	CreatedAt    int64      `json:"created_at"`
	RecencyScore float64    `json:"recency_score"`
	SourceType   SourceType `json:"source_type"`
	Tags         []string   `json:"tags,omitempty"`
}

// CandidateSpan is a span competing for a place in the working set. It
// lives only for the duration of one compile call and is mutated in place
// during normalization and scoring.
type CandidateSpan struct {
	SpanRef     SpanRef
	Scores      ScoreChannels
	Embedding   []float64// unit-length, may be nil
	TextPreview string
	Metadata    SpanMetadata

	BaseScore float64
	MMRScore  float64
}

// WSItem is one assembled unit of the final working set.
type WSItem struct {
	SpanRef  SpanRef      `json:"span_ref"`
	Text     string       `json:"text"`
	Metadata SpanMetadata `json:"metadata"`
}

// QuerySignalKind discriminates the QuerySignal sum type.
type QuerySignalKind string

const (
	QuerySignalNaturalLanguage QuerySignalKind = "natural_language"
	QuerySignalKeywords        QuerySignalKind = "keywords"
	QuerySignalStructuralHints QuerySignalKind = "structural_hints"
	QuerySignalEpisodeContext  QuerySignalKind = "episode_context"
)

// StructHints narrows candidate generation by structural pattern.
type StructHints struct {
	SectionPatterns []string
	DocTypes        []string
}

// QuerySignal is a closed variant over the ways a request can express
// intent. Exactly one of the payload fields is meaningful, selected by Kind.
type QuerySignal struct {
	Kind            QuerySignalKind
	NaturalLanguage string
	Keywords        []string
	StructuralHints StructHints
	EpisodeID       string
}

// HardFilters are constraints applied by generators, not by the core.
type HardFilters struct {
	AllowedPaths        []string
	ExcludedPaths       []string
	MaxDocAgeDays       *uint32
	RequiredWorkstreams []string
}

// ScoreWeights weights each channel's contribution to the base score.
type ScoreWeights struct {
	Semantic   float64
	Lexical    float64
	Structural float64
	Graph      float64
	Recency    float64
	StageBoost float64
}

// DefaultScoreWeights matches spec.md's default weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Semantic:   0.4,
		Lexical:    0.2,
		Structural: 0.2,
		Graph:      0.1,
		Recency:    0.05,
		StageBoost: 0.05,
	}
}

// SoftPreferences tune selection without excluding candidates outright.
type SoftPreferences struct {
	DiversityLambda     float64
	MaxSingleSourceRatio float64
	PreferRecent        bool
	PreferStages        []string
	ScoreWeights        ScoreWeights
}

// DefaultSoftPreferences matches spec.md's defaults: lambda=0.3, cap=0.35.
func DefaultSoftPreferences() SoftPreferences {
	return SoftPreferences{
		DiversityLambda:      0.3,
		MaxSingleSourceRatio: 0.35,
		ScoreWeights:         DefaultScoreWeights(),
	}
}

// CompileRequest is the input to the working set compiler.
type CompileRequest struct {
	Intent        string
	TaskID        string
	SessionID     string
	UserID        string
	QuerySignals  []QuerySignal
	BudgetTokens  int
	HardFilters   HardFilters
	SoftPrefs     SoftPreferences
	Explain       bool
}

// DerivedSignals is the output of signal derivation (§4.1): pure, total,
// no I/O.
type DerivedSignals struct {
	Intent          string
	IntentEmbedding []float64
	Keywords        []string
	StructHints     StructHints
	EpisodeContext  string
}

// WorkingSet is the final bundle returned to the caller.
type WorkingSet struct {
	Spans       []WSItem `json:"spans"`
	TotalTokens int      `json:"total_tokens"`
}

// CompileStats reports what happened during compilation.
type CompileStats struct {
	CandidatesGenerated   int            `json:"candidates_generated"`
	CandidatesAfterDedup  int            `json:"candidates_after_dedup"`
	CandidatesSelected    int            `json:"candidates_selected"`
	TokenUtilization      float64        `json:"token_utilization"`
	SourceDistribution    map[string]int `json:"source_distribution"`
	GenerationTimeMs      int64          `json:"generation_time_ms"`
}

// SpanExplanation is a value record explaining why a span was selected. It
// is emitted alongside the span, never referenced by pointer, so a working
// set can be serialized without dangling links.
type SpanExplanation struct {
	SpanRef          SpanRef  `json:"span_ref"`
	FinalScore       float64  `json:"final_score"`
	BaseScore        float64  `json:"base_score"`
	DiversityPenalty float64  `json:"diversity_penalty"`
	Reasons          []string `json:"reasons"`
}

// CompileResponse is the full result of a compile call.
type CompileResponse struct {
	WorkingSet WorkingSet        `json:"workingset"`
	Stats      CompileStats      `json:"stats"`
	Rationale  []SpanExplanation `json:"rationale,omitempty"`
}
