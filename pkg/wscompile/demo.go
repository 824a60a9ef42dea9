package wscompile

import "time"

// DemoCandidates returns a fixed set of working-set-compiler documentation
// spans, used to seed the mock generator in every entrypoint's default
// (no real backend configured) mode so the demo path actually returns a
// working set instead of failing with ErrNoCandidates.
func DemoCandidates() []CandidateSpan {
	now := time.Now().Unix()

	return []CandidateSpan{
		{
			SpanRef: SpanRef{DocVersionID: "doc_adr_retrieval", SpanID: "span_retrieval_as_compilation", CharStart: 0, CharEnd: 800, TokenCost: 180},
			Scores:  ScoreChannels{Semantic: 0.95, Lexical: 0.90, Structural: 0.85, Graph: 0.80},
			Embedding: []float64{0.8, 0.7, 0.6, 0.5},
			TextPreview: "We will implement a Working Set Compiler (compile_workingset()): Treat retrieval as a compilation step, not a simple query. Model context as a set of SpanRefs with (doc_version_id, span_id, char_start, char_end, token_cost). Generate candidate spans from multiple generators: structural, lexical, semantic, graph. Normalize multi-channel scores and compute a base utility score. Use Maximal Marginal Relevance (MMR) to balance relevance and diversity.",
			Metadata: SpanMetadata{
				Filepath: "03_workstreams/ws-orion/99_decisions/ADR-20251113-retrieval-as-compilation.md",
				Workstream: "ws-orion", Stage: "decisions", SectionTitle: "Decision",
				CreatedAt: now, RecencyScore: 0.95, SourceType: SourceWorkstream,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_adr_retrieval", SpanID: "span_naive_rag_problems", CharStart: 800, CharEnd: 1400, TokenCost: 140},
			Scores:  ScoreChannels{Semantic: 0.92, Lexical: 0.88, Structural: 0.80, Graph: 0.75},
			Embedding: []float64{0.75, 0.65, 0.55, 0.45},
			TextPreview: "Naive Semantic Top-K: Chunk documents (e.g., 512-1024 tokens), embed, and return top-k most similar chunks. Cons: Fails to respect token budgets precisely. Over-represents a single source. Provides no explicit notion of diversity. No built-in explainability. Chunk boundaries are arbitrary; spans may cut across logical sections. Reason Rejected: Insufficient control and traceability for multi-agent, multi-step workflows.",
			Metadata: SpanMetadata{
				Filepath: "03_workstreams/ws-orion/99_decisions/ADR-20251113-retrieval-as-compilation.md",
				Workstream: "ws-orion", Stage: "decisions", SectionTitle: "Alternatives Considered: Naive Semantic Top-K",
				CreatedAt: now, RecencyScore: 0.95, SourceType: SourceWorkstream,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_spec_workingset", SpanID: "span_spanref_design", CharStart: 0, CharEnd: 600, TokenCost: 150},
			Scores:  ScoreChannels{Semantic: 0.93, Lexical: 0.85, Structural: 0.90, Graph: 0.70},
			Embedding: []float64{0.72, 0.68, 0.62, 0.58},
			TextPreview: "SpanRef is the addressable unit of reading. It contains: doc_version_id (SHA256 of document bytes), span_id (stable within version, UUID or derived), char_start and char_end offsets, and token_cost for budget tracking. The doc_version_id ensures no drift: spans are immutable per version. The span_id plus offsets allow exact quoting and provenance. This design solves the chunk boundary problem by making spans explicitly addressable and version-stable.",
			Metadata: SpanMetadata{
				Filepath: "docs/AXONGRAPH_WORKINGSET_SPEC.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Core Data Model: SpanRef",
				CreatedAt: now - 3600, RecencyScore: 0.90, SourceType: SourceKnowledge,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_spec_workingset", SpanID: "span_mmr_algorithm", CharStart: 600, CharEnd: 1200, TokenCost: 160},
			Scores:  ScoreChannels{Semantic: 0.94, Lexical: 0.89, Structural: 0.88, Graph: 0.72},
			Embedding: []float64{0.78, 0.71, 0.65, 0.59},
			TextPreview: "MMR (Maximal Marginal Relevance) balances relevance and diversity. At each selection step: MMR(span) = lambda * base_score(span) - (1 - lambda) * max_sim(span, selected). Lambda is the diversity_lambda parameter in SoftPreferences. max_sim uses cosine similarity between embeddings. This ensures we don't select redundant spans that are too similar to already-selected content, maintaining diversity while respecting relevance.",
			Metadata: SpanMetadata{
				Filepath: "docs/AXONGRAPH_WORKINGSET_SPEC.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Selection Algorithm: MMR",
				CreatedAt: now - 3600, RecencyScore: 0.90, SourceType: SourceKnowledge,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_spec_workingset", SpanID: "span_budget_constraints", CharStart: 1200, CharEnd: 1700, TokenCost: 130},
			Scores:  ScoreChannels{Semantic: 0.90, Lexical: 0.82, Structural: 0.85, Graph: 0.68},
			Embedding: []float64{0.70, 0.66, 0.60, 0.54},
			TextPreview: "Selection algorithm goals: Maximize relevance to intent, diversity across content, and source mix (avoid depending on 1 doc). Subject to constraints: total_tokens <= budget_tokens, and tokens_from_single_source <= max_single_source_ratio * total_tokens. This implements a knapsack-style optimization where each span has a cost (tokens) and utility (base_score), ensuring we stay within budget while maximizing value.",
			Metadata: SpanMetadata{
				Filepath: "docs/AXONGRAPH_WORKINGSET_SPEC.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Selection Algorithm: Goals and Constraints",
				CreatedAt: now - 3600, RecencyScore: 0.90, SourceType: SourceKnowledge,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_bold_vision", SpanID: "span_agent_first_goals", CharStart: 0, CharEnd: 700, TokenCost: 170},
			Scores:  ScoreChannels{Semantic: 0.88, Lexical: 0.80, Structural: 0.82, Graph: 0.65},
			Embedding: []float64{0.68, 0.64, 0.58, 0.52},
			TextPreview: "Agent-first I/O: Optimize for read patterns agents use: skim -> narrow -> deep read -> quote spans -> reason -> write notes. Span precision: Address any byte/char/token range with stable IDs. Return exact snippets, not just whole chunks. Cost-aware retrieval: Compile a minimal working set context for a step, bounded by token budget and latency. Trust & provenance: Every span has lineage (source file, hash, time, transform pipeline).",
			Metadata: SpanMetadata{
				Filepath: "bold.md",
				Workstream: "ws-orion", Stage: "research", SectionTitle: "Design Goals",
				CreatedAt: now - 7200, RecencyScore: 0.85, SourceType: SourceContext,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_bold_vision", SpanID: "span_chunk_problems", CharStart: 700, CharEnd: 1200, TokenCost: 125},
			Scores:  ScoreChannels{Semantic: 0.91, Lexical: 0.86, Structural: 0.78, Graph: 0.70},
			Embedding: []float64{0.73, 0.67, 0.61, 0.55},
			TextPreview: "Why span-centric? Chunking is brittle. Addressable spans let agents pull exactly what they need and stitch coherent narratives without re-reading whole files. Chunk boundaries are arbitrary and often cut across logical sections, breaking context. Spans with stable IDs and precise offsets solve this by allowing exact addressability and quotation, maintaining semantic coherence even as documents evolve.",
			Metadata: SpanMetadata{
				Filepath: "bold.md",
				Workstream: "ws-orion", Stage: "research", SectionTitle: "Why Span-Centric",
				CreatedAt: now - 7200, RecencyScore: 0.85, SourceType: SourceContext,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_spec_workingset", SpanID: "span_multi_channel_scoring", CharStart: 1700, CharEnd: 2200, TokenCost: 145},
			Scores:  ScoreChannels{Semantic: 0.89, Lexical: 0.84, Structural: 0.87, Graph: 0.73},
			Embedding: []float64{0.71, 0.65, 0.59, 0.53},
			TextPreview: "Base score computation uses weighted multi-channel signals: base_score(span) = w_sem * semantic + w_lex * lexical + w_struct * structural + w_graph * graph + w_recency * recency_score + w_stage * stage_boost. Default weights: semantic 0.4, lexical 0.2, structural 0.2, graph 0.1, recency 0.05, stage_boost 0.05. Each channel is normalized using min-max normalization across all candidates before combining.",
			Metadata: SpanMetadata{
				Filepath: "docs/AXONGRAPH_WORKINGSET_SPEC.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Scoring & Normalization",
				CreatedAt: now - 3600, RecencyScore: 0.90, SourceType: SourceKnowledge,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_spec_workingset", SpanID: "span_source_diversity", CharStart: 2200, CharEnd: 2650, TokenCost: 120},
			Scores:  ScoreChannels{Semantic: 0.87, Lexical: 0.81, Structural: 0.83, Graph: 0.69},
			Embedding: []float64{0.69, 0.63, 0.57, 0.51},
			TextPreview: "Source diversity is enforced during selection: at each step, check if adding the candidate would cause tokens_from_source / total_tokens to exceed max_single_source_ratio. If so, skip this candidate and try the next highest-scoring one. This prevents over-reliance on a single document and ensures the working set draws from multiple perspectives, improving robustness and reducing bias.",
			Metadata: SpanMetadata{
				Filepath: "docs/AXONGRAPH_WORKINGSET_SPEC.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Source Diversity Enforcement",
				CreatedAt: now - 3600, RecencyScore: 0.90, SourceType: SourceKnowledge,
			},
		},
		{
			SpanRef: SpanRef{DocVersionID: "doc_bold_vision", SpanID: "span_workplan_orchestration", CharStart: 1200, CharEnd: 1700, TokenCost: 135},
			Scores:  ScoreChannels{Semantic: 0.86, Lexical: 0.79, Structural: 0.81, Graph: 0.66},
			Embedding: []float64{0.67, 0.61, 0.55, 0.49},
			TextPreview: "WorkPlan execution requires DAG validation to detect cycles, task state tracking (PENDING/READY/RUNNING/DONE/FAILED), and dependency resolution. Tasks become READY when all dependencies are DONE. The executor must identify ready tasks, dispatch them to appropriate role-specific agents, track completion, and handle failures. Integration with the context engine provides context for each task via compile_workingset.",
			Metadata: SpanMetadata{
				Filepath: "bold.md",
				Workstream: "ws-orion", Stage: "design", SectionTitle: "Multi-Agent Orchestration",
				CreatedAt: now - 7200, RecencyScore: 0.85, SourceType: SourceContext,
			},
		},
	}
}
