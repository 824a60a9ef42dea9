package wscompile

import (
	"context"
	"log"
	"sync"

	"github.com/contextforge/wscompile/pkg/wscompile/wserrors"
)

// Generator is a pluggable candidate channel (semantic, lexical, structural,
// graph, or any custom source). Implementations must be safe for concurrent
// use: Generate is called from its own goroutine on every compile.
type Generator interface {
	Name() string
	Generate(ctx context.Context, signals DerivedSignals, filters HardFilters, topK int) ([]CandidateSpan, error)
}

// GenerateAll fans out Generate to every generator concurrently and
// collects their results in the order of the generators slice, whatever
// order they finish in. A generator that errors is logged and its
// contribution dropped rather than failing the whole compile; the call
// fails only if every generator comes back empty.
func GenerateAll(ctx context.Context, generators []Generator, signals DerivedSignals, filters HardFilters, topK int) ([][]CandidateSpan, error) {
	type result struct {
		idx        int
		name       string
		candidates []CandidateSpan
		err        error
	}

	resultChan := make(chan result, len(generators))
	var wg sync.WaitGroup

	for i, gen := range generators {
		wg.Add(1)
		go func(i int, gen Generator) {
			defer wg.Done()
			candidates, err := gen.Generate(ctx, signals, filters, topK)
			resultChan <- result{idx: i, name: gen.Name(), candidates: candidates, err: err}
		}(i, gen)
	}

	wg.Wait()
	close(resultChan)

	ordered := make([]result, len(generators))
	for res := range resultChan {
		ordered[res.idx] = res
	}

	allCandidates := make([][]CandidateSpan, 0, len(generators))
	anyNonEmpty := false
	for _, res := range ordered {
		if res.err != nil {
			log.Printf("wscompile: generator %q failed: %v", res.name, &wserrors.GeneratorError{Generator: res.name, Cause: res.err})
			continue
		}
		if len(res.candidates) > 0 {
			anyNonEmpty = true
		}
		allCandidates = append(allCandidates, res.candidates)
	}

	if !anyNonEmpty {
		return nil, wserrors.ErrNoCandidates
	}

	return allCandidates, nil
}

// EstimateTopK sizes how many candidates to request from each generator
// given the overall token budget: wider budgets need deeper candidate
// pools to leave selection enough room to be picky.
func EstimateTopK(budgetTokens int) int {
	topK := budgetTokens / 50
	if topK < 200 {
		topK = 200
	}
	return topK
}

// MockGenerator returns a fixed candidate set, truncated to topK. It is
// the Go analogue of a stub channel used in tests and local development
// when no real semantic/lexical backend is configured.
type MockGenerator struct {
	GenName    string
	Candidates []CandidateSpan
}

func (g *MockGenerator) Name() string {
	return g.GenName
}

func (g *MockGenerator) Generate(_ context.Context, _ DerivedSignals, _ HardFilters, topK int) ([]CandidateSpan, error) {
	if topK >= len(g.Candidates) {
		out := make([]CandidateSpan, len(g.Candidates))
		copy(out, g.Candidates)
		return out, nil
	}
	out := make([]CandidateSpan, topK)
	copy(out, g.Candidates[:topK])
	return out, nil
}
