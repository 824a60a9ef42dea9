// Package wstestutil provides call-tracking mocks for the working set
// compiler's collaborator interfaces, used across package tests.
package wstestutil

import (
	"context"
	"sync"

	"github.com/contextforge/wscompile/pkg/wscompile"
)

// MockGenerator is a wscompile.Generator that records every call it
// receives and returns a configurable fixed response.
type MockGenerator struct {
	mu    sync.Mutex
	name  string
	calls []GenerateCall

	Candidates []wscompile.CandidateSpan
	Err        error
}

// GenerateCall records the arguments of one Generate invocation.
type GenerateCall struct {
	Signals wscompile.DerivedSignals
	Filters wscompile.HardFilters
	TopK    int
}

// NewMockGenerator builds a MockGenerator named name.
func NewMockGenerator(name string) *MockGenerator {
	return &MockGenerator{name: name}
}

func (m *MockGenerator) Name() string {
	return m.name
}

func (m *MockGenerator) Generate(_ context.Context, signals wscompile.DerivedSignals, filters wscompile.HardFilters, topK int) ([]wscompile.CandidateSpan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, GenerateCall{Signals: signals, Filters: filters, TopK: topK})

	if m.Err != nil {
		return nil, m.Err
	}

	if topK >= len(m.Candidates) {
		out := make([]wscompile.CandidateSpan, len(m.Candidates))
		copy(out, m.Candidates)
		return out, nil
	}
	out := make([]wscompile.CandidateSpan, topK)
	copy(out, m.Candidates[:topK])
	return out, nil
}

// Calls returns a snapshot of recorded Generate calls.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GenerateCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Generate has been invoked.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockFileReader is a wscompile.FileReader backed by an in-memory map,
// used to test hydration without touching a real filesystem.
type MockFileReader struct {
	mu      sync.Mutex
	files   map[string]string
	reads   []string
	ReadErr map[string]error
}

// NewMockFileReader builds a MockFileReader serving the given file
// contents by path.
func NewMockFileReader(files map[string]string) *MockFileReader {
	return &MockFileReader{files: files, ReadErr: map[string]error{}}
}

func (r *MockFileReader) ReadFile(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads = append(r.reads, path)

	if err, ok := r.ReadErr[path]; ok {
		return "", err
	}
	content, ok := r.files[path]
	if !ok {
		return "", &notFoundError{path: path}
	}
	return content, nil
}

// Reads returns every path ReadFile was called with, including repeats
// the caller expected to be cache-deduplicated.
func (r *MockFileReader) Reads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.reads))
	copy(out, r.reads)
	return out
}

type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string {
	return "file not found: " + e.path
}
