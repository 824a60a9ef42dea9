// Package wserrors defines the error types surfaced by the working set
// compiler. Sentinel errors classify failure kinds for errors.Is checks;
// CompileError carries the per-call context around a sentinel.
package wserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap these with CompileError when request-specific
// context is available; compare against these with errors.Is.
var (
	// ErrBudgetTooSmall means budget_tokens is too small to fit even a
	// single candidate span.
	ErrBudgetTooSmall = errors.New("wscompile: budget_tokens too small for any candidate")

	// ErrNoCandidates means every generator returned zero spans.
	ErrNoCandidates = errors.New("wscompile: no candidates produced by any generator")

	// ErrInvalidRequest means the request failed basic validation
	// (budget_tokens <= 0) or signal derivation failed.
	ErrInvalidRequest = errors.New("wscompile: invalid compile request")

	// ErrHydrationFailed means a span's backing file could not be read or
	// the char range fell outside the file.
	ErrHydrationFailed = errors.New("wscompile: span hydration failed")

	// ErrCollaboratorUnavailable means a session or memory collaborator
	// could not be reached. Generation and enrichment degrade gracefully
	// on this error rather than failing the whole compile.
	ErrCollaboratorUnavailable = errors.New("wscompile: collaborator service unavailable")
)

// CompileError wraps a sentinel with the intent and stage it occurred in.
// It implements Unwrap so errors.Is(err, ErrBudgetTooSmall) still works
// through the wrapper.
type CompileError struct {
	Kind   error
	Stage  string
	Intent string
	Cause  error
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [stage=%s intent=%q]: %v", e.Kind, e.Stage, e.Intent, e.Cause)
	}
	return fmt.Sprintf("%s [stage=%s intent=%q]", e.Kind, e.Stage, e.Intent)
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

// NewCompileError builds a CompileError for the given stage and request
// intent, optionally wrapping a lower-level cause.
func NewCompileError(kind error, stage, intent string, cause error) *CompileError {
	return &CompileError{Kind: kind, Stage: stage, Intent: intent, Cause: cause}
}

// GeneratorError reports a single generator's failure. Generator failures
// are logged and swallowed by the fan-out orchestrator (a partial result
// from the other generators is still useful); this type exists so that
// behavior is visible in logs and tests rather than silently dropped.
type GeneratorError struct {
	Generator string
	Cause     error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %q failed: %v", e.Generator, e.Cause)
}

func (e *GeneratorError) Unwrap() error {
	return e.Cause
}
