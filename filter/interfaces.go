package filter

import (
	"context"

	"github.com/s0up4200/qbtlang/ts"
)

// Filter defines the basic interface for message filters
type Filter interface {
	// Evaluate checks if a message matches the filter criteria
	Evaluate(entry ts.Entry) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// CheckedFilter is a filter that reports runtime failures instead of
// treating them as a non-match
type CheckedFilter interface {
	CompiledFilter

	// Match evaluates the filter, returning an *EvaluationError on failure
	Match(entry ts.Entry) (bool, error)
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against messages
type Evaluator interface {
	// Evaluate evaluates a filter against all entries
	Evaluate(ctx context.Context, filter CompiledFilter, entries []ts.Entry) ([]ts.Entry, error)
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	// EvaluateBatch evaluates multiple filters against entries concurrently
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, entries []ts.Entry) (map[string][]ts.Entry, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// BatchResult represents the result of evaluating a filter
type BatchResult struct {
	FilterName string
	Matches    []ts.Entry
	Error      error
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit queues work, blocking until a slot frees or ctx is done
	Submit(ctx context.Context, work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
