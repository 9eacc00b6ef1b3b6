package filter

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/s0up4200/qbtlang/ts"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator interfaces
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   256,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.workerCount <= 0 {
		e.workerCount = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate evaluates a single filter against all entries, keeping document order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, entries []ts.Entry) ([]ts.Entry, error) {
	if len(entries) == 0 {
		return []ts.Entry{}, nil
	}

	// Small catalogs are not worth the scheduling overhead
	if len(entries) < e.batchSize || !filter.IsThreadSafe() {
		return evaluateSequential(filter, entries)
	}

	return e.evaluateConcurrent(ctx, filter, entries)
}

// EvaluateBatch evaluates multiple filters against entries. Evaluation
// failures of every filter are joined into the returned error.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, entries []ts.Entry) (map[string][]ts.Entry, error) {
	results := make(map[string][]ts.Entry, len(filters))
	if len(filters) == 0 || len(entries) == 0 {
		return results, nil
	}

	// Each filter runs sequentially inside one worker; running Evaluate from
	// a worker would wait on the same pool.
	resultChan := make(chan BatchResult, len(filters))

	var wg sync.WaitGroup
	for name, filter := range filters {
		name, filter := name, filter
		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				resultChan <- BatchResult{FilterName: name, Error: err}
				return
			}

			matches, err := evaluateSequential(filter, entries)
			resultChan <- BatchResult{FilterName: name, Matches: matches, Error: err}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var errs []error
	for result := range resultChan {
		if result.Error != nil {
			errs = append(errs, result.Error)
			continue
		}
		results[result.FilterName] = result.Matches
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

// evaluateSequential stops at the first evaluation failure
func evaluateSequential(filter CompiledFilter, entries []ts.Entry) ([]ts.Entry, error) {
	checked, _ := filter.(CheckedFilter)

	matches := make([]ts.Entry, 0, len(entries)/10)
	for _, entry := range entries {
		if checked == nil {
			if filter.Evaluate(entry) {
				matches = append(matches, entry)
			}
			continue
		}

		ok, err := checked.Match(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// evaluateConcurrent splits entries into chunks evaluated on the worker pool
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, entries []ts.Entry) ([]ts.Entry, error) {
	chunkSize := max(len(entries)/e.workerCount, e.batchSize)
	chunks := (len(entries) + chunkSize - 1) / chunkSize
	results := make([][]ts.Entry, chunks)
	errs := make([]error, chunks)

	var wg sync.WaitGroup
	for i := 0; i < chunks; i++ {
		i := i
		start := i * chunkSize
		chunk := entries[start:min(start+chunkSize, len(entries))]

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			// Each goroutine owns its slot
			results[i], errs[i] = evaluateSequential(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matches := make([]ts.Entry, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
