package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"fieldforce/pkg/platform/sentinel"
)

// ConcurrentResult counts outcomes of a concurrent run, classified by store sentinel.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent runs fn on n goroutines released together. Errors wrapping
// sentinel.ErrAlreadyUsed count as conflicts and sentinel.ErrNotFound as not-found.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	successes, errs := RunConcurrentCollect(n, fn)
	result := &ConcurrentResult{Successes: successes}
	for _, err := range errs {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			result.Conflicts++
		case errors.Is(err, sentinel.ErrNotFound):
			result.NotFounds++
		default:
			result.Errors++
		}
	}
	return result
}

// RunConcurrentCollect is RunConcurrent for callers that inspect domain error codes
// rather than sentinels. Every goroutine waits on one gate so the calls overlap.
func RunConcurrentCollect(n int, fn func(idx int) error) (int32, []error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes atomic.Int32
		errs      []error
	)
	gate := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-gate
			if err := fn(idx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			successes.Add(1)
		}(i)
	}

	close(gate)
	wg.Wait()
	return successes.Load(), errs
}
