package notify

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// InFlight caps the background sends started through it and lets shutdown
// wait for them.
type InFlight struct {
	sem   *semaphore.Weighted
	limit int64
}

// NewInFlight allows at most limit goroutines at once; limit <= 0 means 64.
func NewInFlight(limit int) *InFlight {
	if limit <= 0 {
		limit = 64
	}
	return &InFlight{sem: semaphore.NewWeighted(int64(limit)), limit: int64(limit)}
}

// Go runs fn on its own goroutine and reports true, or reports false
// without running fn when the limit is reached.  It never blocks.
func (l *InFlight) Go(fn func()) bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	go func() {
		defer l.sem.Release(1)
		fn()
	}()
	return true
}

// Wait blocks until every goroutine started by Go has returned or ctx ends.
func (l *InFlight) Wait(ctx context.Context) {
	if err := l.sem.Acquire(ctx, l.limit); err != nil {
		return
	}
	l.sem.Release(l.limit)
}
