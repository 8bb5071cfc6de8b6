package llm

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of in-flight LLM calls. Acquire blocks until a
// slot is free or ctx is done. The returned release func is safe to call more
// than once.
type Limiter interface {
	Acquire(ctx context.Context) (release func(), err error)
	Backend() string
}

type localLimiter struct {
	sem *semaphore.Weighted
}

// NewLocalLimiter returns an in-process limiter admitting n concurrent calls.
func NewLocalLimiter(n int) Limiter {
	if n < 1 {
		n = 1
	}
	return &localLimiter{sem: semaphore.NewWeighted(int64(n))}
}

func (l *localLimiter) Acquire(ctx context.Context) (func(), error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.sem.Release(1) })
	}, nil
}

func (l *localLimiter) Backend() string {
	return "local"
}
