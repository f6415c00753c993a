package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status is the three-state lifecycle of a request.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Messages shown for failed and empty loads. Every failure kind maps to the
// same text.
const (
	MessageFailed = "failed to load report"
	MessageEmpty  = "no data for this filter"
)

// ErrSuperseded is reported by a run that was replaced by a newer one.
var ErrSuperseded = errors.New("query superseded")

// State is a snapshot of a query.
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	Empty     bool
	FetchedAt time.Time
}

// Message returns the user-facing text for the state, or "" on a non-empty success.
func (s State[T]) Message() string {
	switch {
	case s.Status == StatusError:
		return MessageFailed
	case s.Status == StatusSuccess && s.Empty:
		return MessageEmpty
	}
	return ""
}

// Query tracks one page's request. Run with new inputs cancels the run in
// flight; only the latest run updates the state.
type Query[T any] struct {
	cache   *Cache
	ttl     time.Duration
	isEmpty func(T) bool

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[T]
}

// New creates a query backed by cache. isEmpty may be nil.
func New[T any](cache *Cache, ttl time.Duration, isEmpty func(T) bool) *Query[T] {
	return &Query[T]{cache: cache, ttl: ttl, isEmpty: isEmpty, state: State[T]{Status: StatusLoading}}
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Run fetches key, superseding any earlier run of this query.
func (q *Query[T]) Run(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) State[T] {
	q.mu.Lock()
	if q.cancel != nil {
		q.cancel()
	}
	q.gen++
	gen := q.gen
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.state = State[T]{Status: StatusLoading, Data: q.state.Data}
	q.mu.Unlock()
	defer cancel()

	v, at, err := q.cache.Fetch(ctx, key, q.ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	next := State[T]{FetchedAt: at}
	if err == nil {
		data, ok := v.(T)
		if !ok {
			err = fmt.Errorf("query %s: cached value has type %T", key, v)
		} else {
			next.Status, next.Data = StatusSuccess, data
			next.Empty = q.isEmpty != nil && q.isEmpty(data)
		}
	}
	if err != nil {
		next.Status, next.Err = StatusError, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.gen {
		return State[T]{Status: StatusError, Err: ErrSuperseded}
	}
	q.cancel = nil
	q.state = next
	return next
}

// Load is a one-shot Run for callers without a long-lived query.
func Load[T any](ctx context.Context, cache *Cache, key string, ttl time.Duration, isEmpty func(T) bool, fetch func(ctx context.Context) (T, error)) State[T] {
	return New(cache, ttl, isEmpty).Run(ctx, key, fetch)
}
