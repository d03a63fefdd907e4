// Package future provides a minimal awaitable value used by asynchronous
// matchers and by mock functions that resolve or reject.
package future

import (
	"context"
	"sync"
)

// Awaitable is anything whose settled value can be waited for.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Future is a value that settles exactly once, either resolved with a value
// or rejected with an error.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

// New returns an unsettled future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future already resolved with v.
func Resolved(v any) *Future {
	f := New()
	f.Resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected(err error) *Future {
	f := New()
	f.Reject(err)
	return f
}

// Go runs fn in a goroutine and settles the future with its outcome.
func Go(fn func() (any, error)) *Future {
	f := New()
	go func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles the future with v. Later calls are ignored.
func (f *Future) Resolve(v any) {
	f.once.Do(func() {
		f.value = v
		close(f.done)
	})
}

// Reject settles the future with err. Later calls are ignored.
func (f *Future) Reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Func adapts a plain function to Awaitable. The function runs on every
// Await call.
type Func func(ctx context.Context) (any, error)

// Await calls fn.
func (fn Func) Await(ctx context.Context) (any, error) {
	return fn(ctx)
}
