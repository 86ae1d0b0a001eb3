package assistant

import (
	"context"
	"time"
)

// Request is a handle to one in-flight call. It is never retried; the call
// ends when it returns, when the timeout fires or when Cancel is called.
type Request[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// Start runs fn in its own goroutine under a context bounded by timeout.
// A zero timeout means no deadline beyond ctx.
func Start[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) *Request[T] {
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}

	r := &Request[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(r.done)
		defer cancel()
		r.value, r.err = fn(callCtx)
		if r.err == nil && callCtx.Err() != nil {
			r.err = callCtx.Err()
		}
	}()
	return r
}

// Done is closed once the call has finished.
func (r *Request[T]) Done() <-chan struct{} {
	return r.done
}

// Cancel abandons the call. Wait still returns once fn has observed it.
func (r *Request[T]) Cancel() {
	r.cancel()
}

// Wait blocks until the call finishes.
func (r *Request[T]) Wait() (T, error) {
	<-r.done
	return r.value, r.err
}
