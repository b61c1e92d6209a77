package async

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

func newFuture[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

// complete stores the outcome and releases waiters. Only the first call wins.
func (f *Future[U]) complete(res U, err error) {
	f.once.Do(func() {
		f.result = res
		f.err = err
		close(f.done)
	})
}

// Await waits for the asynchronous function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout occurs before completion, returns ErrTimeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-t.C:
		var zero U
		return zero, ErrTimeout
	}
}

// AwaitContext waits until the future completes or ctx is done, whichever comes first.
// When ctx wins, the context error is returned and the future keeps running;
// its eventual result is simply not observed by this call.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the future is complete.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes a function asynchronously and returns a Future.
// The function accepts a context.Context and a parameter of any type T, and returns (U, error).
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		return fn(ctx, param)
	})
}

// Go runs fn in its own goroutine and returns a Future for its result.
// A context that is already cancelled completes the future with ctx.Err() without calling fn.
// A panic in fn completes the future with an error wrapping ErrPanic.
func Go[U any](ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := newFuture[U]()

	go func() {
		// Early exit prevents goroutine work when context is pre-canceled
		if err := ctx.Err(); err != nil {
			var zero U
			f.complete(zero, err)
			return
		}

		f.complete(safeCall(func() (U, error) { return fn(ctx) }))
	}()

	return f
}

// Completed returns a future that is already resolved with v.
func Completed[U any](v U) *Future[U] {
	f := newFuture[U]()
	f.complete(v, nil)
	return f
}

// Failed returns a future that is already resolved with err.
func Failed[U any](err error) *Future[U] {
	f := newFuture[U]()
	var zero U
	f.complete(zero, err)
	return f
}

// Then returns a future resolved with fn applied to the value of f.
// Errors from f are propagated unchanged and fn is not called. A panic in fn
// resolves the returned future with an error wrapping ErrPanic.
func Then[T any, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := newFuture[U]()

	go func() {
		v, err := f.Await()
		if err != nil {
			var zero U
			next.complete(zero, err)
			return
		}
		next.complete(safeCall(func() (U, error) { return fn(v) }))
	}()

	return next
}

// safeCall runs fn and turns a panic into an ErrPanic error.
func safeCall[U any](fn func() (U, error)) (res U, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero U
			res, err = zero, fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return fn()
}
