package resource

import (
	"context"

	"github.com/dmitrymomot/featurekit/pkg/async"
	"github.com/dmitrymomot/featurekit/pkg/reload"
)

// Supplier produces a value on demand. Suppliers may block; wrap them with
// AsyncLoader to hand them to a reloader.
type Supplier[T any] func(ctx context.Context) (T, error)

// AsyncLoader runs s on its own goroutine for every attempt.
func AsyncLoader[T any](s Supplier[T]) reload.Loader[T] {
	return func(ctx context.Context) *async.Future[T] {
		return async.Go(ctx, func(ctx context.Context) (T, error) {
			return s(ctx)
		})
	}
}

// AndThen feeds the result of s through fn, typically a parser.
// Errors from either step are returned unchanged.
func AndThen[T, U any](s Supplier[T], fn func(T) (U, error)) Supplier[U] {
	return func(ctx context.Context) (U, error) {
		v, err := s(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	}
}

// LoaderAndThen maps the future returned by l through fn.
func LoaderAndThen[T, U any](l reload.Loader[T], fn func(T) (U, error)) reload.Loader[U] {
	return func(ctx context.Context) *async.Future[U] {
		return async.Then(l(ctx), fn)
	}
}
