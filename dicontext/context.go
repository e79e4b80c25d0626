// Package dicontext carries a [di.Scope] on a [context.Context] so request
// handlers and other deeply nested code can resolve bindings without
// threading the scope through every call.
package dicontext

import (
	"context"
	"reflect"

	di "github.com/graftlabs/graft"
	"github.com/graftlabs/graft/internal/errors"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided
// [di.Scope].
func WithScope(ctx context.Context, s di.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// Scope returns the [di.Scope] stored on the [context.Context], if present.
func Scope(ctx context.Context) di.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(di.Scope); ok {
		return s
	}
	return nil
}

// Resolve an instance of type T from the [di.Scope] stored on the
// [context.Context].
func Resolve[T any](ctx context.Context, opts ...di.ResolveOption) (T, error) {
	var t = reflect.TypeFor[T]()
	var val T

	s := Scope(ctx)
	if s == nil {
		return val, errors.Errorf("resolve %s from context: scope not found on context", t)
	}

	anyVal, err := s.Resolve(ctx, t, opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves an instance of type T from the [di.Scope] stored on
// the [context.Context].
//
// It panics if the binding cannot be resolved.
func MustResolve[T any](ctx context.Context, opts ...di.ResolveOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}
