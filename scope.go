package di

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/graftlabs/graft/internal/errors"
)

// Scope resolves instances from registered bindings.
//
// A Scope can be injected into constructor functions to allow instances to
// resolve bindings later. The injected Scope cannot be used while the
// constructor is running; it must be stored and used after the constructor
// has returned.
//
// Scope is implemented by [*Container].
type Scope interface {
	// Contains returns true if the Scope has a binding of the given type.
	//
	// Available options:
	//	- [WithQualifier] specifies the qualifier associated with the binding.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns an instance of the given type from the Scope.
	//
	// Available options:
	//	- [WithQualifier] specifies the qualifier associated with the binding.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)
}

// Resolve an instance of type T from the [Scope].
func Resolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T](), opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}

// MustResolve resolves an instance of type T from the [Scope].
//
// It panics if the binding cannot be resolved.
func MustResolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) T {
	val, err := Resolve[T](ctx, s, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

func newInjectedScope(s Scope, key bindingKey) (*injectedScope, func()) {
	wrapper := &injectedScope{
		key:   key,
		scope: s,
	}

	return wrapper, wrapper.setReady
}

// injectedScope wraps a Container injected as a Scope dependency.
// It rejects use until the constructor it was injected into has returned.
type injectedScope struct {
	// key is the binding the Scope is getting injected into
	key   bindingKey
	scope Scope
	ready atomic.Bool
}

func (s *injectedScope) setReady() {
	s.ready.Store(true)
}

func (s *injectedScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.scope.Contains(t, opts...)
}

func (s *injectedScope) Resolve(
	ctx context.Context,
	t reflect.Type,
	opts ...ResolveOption,
) (any, error) {
	if !s.ready.Load() {
		return nil, errors.Errorf(
			"resolve %v: "+
				"resolve not supported on di.Scope while constructing %s: "+
				"the scope must be stored and used later",
			t, s.key,
		)
	}

	return s.scope.Resolve(ctx, t, opts...)
}

var _ Scope = (*injectedScope)(nil)
