package di

import (
	"context"
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// Closer is used to tear down instances when closing the Container.
//
// If a resolved instance implements Closer, or one of the other compatible
// function signatures, the Close function will be called when the Container
// that cached the instance is closed.
//
// Any of these Close method signatures are supported:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// See related options:
//   - [WithCloser]
//   - [IgnoreCloser]
//   - [WithCloseFunc]
type Closer interface {
	Close(ctx context.Context) error
}

// WithCloser is used to close an instance when the Container is closed.
//
// Instances produced by function bindings are closed by default if they
// implement [Closer] or a compatible Close method signature. Value bindings
// are not closed by default; use this option to opt in.
func WithCloser() BindingOption {
	return bindingOption(func(b binding) error {
		b.SetCloserFactory(detectCloser)
		return nil
	})
}

// IgnoreCloser is used when you do not want an instance that implements
// [Closer], or another supported Close method signature, to be closed when
// the Container is closed.
//
// This is useful when the lifecycle of an instance is managed outside the
// Container.
func IgnoreCloser() BindingOption {
	return bindingOption(func(b binding) error {
		b.SetCloserFactory(nil)
		return nil
	})
}

type closerFactory func(val any) Closer

// WithCloseFunc sets a custom function to call for an instance when the
// Container is closed.
//
// This is useful when a type has a method named Shutdown or Stop instead of
// Close:
//
//	di.WithCloseFunc(func(ctx context.Context, s *http.Server) error {
//		return s.Shutdown(ctx)
//	})
//
// It can also be used to close an instance registered as a value, since
// value bindings are not closed by default.
//
// This option will return an error if the binding type is not assignable to T.
func WithCloseFunc[T any](f func(context.Context, T) error) BindingOption {
	return bindingOption(func(b binding) error {
		bindingType := b.Key().Type
		closerType := reflect.TypeFor[T]()

		if !bindingType.AssignableTo(closerType) {
			return errors.Errorf("with close func: binding type %s is not assignable to %s",
				bindingType, closerType)
		}

		b.SetCloserFactory(func(val any) Closer {
			return closeFunc(func(ctx context.Context) error {
				return f(ctx, val.(T))
			})
		})
		return nil
	})
}

// detectCloser returns a Closer if the given value implements the Closer
// interface or any of the compatible Close method signatures.
func detectCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case closerContextOnly:
		return closerContextOnlyWrapper{c}
	case closerErrorOnly:
		return closerErrorOnlyWrapper{c}
	case closerBare:
		return closerBareWrapper{c}
	default:
		return nil
	}
}

type closerContextOnly interface {
	Close(ctx context.Context)
}

type closerErrorOnly interface {
	Close() error
}

type closerBare interface {
	Close()
}

type closerContextOnlyWrapper struct {
	c closerContextOnly
}

func (w closerContextOnlyWrapper) Close(ctx context.Context) error {
	w.c.Close(ctx)
	return nil
}

type closerErrorOnlyWrapper struct {
	c closerErrorOnly
}

func (w closerErrorOnlyWrapper) Close(context.Context) error {
	return w.c.Close()
}

type closerBareWrapper struct {
	c closerBare
}

func (w closerBareWrapper) Close(context.Context) error {
	w.c.Close()
	return nil
}

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}
