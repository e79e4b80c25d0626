package di

import (
	"fmt"
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// WithBinding registers the provided function or value with a new Container
// when calling [NewContainer] or [Container.NewScope].
//
// If a function is provided, it will be called to construct the instance when
// the binding is resolved. The function can take any number of parameters
// which will also be resolved from the Container. It may also accept a
// [context.Context] or a [di.Scope]. The function must return the instance,
// or the instance and an error. The binding is registered under the return
// type of the function.
//
// If a value is provided, it is returned as-is when resolved. Value bindings
// are always singletons, and are registered under the concrete type of the
// value even if the variable was declared as an interface.
//
// If a constructed instance implements [Closer], or a compatible Close method
// signature, it will be closed when the Container is closed.
//
// Registering the same (type, qualifier) key twice with one Container fails
// with [ErrDuplicateBinding]. A child scope may register a key already
// registered with a parent; the child binding shadows the parent's.
//
// Available options:
//   - [Lifetime] values specify how instances are cached.
//   - [As] registers the binding under an additional interface type.
//   - [WithQualifier] attaches a qualifier to the binding's key.
//   - [WithQualified] attaches a qualifier to one of the function's parameters.
//   - [WithCloser], [IgnoreCloser], and [WithCloseFunc] control close behavior.
func WithBinding(funcOrValue any, opts ...BindingOption) ContainerOption {
	return newContainerOption(orderBinding, func(c *Container) error {
		if funcOrValue == nil {
			return errors.New("with binding: funcOrValue is nil")
		}

		if _, ok := funcOrValue.(BindingOption); ok {
			return errors.Errorf("with binding %T: unexpected BindingOption as funcOrValue", funcOrValue)
		}

		var b binding
		var err error
		if reflect.TypeOf(funcOrValue).Kind() == reflect.Func {
			b, err = newFuncBinding(funcOrValue, opts...)
		} else {
			b, err = newValueBinding(funcOrValue, opts...)
		}

		if err != nil {
			return errors.Wrapf(err, "with binding %T", funcOrValue)
		}

		return c.register(b)
	})
}

// BindingOption is used to configure a binding when calling [WithBinding]
// or [WithAlias].
type BindingOption interface {
	applyBinding(binding) error
}

type bindingOption func(binding) error

func (o bindingOption) applyBinding(b binding) error {
	return o(b)
}

// As registers the binding under the interface type T instead of the
// function's return type or the value's concrete type.
//
// As may be used multiple times to register a binding under several
// interfaces. The binding's type must be assignable to T.
func As[T any]() BindingOption {
	return bindingOption(func(b binding) error {
		return b.AddAlias(reflect.TypeFor[T]())
	})
}

// binding describes how the Container produces an instance for a key.
type binding interface {
	// Key returns the (type, qualifier) key the binding is registered under.
	Key() bindingKey

	// Lifetime returns the caching discipline for the binding.
	Lifetime() Lifetime
	SetLifetime(Lifetime) error

	SetQualifier(any)

	// Aliases returns additional types the binding is registered under.
	Aliases() []reflect.Type
	AddAlias(reflect.Type) error

	// Dependencies returns the keys that must be resolved before the
	// binding can be constructed.
	Dependencies() []bindingKey

	// New constructs the instance from the resolved dependencies.
	New(deps []reflect.Value) (any, error)

	// CloserFor returns a Closer for the instance, or nil if the
	// Container is not responsible for closing it.
	CloserFor(val any) Closer
	SetCloserFactory(closerFactory)

	// Owner is the Container the binding was registered with.
	Owner() *Container
	setOwner(*Container)
}

// bindingKey uniquely identifies a requested dependency.
// Two bindings of the same type with different qualifiers are distinct keys.
type bindingKey struct {
	Type      reflect.Type
	Qualifier any
}

func (k bindingKey) String() string {
	if k.Qualifier == nil {
		return k.Type.String()
	}
	return fmt.Sprintf("%s (qualifier %v)", k.Type, k.Qualifier)
}

func validateBindingType(t reflect.Type) error {
	switch t {
	// These types have special meaning to the Container.
	case typeError,
		typeContext,
		typeScope:
		return errors.New("invalid binding type")
	}

	switch t.Kind() {
	case reflect.Interface,
		reflect.Ptr,
		reflect.Struct:
		return nil
	}

	return errors.New("invalid binding type")
}
