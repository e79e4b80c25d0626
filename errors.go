package di

import (
	"errors"
)

var (
	// ErrNotRegistered is returned when no binding is found for a key
	// anywhere in the container chain.
	ErrNotRegistered = errors.New("binding not registered")

	// ErrDuplicateBinding is returned when a key is registered twice
	// with the same Container.
	ErrDuplicateBinding = errors.New("duplicate binding")

	// ErrInvalidAlias is returned when an alias is registered for a
	// target key that has not been registered.
	ErrInvalidAlias = errors.New("alias target not registered")

	// ErrDependencyCycle is returned when a binding transitively
	// depends on itself.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrContainerClosed is returned when a Container is used after
	// it has been closed.
	ErrContainerClosed = errors.New("container closed")
)
