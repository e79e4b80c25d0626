package di

import "fmt"

// Lifetime specifies how instances are cached when a binding is resolved.
//
// Available lifetimes:
//   - [Singleton] creates the instance once per Container chain.
//   - [Transient] creates a new instance for each resolution.
//   - [Scoped] creates the instance once per Container instance.
type Lifetime uint8

const (
	// Singleton specifies that a binding is constructed once and subsequent
	// resolutions return the same instance. The instance is cached by the
	// Container the binding was registered with.
	//
	// This is the default lifetime for bindings.
	Singleton Lifetime = iota

	// Transient specifies that a new instance is constructed for each
	// resolution.
	Transient

	// Scoped specifies that a binding is constructed once per Container
	// instance. Each child scope created with [Container.NewScope] gets
	// its own instance.
	Scoped
)

// A Lifetime can be used directly as a binding option:
//
//	c, err := di.NewContainer(
//		di.WithBinding(NewWorkerPool, di.Transient),
//	)
func (l Lifetime) applyBinding(b binding) error {
	return b.SetLifetime(l)
}

var _ BindingOption = Singleton

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	case Scoped:
		return "Scoped"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
