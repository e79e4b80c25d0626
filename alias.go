package di

import (
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// WithAlias registers Target as an alias for a previously registered Impl
// binding. Resolving Target resolves the Impl binding. This is the usual way
// to bind an interface to its implementation after the fact:
//
//	c, err := di.NewContainer(
//		di.WithBinding(postgres.NewUserStore), // returns *postgres.UserStore
//		di.WithAlias[UserStore, *postgres.UserStore](),
//	)
//
// The Impl key must already be registered somewhere in the container chain,
// otherwise registration fails with [ErrInvalidAlias]. Alias options are
// applied after binding options regardless of the order they are passed to
// [NewContainer].
//
// By default the alias does not cache instances itself, so it inherits the
// caching behavior of the target binding. Passing an explicit [Lifetime]
// makes the alias cache independently under its own key.
//
// Available options:
//   - [Lifetime] values give the alias its own caching discipline.
//   - [WithQualifier] attaches a qualifier to the alias key.
//   - [WithQualified] targets a qualified Impl binding.
func WithAlias[Target, Impl any](opts ...BindingOption) ContainerOption {
	return newContainerOption(orderAlias, func(c *Container) error {
		b, err := newAliasBinding(reflect.TypeFor[Target](), reflect.TypeFor[Impl](), opts...)
		if err != nil {
			return errors.Wrapf(err, "with alias %s", reflect.TypeFor[Target]())
		}

		if c.lookupBinding(b.target()) == nil {
			return errors.Wrapf(ErrInvalidAlias, "with alias %s: target %s", b.key, b.target())
		}

		return c.register(b)
	})
}

// aliasBinding redirects one key to another registered key.
// The target key is the binding's only dependency, so alias resolution
// reuses the regular dependency resolution path.
type aliasBinding struct {
	key      bindingKey
	owner    *Container
	deps     []bindingKey
	lifetime Lifetime
}

func newAliasBinding(target reflect.Type, impl reflect.Type, opts ...BindingOption) (*aliasBinding, error) {
	if err := validateBindingType(target); err != nil {
		return nil, err
	}

	if !impl.AssignableTo(target) {
		return nil, errors.Errorf("type %s not assignable to %s", impl, target)
	}

	b := &aliasBinding{
		key: bindingKey{Type: target},
		deps: []bindingKey{
			{Type: impl},
		},
		// Transient here means the alias itself does not cache, leaving
		// caching to the target binding.
		lifetime: Transient,
	}

	err := applyOptions(opts, func(opt BindingOption) error {
		return opt.applyBinding(b)
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *aliasBinding) target() bindingKey {
	return b.deps[0]
}

func (b *aliasBinding) Key() bindingKey {
	return b.key
}

func (b *aliasBinding) Lifetime() Lifetime {
	return b.lifetime
}

func (b *aliasBinding) SetLifetime(l Lifetime) error {
	b.lifetime = l
	return nil
}

func (b *aliasBinding) SetQualifier(q any) {
	b.key.Qualifier = q
}

func (*aliasBinding) Aliases() []reflect.Type {
	return nil
}

func (*aliasBinding) AddAlias(reflect.Type) error {
	return errors.New("as: not supported on alias bindings")
}

func (b *aliasBinding) Dependencies() []bindingKey {
	return b.deps
}

func (b *aliasBinding) New(deps []reflect.Value) (any, error) {
	return deps[0].Interface(), nil
}

func (*aliasBinding) CloserFor(any) Closer {
	// The target binding owns the instance and its closer.
	return nil
}

func (*aliasBinding) SetCloserFactory(closerFactory) {}

func (b *aliasBinding) Owner() *Container {
	return b.owner
}

func (b *aliasBinding) setOwner(c *Container) {
	b.owner = c
}

func (b *aliasBinding) String() string {
	return b.key.String()
}

var _ binding = (*aliasBinding)(nil)
