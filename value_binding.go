package di

import (
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// valueBinding returns a pre-built instance when resolved.
type valueBinding struct {
	key           bindingKey
	owner         *Container
	val           any
	closerFactory closerFactory
	aliases       []reflect.Type
}

func newValueBinding(val any, opts ...BindingOption) (*valueBinding, error) {
	t := reflect.TypeOf(val)

	if err := validateBindingType(t); err != nil {
		return nil, err
	}

	b := &valueBinding{
		key: bindingKey{Type: t},
		val: val,
	}

	err := applyOptions(opts, func(opt BindingOption) error {
		return opt.applyBinding(b)
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *valueBinding) Key() bindingKey {
	return b.key
}

func (b *valueBinding) Lifetime() Lifetime {
	return Singleton
}

func (b *valueBinding) SetLifetime(l Lifetime) error {
	if l != Singleton {
		return errors.Errorf("lifetime %s: value bindings are always singletons", l)
	}
	return nil
}

func (b *valueBinding) SetQualifier(q any) {
	b.key.Qualifier = q
}

func (b *valueBinding) Aliases() []reflect.Type {
	return b.aliases
}

func (b *valueBinding) AddAlias(alias reflect.Type) error {
	if !b.key.Type.AssignableTo(alias) {
		return errors.Errorf("as %s: type %s not assignable to %s", alias, b.key.Type, alias)
	}

	b.aliases = append(b.aliases, alias)
	return nil
}

func (*valueBinding) Dependencies() []bindingKey {
	return nil
}

func (b *valueBinding) New([]reflect.Value) (any, error) {
	return b.val, nil
}

func (b *valueBinding) CloserFor(val any) Closer {
	// The Container is not responsible for closing value bindings unless
	// a closer factory was set with WithCloser or WithCloseFunc.
	if val == nil || b.closerFactory == nil {
		return nil
	}

	return b.closerFactory(val)
}

func (b *valueBinding) SetCloserFactory(cf closerFactory) {
	b.closerFactory = cf
}

func (b *valueBinding) Owner() *Container {
	return b.owner
}

func (b *valueBinding) setOwner(c *Container) {
	b.owner = c
}

func (b *valueBinding) String() string {
	return b.key.String()
}

var _ binding = (*valueBinding)(nil)
