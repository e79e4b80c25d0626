package di

import (
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// funcBinding constructs instances by calling a function, resolving its
// parameters from the Container.
type funcBinding struct {
	key           bindingKey
	owner         *Container
	fn            reflect.Value
	lifetime      Lifetime
	deps          []bindingKey
	closerFactory closerFactory
	aliases       []reflect.Type
}

func newFuncBinding(fn any, opts ...BindingOption) (*funcBinding, error) {
	fnType := reflect.TypeOf(fn)

	if fnType.IsVariadic() {
		return nil, errors.New("variadic constructor functions are not supported")
	}

	var t reflect.Type
	if fnType.NumOut() == 1 {
		t = fnType.Out(0)
	} else if fnType.NumOut() == 2 && fnType.Out(1) == typeError {
		t = fnType.Out(0)
	} else {
		return nil, errors.New("constructor must return Instance or (Instance, error)")
	}

	if err := validateBindingType(t); err != nil {
		return nil, err
	}

	var deps []bindingKey
	if fnType.NumIn() > 0 {
		deps = make([]bindingKey, fnType.NumIn())
		for i := range fnType.NumIn() {
			deps[i] = bindingKey{
				Type: fnType.In(i),
			}
		}
	}

	b := &funcBinding{
		key:           bindingKey{Type: t},
		fn:            reflect.ValueOf(fn),
		deps:          deps,
		closerFactory: detectCloser,
	}

	err := applyOptions(opts, func(opt BindingOption) error {
		return opt.applyBinding(b)
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *funcBinding) Key() bindingKey {
	return b.key
}

func (b *funcBinding) Lifetime() Lifetime {
	return b.lifetime
}

func (b *funcBinding) SetLifetime(l Lifetime) error {
	b.lifetime = l
	return nil
}

func (b *funcBinding) SetQualifier(q any) {
	b.key.Qualifier = q
}

func (b *funcBinding) Aliases() []reflect.Type {
	return b.aliases
}

func (b *funcBinding) AddAlias(alias reflect.Type) error {
	if !b.key.Type.AssignableTo(alias) {
		return errors.Errorf("as %s: type %s not assignable to %s", alias, b.key.Type, alias)
	}

	b.aliases = append(b.aliases, alias)
	return nil
}

func (b *funcBinding) Dependencies() []bindingKey {
	return b.deps
}

func (b *funcBinding) New(deps []reflect.Value) (any, error) {
	out := b.fn.Call(deps)

	val := out[0].Interface()

	var err error
	if len(out) == 2 && !out[1].IsNil() {
		err = out[1].Interface().(error)
	}

	return val, err
}

func (b *funcBinding) CloserFor(val any) Closer {
	if val == nil || b.closerFactory == nil {
		return nil
	}

	return b.closerFactory(val)
}

func (b *funcBinding) SetCloserFactory(cf closerFactory) {
	b.closerFactory = cf
}

func (b *funcBinding) Owner() *Container {
	return b.owner
}

func (b *funcBinding) setOwner(c *Container) {
	b.owner = c
}

func (b *funcBinding) String() string {
	return b.key.String()
}

var _ binding = (*funcBinding)(nil)
