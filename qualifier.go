package di

import (
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// WithQualifier attaches a qualifier to a binding's key, disambiguating
// multiple bindings of the same type. The qualifier can be any comparable
// value, typically a string or a small constant type.
//
// A qualified binding can only be resolved by passing the same qualifier:
// there is no fallback from a qualified key to an unqualified one, or the
// other way around.
//
// WithQualifier can be used with:
//   - [WithBinding]
//   - [WithAlias]
//   - [Resolve]
//   - [MustResolve]
//   - [Container.Resolve]
//   - [Container.Contains]
func WithQualifier(qualifier any) QualifierOption {
	return qualifierOption{qualifier}
}

// WithQualified attaches a qualifier to a constructor dependency of type Dep
// when calling [WithBinding], [WithAlias], or [Invoke].
//
// This option can be used multiple times to qualify several dependencies.
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithBinding(db.NewPrimary, di.WithQualifier(db.Primary)),
//		di.WithBinding(db.NewReplica, di.WithQualifier(db.Replica)),
//		di.WithBinding(storage.NewReadWriteStore,
//			di.WithQualified[*db.DB](db.Primary),
//		),
//		di.WithBinding(storage.NewReadOnlyStore,
//			di.WithQualified[*db.DB](db.Replica),
//		),
//	)
//
// This option will return an error if the binding does not have a dependency
// of type Dep.
func WithQualified[Dep any](qualifier any) DependencyQualifierOption {
	return depQualifierOption{
		t:         reflect.TypeFor[Dep](),
		qualifier: qualifier,
	}
}

// QualifierOption is used to specify the qualifier associated with a binding
// when calling [WithBinding], [Resolve], [Container.Resolve], or
// [Container.Contains].
type QualifierOption interface {
	BindingOption
	ResolveOption
}

// DependencyQualifierOption is used to specify a qualifier for a dependency
// when calling [WithBinding] or [Invoke].
type DependencyQualifierOption interface {
	BindingOption
	InvokeOption
}

type qualifierOption struct {
	qualifier any
}

func (o qualifierOption) applyBinding(b binding) error {
	b.SetQualifier(o.qualifier)
	return nil
}

func (o qualifierOption) applyKey(key bindingKey) bindingKey {
	return bindingKey{
		Type:      key.Type,
		Qualifier: o.qualifier,
	}
}

var _ QualifierOption = qualifierOption{}

type depQualifierOption struct {
	t         reflect.Type
	qualifier any
}

// applyDeps assigns the qualifier to the first dependency of the right type
// that has not already been assigned one. The slice is modified in place.
func (o depQualifierOption) applyDeps(deps []bindingKey) error {
	for i := 0; i < len(deps); i++ {
		if deps[i].Type == o.t && deps[i].Qualifier == nil {
			deps[i].Qualifier = o.qualifier
			return nil
		}
	}
	return errors.Errorf("with qualified %s: parameter not found", o.t)
}

func (o depQualifierOption) applyBinding(b binding) error {
	return o.applyDeps(b.Dependencies())
}

func (o depQualifierOption) applyInvoke(c *invokeConfig) error {
	return o.applyDeps(c.deps)
}

var _ DependencyQualifierOption = depQualifierOption{}
