package di

import (
	"context"
	"reflect"

	"github.com/graftlabs/graft/internal/errors"
)

// Invoke calls the given function with parameters resolved from the provided
// [Scope].
//
// The function may take any number of parameters, which must be registered
// with the Scope, and may also accept a [context.Context] or a [di.Scope].
// It may return any number of results; an error return value is passed
// along and any other results are ignored.
//
// Available options:
//   - [WithQualified] attaches a qualifier to one of the parameters.
func Invoke(ctx context.Context, s Scope, fn any, opts ...InvokeOption) error {
	fnType := reflect.TypeOf(fn)
	fnVal := reflect.ValueOf(fn)

	if fnType == nil || fnType.Kind() != reflect.Func {
		return errors.Errorf("di.Invoke %T: fn must be a function", fn)
	}

	deps := make([]bindingKey, fnType.NumIn())
	for i := range fnType.NumIn() {
		deps[i] = bindingKey{
			Type: fnType.In(i),
		}
	}

	config := &invokeConfig{
		fn:   fnVal,
		deps: deps,
	}

	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvoke(config)
	})
	if err != nil {
		return errors.Wrapf(err, "di.Invoke %T", fn)
	}

	// Resolve parameters from the Scope
	in := make([]reflect.Value, fnType.NumIn())
	for i, dep := range config.deps {
		var depVal any
		var depErr error

		switch {
		case dep.Type == typeContext:
			depVal = ctx
		case dep.Type == typeScope:
			depVal = s
		case dep.Qualifier != nil:
			depVal, depErr = s.Resolve(ctx, dep.Type, WithQualifier(dep.Qualifier))
		default:
			depVal, depErr = s.Resolve(ctx, dep.Type)
		}

		if depErr != nil {
			// Stop at the first error
			return errors.Wrapf(depErr, "di.Invoke %T", fn)
		}
		in[i] = safeReflectValue(dep.Type, depVal)
	}

	// Check for a context error before we invoke the function
	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "di.Invoke %T", fn)
	}

	out := fnVal.Call(in)

	// Return the first error return value, if any.
	// Don't wrap the error, return it as-is.
	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}

// InvokeOption is used to configure the behavior of [Invoke].
//
// Available options:
//   - [WithQualified]
type InvokeOption interface {
	applyInvoke(*invokeConfig) error
}

type invokeConfig struct {
	fn   reflect.Value
	deps []bindingKey
}
