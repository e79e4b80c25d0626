package di

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/graftlabs/graft/internal/errors"
)

// Container is a dependency injection container.
// It holds binding registrations and resolves instances on demand, resolving
// their dependencies first.
//
// The binding map is immutable once the Container has been constructed.
// Resolution is safe for concurrent use.
type Container struct {
	id        uuid.UUID
	parent    *Container
	bindings  map[bindingKey]binding
	resolved  *xsync.MapOf[binding, *resolveFuture]
	logger    Logger
	closers   []Closer
	closersMu sync.Mutex
	closedMu  sync.RWMutex
	closed    bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// Available options:
//   - [WithBinding] registers a binding with a value or constructor function.
//   - [WithAlias] redirects one key to another registered key.
//   - [WithModule] applies a reusable group of options.
//   - [WithLogger] sets a debug logger.
//   - [WithValidation] validates binding dependencies.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{
		id:       uuid.New(),
		bindings: make(map[bindingKey]binding),
		resolved: xsync.NewMapOf[binding, *resolveFuture](),
		logger:   nopLogger{},
	}

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.NewContainer")
	}

	return c, nil
}

// ID returns the unique identifier of this Container instance.
func (c *Container) ID() uuid.UUID {
	return c.id
}

func (c *Container) String() string {
	return fmt.Sprintf("di.Container(%s)", c.id)
}

// ContainerOption is used to configure a new [Container] when calling
// [NewContainer] or [Container.NewScope].
type ContainerOption interface {
	order() optionOrder
	applyContainer(*Container) error
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	// Flatten any modules before sorting and applying options
	opts = flattenModules(opts)

	// Sort options by precedence so aliases apply after bindings and
	// validation applies last.
	// Use stable sort because the registration order of bindings matters.
	slices.SortStableFunc(opts, func(a, b ContainerOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	var errs []error
	for _, o := range opts {
		err := o.applyContainer(c)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Container) register(b binding) error {
	keys := make([]bindingKey, 0, 1)
	if aliases := b.Aliases(); len(aliases) > 0 {
		for _, alias := range aliases {
			keys = append(keys, bindingKey{
				Type:      alias,
				Qualifier: b.Key().Qualifier,
			})
		}
	} else {
		keys = append(keys, b.Key())
	}

	for _, key := range keys {
		if _, exists := c.bindings[key]; exists {
			return errors.Wrapf(ErrDuplicateBinding, "%s", key)
		}
	}

	for _, key := range keys {
		c.bindings[key] = b
		c.logger.Debugf("di: %s: registered %s [%s]", c, key, b.Lifetime())
	}

	b.setOwner(c)

	// Add closers for value bindings up front so they are closed even if
	// never resolved.
	// No locks needed here because registration happens while the
	// Container is being constructed.
	if vb, ok := b.(*valueBinding); ok {
		if closer := b.CloserFor(vb.val); closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	return nil
}

// lookupBinding finds the binding for key, walking outward from this
// Container to its ancestors. A child binding shadows a parent binding for
// the same key.
func (c *Container) lookupBinding(key bindingKey) binding {
	for scope := c; scope != nil; scope = scope.parent {
		if b, ok := scope.bindings[key]; ok {
			return b
		}
	}

	return nil
}

// NewScope creates a new [Container] with a child scope.
//
// Bindings registered with the parent [Container] are inherited by the child.
// Additional bindings can be registered with the new scope; they are isolated
// from the parent and from sibling scopes, and may shadow parent bindings.
//
// [Scoped] bindings resolved through the child are cached for the lifetime
// of the child.
//
// Available options:
//   - [WithBinding] registers a binding with a value or constructor function.
//   - [WithAlias] redirects one key to another registered key.
//   - [WithModule] applies a reusable group of options.
//   - [WithValidation] validates binding dependencies.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "di.Container.NewScope")
	}

	scope := &Container{
		id:       uuid.New(),
		parent:   c,
		bindings: make(map[bindingKey]binding),
		resolved: xsync.NewMapOf[binding, *resolveFuture](),
		logger:   c.logger,
	}

	err := scope.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "di.Container.NewScope")
	}

	c.logger.Debugf("di: %s: created child scope %s", c, scope)

	return scope, nil
}

// Contains returns true if a binding for the given [reflect.Type] is
// registered with this Container or one of its ancestors.
//
// Available options:
//   - [WithQualifier] specifies the qualifier associated with the binding.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	key := bindingKey{Type: t}
	for _, opt := range opts {
		key = opt.applyKey(key)
	}

	return c.lookupBinding(key) != nil
}

// ResolveOption can be used when calling [Resolve], [MustResolve],
// [Container.Resolve], or [Container.Contains].
//
// Available options:
//   - [WithQualifier]
type ResolveOption interface {
	applyKey(bindingKey) bindingKey
}

// Resolve an instance of the given [reflect.Type].
//
// The key must be registered with this Container or one of its ancestors,
// otherwise [ErrNotRegistered] is returned. Resolution after [Container.Close]
// fails with [ErrContainerClosed].
//
// Available options:
//   - [WithQualifier] specifies the qualifier associated with the binding.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	key := bindingKey{Type: t}
	for _, opt := range opts {
		key = opt.applyKey(key)
	}

	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "di.Container.Resolve %s", key)
	}

	val, err := resolveKey(ctx, c, key, make(resolveVisitor))
	if err != nil {
		c.logger.Debugf("di: %s: resolve %s failed: %v", c, key, err)
		return val, errors.Wrapf(err, "di.Container.Resolve %s", key)
	}

	return val, nil
}

func resolveKey(
	ctx context.Context,
	scope *Container,
	key bindingKey,
	visitor resolveVisitor,
) (any, error) {
	b := scope.lookupBinding(key)
	if b == nil {
		return nil, ErrNotRegistered
	}

	return resolveBinding(ctx, scope, key, b, visitor)
}

func resolveBinding(
	ctx context.Context,
	scope *Container,
	key bindingKey,
	b binding,
	visitor resolveVisitor,
) (val any, err error) {
	// Check context for errors
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Singleton instances are cached by the Container the binding was
	// registered with. Scoped instances are cached by the resolving
	// Container, so each child scope gets its own instance.
	lifetime := b.Lifetime()
	cache := scope
	if lifetime == Singleton {
		cache = b.Owner()
	}

	if lifetime != Transient {
		if fut, ok := cache.resolved.Load(b); ok {
			return fut.Result()
		}
	}

	// Throw an error if we've already visited this binding
	if !visitor.Enter(b) {
		return nil, ErrDependencyCycle
	}
	defer visitor.Leave(b)

	// Recursively resolve dependencies
	var depVals []reflect.Value

	deps := b.Dependencies()
	if len(deps) > 0 {
		depVals = make([]reflect.Value, len(deps))
		for i, depKey := range deps {
			var depVal any
			var depErr error

			switch depKey.Type {
			case typeContext:
				// Pass along the context
				depVal = ctx

			case typeScope:
				var ready func()
				depVal, ready = newInjectedScope(scope, key)
				defer ready()

			default:
				// Recursive call
				depVal, depErr = resolveKey(ctx, scope, depKey, visitor)
			}

			if depErr != nil {
				// Stop at the first error
				return nil, errors.Wrapf(depErr, "dependency %s", depKey)
			}
			depVals[i] = safeReflectValue(depKey.Type, depVal)
		}
	}

	if lifetime != Transient {
		// Publish a future for the instance before constructing it.
		// LoadOrCompute stores exactly one future per (binding, cache)
		// pair, so concurrent resolvers construct at most once and all
		// of them observe the same result.
		fut, loaded := cache.resolved.LoadOrCompute(b, newResolveFuture)
		if loaded {
			return fut.Result()
		}

		defer func() {
			fut.setResult(val, err)
			if err != nil {
				// A failed construction is not cached.
				// Waiters observe the error; the next resolution
				// retries.
				cache.resolved.Delete(b)
			}
		}()
	}

	// Construct the instance
	val, err = b.New(depVals)
	if err != nil {
		return val, err
	}

	// Add a Closer for the instance.
	// Value binding closers were already added at registration.
	if _, isValue := b.(*valueBinding); !isValue {
		if closer := b.CloserFor(val); closer != nil {
			cache.closersMu.Lock()
			cache.closers = append(cache.closers, closer)
			cache.closersMu.Unlock()
		}
	}

	return val, nil
}

// Close the Container and the instances it has cached.
//
// Instances are closed in the reverse order they were created, because later
// instances may depend on earlier ones. Errors returned from closing
// instances are joined together.
//
// In-flight resolutions are allowed to finish before Close proceeds; any
// resolution starting after Close fails with [ErrContainerClosed].
// Close returns [ErrContainerClosed] if called more than once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "di.Container.Close: closed already")
	}
	c.closed = true

	c.logger.Debugf("di: %s: closing", c)

	// Close instances in LIFO order
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err := c.closers[i].Close(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "di.Container.Close")
	}

	return nil
}

type optionOrder int8

const (
	orderLogger optionOrder = iota
	orderBinding
	orderAlias
	orderValidation
)

func newContainerOption(order optionOrder, fn func(*Container) error) ContainerOption {
	return containerOption{fn: fn, ord: order}
}

type containerOption struct {
	fn  func(*Container) error
	ord optionOrder
}

func (o containerOption) order() optionOrder {
	return o.ord
}

func (o containerOption) applyContainer(c *Container) error {
	return o.fn(c)
}

// resolveFuture is the pending or completed result of constructing an
// instance. Result blocks until the result has been set.
type resolveFuture struct {
	val  any
	err  error
	done chan struct{}
}

func newResolveFuture() *resolveFuture {
	return &resolveFuture{
		done: make(chan struct{}),
	}
}

func (f *resolveFuture) setResult(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

func (f *resolveFuture) Result() (any, error) {
	<-f.done
	return f.val, f.err
}

// resolveVisitor tracks the bindings in progress for one resolution call.
type resolveVisitor map[binding]struct{}

func (v resolveVisitor) Enter(b binding) bool {
	if _, exists := v[b]; exists {
		return false
	}

	v[b] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(b binding) {
	delete(v, b)
}
