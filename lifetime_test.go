package di_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	di "github.com/graftlabs/graft"
	"github.com/graftlabs/graft/internal/testtypes"
)

func Test_Lifetime_Singleton(t *testing.T) {
	ctx := context.Background()

	t.Run("same instance per container", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo, di.Singleton),
		)
		require.NoError(t, err)

		a := di.MustResolve[testtypes.Repo](ctx, c)
		b := di.MustResolve[testtypes.Repo](ctx, c)
		assert.Same(t, a, b)
	})

	t.Run("same instance through child scopes", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		scope, err := c.NewScope()
		require.NoError(t, err)

		a := di.MustResolve[testtypes.Repo](ctx, c)
		b := di.MustResolve[testtypes.Repo](ctx, scope)
		assert.Same(t, a, b)
	})
}

func Test_Lifetime_Transient(t *testing.T) {
	ctx := context.Background()

	c, err := di.NewContainer(
		di.WithBinding(testtypes.NewRepo, di.Transient),
	)
	require.NoError(t, err)

	a := di.MustResolve[testtypes.Repo](ctx, c)
	b := di.MustResolve[testtypes.Repo](ctx, c)
	assert.NotSame(t, a, b)
}

func Test_Lifetime_Scoped(t *testing.T) {
	ctx := context.Background()

	t.Run("distinct instance per scope", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo, di.Scoped),
		)
		require.NoError(t, err)

		child1, err := c.NewScope()
		require.NoError(t, err)
		child2, err := c.NewScope()
		require.NoError(t, err)

		a := di.MustResolve[testtypes.Repo](ctx, child1)
		b := di.MustResolve[testtypes.Repo](ctx, child2)
		assert.NotSame(t, a, b)
	})

	t.Run("same instance within one scope", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo, di.Scoped),
		)
		require.NoError(t, err)

		child, err := c.NewScope()
		require.NoError(t, err)

		a := di.MustResolve[testtypes.Repo](ctx, child)
		b := di.MustResolve[testtypes.Repo](ctx, child)
		assert.Same(t, a, b)
	})

	t.Run("registering container caches its own instance", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo, di.Scoped),
		)
		require.NoError(t, err)

		child, err := c.NewScope()
		require.NoError(t, err)

		root1 := di.MustResolve[testtypes.Repo](ctx, c)
		root2 := di.MustResolve[testtypes.Repo](ctx, c)
		fromChild := di.MustResolve[testtypes.Repo](ctx, child)

		assert.Same(t, root1, root2)
		assert.NotSame(t, root1, fromChild)
	})
}

func Test_Lifetime_String(t *testing.T) {
	assert.Equal(t, "Singleton", di.Singleton.String())
	assert.Equal(t, "Transient", di.Transient.String())
	assert.Equal(t, "Scoped", di.Scoped.String())
	assert.Equal(t, "Unknown Lifetime 100", di.Lifetime(100).String())
}

func Test_Lifetime_OnValueBinding(t *testing.T) {
	c, err := di.NewContainer(
		di.WithBinding(&testtypes.SQLRepo{}, di.Transient),
	)

	assert.Nil(t, c)
	assert.ErrorContains(t, err, "value bindings are always singletons")
}
