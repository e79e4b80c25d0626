package di_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	di "github.com/graftlabs/graft"
	"github.com/graftlabs/graft/internal/testtypes"
)

func Test_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("typed value", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		repo, err := di.Resolve[testtypes.Repo](ctx, c)
		assert.NoError(t, err)
		assert.NotNil(t, repo)
	})

	t.Run("zero value on error", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		repo, err := di.Resolve[testtypes.Repo](ctx, c)
		assert.Error(t, err)
		assert.Nil(t, repo)
	})
}

func Test_MustResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns value", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		repo := di.MustResolve[testtypes.Repo](ctx, c)
		assert.NotNil(t, repo)
	})

	t.Run("panics on error", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		assert.Panics(t, func() {
			di.MustResolve[testtypes.Repo](ctx, c)
		})
	})
}

type scopeHolder struct {
	scope di.Scope
}

func Test_InjectedScope(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected inside constructor", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
			di.WithBinding(func(s di.Scope) *scopeHolder {
				_, err := di.Resolve[testtypes.Repo](ctx, s)
				assert.ErrorContains(t, err, "the scope must be stored and used later")
				return &scopeHolder{scope: s}
			}),
		)
		require.NoError(t, err)

		holder := di.MustResolve[*scopeHolder](ctx, c)
		assert.NotNil(t, holder)
	})

	t.Run("usable after constructor returns", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
			di.WithBinding(func(s di.Scope) *scopeHolder {
				return &scopeHolder{scope: s}
			}),
		)
		require.NoError(t, err)

		holder := di.MustResolve[*scopeHolder](ctx, c)

		repo, err := di.Resolve[testtypes.Repo](ctx, holder.scope)
		assert.NoError(t, err)
		assert.NotNil(t, repo)

		assert.True(t, holder.scope.Contains(testtypes.TypeRepo))
	})
}
