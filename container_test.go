package di_test

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	di "github.com/graftlabs/graft"
	"github.com/graftlabs/graft/internal/testtypes"
	"github.com/graftlabs/graft/internal/testutils"
)

func Test_NewContainer(t *testing.T) {
	t.Run("no options", func(t *testing.T) {
		c, err := di.NewContainer()
		assert.NotNil(t, c)
		assert.NoError(t, err)
	})

	t.Run("with func binding", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		assert.NotNil(t, c)
		assert.NoError(t, err)

		assert.True(t, c.Contains(testtypes.TypeRepo))
	})

	t.Run("with value binding", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(&testtypes.SQLRepo{}),
		)
		assert.NotNil(t, c)
		assert.NoError(t, err)

		assert.True(t, c.Contains(testtypes.TypeSQLRepo))
		assert.False(t, c.Contains(testtypes.TypeRepo))
	})

	t.Run("with invalid binding kind", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(1234),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "di.NewContainer: with binding int: invalid binding type")
	})

	t.Run("with nil value", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(nil),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "di.NewContainer: with binding: funcOrValue is nil")
	})

	t.Run("option as funcOrValue", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(di.Singleton, di.WithQualifier("q")),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "di.NewContainer: with binding di.Lifetime: unexpected BindingOption as funcOrValue")
	})

	t.Run("variadic constructor", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(func(repos ...testtypes.Repo) *testtypes.JobWorker { return nil }),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "variadic constructor functions are not supported")
	})

	t.Run("unsupported constructor signature", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(func() (testtypes.Repo, testtypes.Cache) { return nil, nil }),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "constructor must return Instance or (Instance, error)")
	})

	t.Run("register error type", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(func() error { return nil }),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "invalid binding type")
	})

	t.Run("register context.Context", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(context.Background),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "invalid binding type")
	})

	t.Run("duplicate binding", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
			di.WithBinding(testtypes.NewRepo),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, di.ErrDuplicateBinding)
		assert.EqualError(t, err, "di.NewContainer: testtypes.Repo: duplicate binding")
	})

	t.Run("duplicate binding different qualifiers", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo, di.WithQualifier("primary")),
			di.WithBinding(testtypes.NewRepo, di.WithQualifier("replica")),
		)
		assert.NotNil(t, c)
		assert.NoError(t, err)
	})
}

func Test_Container_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("value binding", func(t *testing.T) {
		want := &testtypes.SQLRepo{}
		c, err := di.NewContainer(
			di.WithBinding(want),
		)
		require.NoError(t, err)

		got, err := di.Resolve[*testtypes.SQLRepo](ctx, c)
		assert.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("func binding", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, c)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("transitive dependencies", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
			di.WithBinding(testtypes.NewJobWorker),
		)
		require.NoError(t, err)

		worker, err := di.Resolve[*testtypes.JobWorker](ctx, c)
		assert.NoError(t, err)
		require.NotNil(t, worker)
		assert.NotNil(t, worker.Repo)
	})

	t.Run("not registered", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, c)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, di.ErrNotRegistered)
		assert.EqualError(t, err, "di.Container.Resolve testtypes.Repo: binding not registered")
	})

	t.Run("dependency not registered", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewJobWorker),
		)
		require.NoError(t, err)

		got, err := di.Resolve[*testtypes.JobWorker](ctx, c)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, di.ErrNotRegistered)
		assert.ErrorContains(t, err, "dependency testtypes.Repo")
	})

	t.Run("constructor error", func(t *testing.T) {
		wantErr := stderrors.New("connect failed")
		c, err := di.NewContainer(
			di.WithBinding(func() (testtypes.Repo, error) { return nil, wantErr }),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, c)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("constructor error is not cached", func(t *testing.T) {
		var calls atomic.Int32
		c, err := di.NewContainer(
			di.WithBinding(func() (testtypes.Repo, error) {
				if calls.Add(1) == 1 {
					return nil, stderrors.New("transient failure")
				}
				return &testtypes.SQLRepo{}, nil
			}),
		)
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.Repo](ctx, c)
		assert.Error(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, c)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("context canceled", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = di.Resolve[testtypes.Repo](canceled, c)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("context dependency", func(t *testing.T) {
		want := "value"
		c, err := di.NewContainer(
			di.WithBinding(func(ctx context.Context) *testtypes.SQLRepo {
				assert.Equal(t, want, testutils.TestValueFromContext(ctx))
				return &testtypes.SQLRepo{}
			}),
		)
		require.NoError(t, err)

		valCtx := testutils.ContextWithTestValue(ctx, want)
		got, err := di.Resolve[*testtypes.SQLRepo](valCtx, c)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("cycle", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(func(testtypes.Cache) testtypes.Repo { return &testtypes.SQLRepo{} }),
			di.WithBinding(func(testtypes.Repo) testtypes.Cache { return &testtypes.MemCache{} }),
		)
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.Repo](ctx, c)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrDependencyCycle)
	})

	t.Run("self dependency", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(func(testtypes.Repo) testtypes.Repo { return &testtypes.SQLRepo{} }),
		)
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.Repo](ctx, c)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrDependencyCycle)
	})
}

func Test_Container_Resolve_Concurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("singleton constructed once", func(t *testing.T) {
		var constructions atomic.Int32
		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.Repo {
				constructions.Add(1)
				return &testtypes.SQLRepo{}
			}),
		)
		require.NoError(t, err)

		const n = 20
		results := make([]testtypes.Repo, n)
		testutils.RunParallel(n, func(i int) {
			results[i] = di.MustResolve[testtypes.Repo](ctx, c)
		})

		assert.EqualValues(t, 1, constructions.Load())
		for i := 1; i < n; i++ {
			assert.Same(t, results[0], results[i])
		}
	})

	t.Run("transient constructed per caller", func(t *testing.T) {
		var constructions atomic.Int32
		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.Repo {
				constructions.Add(1)
				return &testtypes.SQLRepo{}
			}, di.Transient),
		)
		require.NoError(t, err)

		const n = 10
		testutils.RunParallel(n, func(int) {
			_ = di.MustResolve[testtypes.Repo](ctx, c)
		})

		assert.EqualValues(t, n, constructions.Load())
	})
}

func Test_Container_NewScope(t *testing.T) {
	ctx := context.Background()

	t.Run("inherits parent bindings", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		scope, err := c.NewScope()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, scope)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("resolves after parent gains binding", func(t *testing.T) {
		// The same key fails without a parent and succeeds with one.
		orphan, err := di.NewContainer()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.Repo](ctx, orphan)
		assert.ErrorIs(t, err, di.ErrNotRegistered)

		parent, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		child, err := parent.NewScope()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Repo](ctx, child)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("child shadows parent binding", func(t *testing.T) {
		parentRepo := &testtypes.SQLRepo{}
		childRepo := &testtypes.SQLRepo{}

		parent, err := di.NewContainer(
			di.WithBinding(parentRepo),
		)
		require.NoError(t, err)

		child, err := parent.NewScope(
			di.WithBinding(childRepo),
		)
		require.NoError(t, err)

		gotParent := di.MustResolve[*testtypes.SQLRepo](ctx, parent)
		gotChild := di.MustResolve[*testtypes.SQLRepo](ctx, child)

		assert.Same(t, parentRepo, gotParent)
		assert.Same(t, childRepo, gotChild)
	})

	t.Run("duplicate binding within scope", func(t *testing.T) {
		parent, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		scope, err := parent.NewScope(
			di.WithBinding(testtypes.NewRepo),
			di.WithBinding(testtypes.NewRepo),
		)
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.ErrorIs(t, err, di.ErrDuplicateBinding)
	})

	t.Run("new scope after close", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)
		require.NoError(t, c.Close(ctx))

		scope, err := c.NewScope()
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})
}

func Test_Container_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("resolve after close", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)
		require.NoError(t, c.Close(ctx))

		_, err = di.Resolve[testtypes.Repo](ctx, c)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})

	t.Run("close twice", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		require.NoError(t, c.Close(ctx))

		err = c.Close(ctx)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})

	t.Run("instances resolved before close remain valid", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewSQLRepo),
		)
		require.NoError(t, err)

		repo := di.MustResolve[*testtypes.SQLRepo](ctx, c)
		require.NoError(t, c.Close(ctx))

		assert.True(t, repo.Closed)
		assert.Equal(t, "", repo.Find("id"))
	})

	t.Run("concurrent close and resolve", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewRepo),
		)
		require.NoError(t, err)

		testutils.RunParallel(10, func(i int) {
			if i == 0 {
				_ = c.Close(ctx)
				return
			}

			_, err := di.Resolve[testtypes.Repo](ctx, c)
			if err != nil {
				assert.ErrorIs(t, err, di.ErrContainerClosed)
			}
		})
	})
}
