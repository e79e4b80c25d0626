// Package testutils provides helpers shared by container tests.
package testutils

import (
	"context"
	"sync"
	"testing"
)

// LogError logs an error message if it is not nil.
//
// This helps make sure error messages stay readable and informative.
func LogError(t *testing.T, err error) {
	if err == nil {
		return
	}

	t.Helper()
	t.Logf("error message:\n%v", err)
}

type ctxKey struct{}

// ContextWithTestValue returns a context carrying the provided value, used
// to verify that a context passes through resolution unchanged.
func ContextWithTestValue(ctx context.Context, val any) context.Context {
	return context.WithValue(ctx, ctxKey{}, val)
}

// TestValueFromContext returns the value stored by [ContextWithTestValue].
func TestValueFromContext(ctx context.Context) any {
	return ctx.Value(ctxKey{})
}

// RunParallel runs f from the given number of goroutines and waits for all
// of them to finish.
func RunParallel(concurrency int, f func(int)) {
	wg := sync.WaitGroup{}
	wg.Add(concurrency)

	for i := range concurrency {
		go func() {
			defer wg.Done()
			f(i)
		}()
	}

	wg.Wait()
}
