// Package parallel runs independent reads concurrently and joins their results.
package parallel

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is a deferred read against a store.
type Task func(ctx context.Context) (any, error)

// Tasks maps a logical name to the read producing it.
type Tasks map[string]Task

// Results maps every task name to its value.
type Results map[string]any

// Run executes all tasks concurrently and waits for them. The first failure
// cancels the context seen by the remaining tasks and is returned on its own;
// no partial results are ever returned alongside an error.
func Run(ctx context.Context, tasks Tasks) (Results, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(Results, len(tasks))

	for name, task := range tasks {
		name, task := name, task
		g.Go(func() error {
			v, err := task(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Value returns the result stored under name as a T. It panics if the task
// was never registered or produced another type.
func Value[T any](r Results, name string) T {
	raw, ok := r[name]
	if !ok {
		panic(fmt.Sprintf("parallel: no result named %q", name))
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("parallel: result %q is %T", name, raw))
	}
	return v
}
