// Package scheduler runs independent jobs under a global concurrency bound.
//
// Jobs never cancel each other: a failing or panicking job is recorded in its
// own Result and its siblings keep running. Results are returned in input
// order regardless of completion order.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one job.
type Result[R any] struct {
	Index   int
	Value   R
	Err     error
	Elapsed time.Duration
}

// PanicError is returned for a job that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

// Run executes fn for every item with at most limit jobs in flight and waits
// for all of them. Items not yet started when ctx is cancelled are reported
// with ctx.Err() without calling fn.
func Run[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	if limit < 1 {
		limit = 1
	}
	results := make([]Result[R], len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			value, err := call(ctx, item, fn)
			results[i].Value = value
			results[i].Err = err
			results[i].Elapsed = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func call[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx, item)
}
