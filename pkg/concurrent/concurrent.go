package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for each element in a separate goroutine, at most limit at a time.
// A limit below 1 means no limit. The context passed to action is cancelled as soon as
// one action fails; ForEach waits for every started goroutine and returns the first error.
func ForEach[T any](ctx context.Context, in []T, limit int, action func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, value := range in {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(ctx, value)
		})
	}

	return g.Wait()
}

// Map applies mapFn to each element in parallel, preserving order.
// The limit parameter caps the number of goroutines as in ForEach.
func Map[T any, R any](ctx context.Context, in []T, limit int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for idx, value := range in {
		g.Go(func() error {
			r, err := mapFn(ctx, value)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
