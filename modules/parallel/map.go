package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map runs fn for every index in [0,n) on at most workers goroutines and
// returns the results in index order. Context is checked before each item.
// On the first error or cancellation the partial results are thrown away and
// only the error is returned.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]T, n)

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < n; i++ {
		if egctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			result, err := fn(egctx, i)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// the loop may have stopped early on a cancelled parent without any goroutine noticing
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Chunks splits [0,n) into at most parts contiguous ranges of similar size
func Chunks(n, parts int) [][2]int {
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	var result [][2]int
	start := 0
	for i := 0; i < parts; i++ {
		end := start + (n-start)/(parts-i)
		result = append(result, [2]int{start, end})
		start = end
	}
	return result
}
