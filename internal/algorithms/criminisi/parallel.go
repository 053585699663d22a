package criminisi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachChunk splits [0, n) into chunks of at most size items and runs fn on
// them with up to workers goroutines. fn receives the chunk index so callers
// can write per-chunk results without sharing state.
func forEachChunk(ctx context.Context, n, size, workers int, fn func(chunk, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	size = max(size, 1)
	chunks := (n + size - 1) / size

	if chunks == 1 || workers <= 1 {
		for c := 0; c < chunks; c++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(c, c*size, min(n, (c+1)*size)); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := 0; c < chunks; c++ {
		start, end := c*size, min(n, (c+1)*size)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(c, start, end)
		})
	}
	return g.Wait()
}

// chunkSize spreads n items over roughly two chunks per worker, never below floor.
func chunkSize(n, workers, floor int) int {
	per := (n + 2*workers - 1) / max(2*workers, 1)
	return max(per, floor)
}
