// Package parallel runs chunked index ranges on a bounded errgroup.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps per-goroutine work above scheduling overhead.
const minChunk = 64

// Workers resolves a worker count, treating values <= 0 as GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Range splits [0, n) into contiguous chunks and calls fn for each on at most
// workers goroutines. fn must only write to slots inside its own chunk.
//
// The context is checked before every chunk; the first error (or the
// context's error) is returned after all started chunks finish.
func Range(ctx context.Context, n, workers int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	workers = Workers(workers)

	chunk := (n + workers*4 - 1) / (workers * 4)
	if chunk < minChunk {
		chunk = minChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
