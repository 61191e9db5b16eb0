// Package parallel provides the bounded worker pools used for corpus counting
// and batch encoding.
package parallel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on concurrently running workers.
	MinChunkSize int  // Minimum items per goroutine in For.
}

// DefaultConfig returns the pool used for training: eight workers, independent
// of the CPU count.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		NumWorkers:   8,
		MinChunkSize: 16,
	}
}

func (c Config) workers() int {
	if !c.Enabled || c.NumWorkers < 1 {
		return 1
	}
	return c.NumWorkers
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.workers()
	if workers == 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Map runs f for every i in [0, n) on at most cfg.NumWorkers goroutines and
// returns the results in input order.
//
// The first error cancels the context passed to the remaining calls and is
// returned; no partial results are returned with it.
func Map[T any](ctx context.Context, n int, cfg Config, f func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := f(ctx, i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
