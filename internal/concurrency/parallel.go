package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures the worker pool.
type ParallelOptions struct {
	// MaxWorkers caps the number of goroutines; <=0 means the default.
	MaxWorkers int
}

// DefaultOptions devuelve opciones predeterminadas para procesamiento paralelo
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 10,
	}
}

func (o ParallelOptions) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = DefaultOptions().MaxWorkers
	}
	if w > n {
		w = n
	}
	return w
}

type indexed[R any] struct {
	index  int
	result R
	err    error
}

// ProcessParallel runs itemFunc for every item on a bounded pool and returns
// results in input order. Items not started before ctx is done keep the zero
// value of R and are not reported as errors.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	results := make(chan indexed[R], len(items))

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				r, err := itemFunc(ctx, i, items[i])
				results <- indexed[R]{index: i, result: r, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, len(items))
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
		}
		out[res.index] = res.result
	}
	return out, errs
}

// ForEach ejecuta una función para cada elemento en paralelo, sin recolectar resultados
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, index int, item T) (struct{}, error) {
		return struct{}{}, itemFunc(ctx, index, item)
	})
	return errs
}
