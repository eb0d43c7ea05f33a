package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.MaxWorkers != 10 {
		t.Errorf("Expected MaxWorkers to be 10, got %d", opts.MaxWorkers)
	}
}

func TestWorkers(t *testing.T) {
	testCases := []struct {
		max, n, expected int
	}{
		{10, 3, 3},
		{2, 5, 2},
		{0, 50, 10},
		{-1, 4, 4},
	}
	for _, tc := range testCases {
		if got := (ParallelOptions{MaxWorkers: tc.max}).workers(tc.n); got != tc.expected {
			t.Errorf("workers(max=%d, n=%d) = %d, want %d", tc.max, tc.n, got, tc.expected)
		}
	}
}

func TestProcessParallel(t *testing.T) {
	ctx := context.Background()

	results, errs := ProcessParallel(ctx, []int{}, DefaultOptions(), func(ctx context.Context, index int, item int) (string, error) {
		return "", nil
	})
	if len(results) != 0 {
		t.Errorf("Expected empty results for empty input, got %d items", len(results))
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty input, got %v", errs)
	}

	input := []int{1, 2, 3, 4, 5}
	results, errs = ProcessParallel(ctx, input, ParallelOptions{MaxWorkers: 2}, func(ctx context.Context, index int, item int) (string, error) {
		if item%2 == 0 {
			return "", errors.New("even number error")
		}
		return string(rune('a' + item - 1)), nil
	})
	if len(results) != len(input) {
		t.Errorf("Expected %d results, got %d", len(input), len(results))
	}
	if len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs))
	}
	if results[0] != "a" || results[4] != "e" {
		t.Errorf("Unexpected results %v", results)
	}
}

func TestProcessParallelOrder(t *testing.T) {
	input := []int{5, 3, 1, 4, 2}

	results, errs := ProcessParallel(context.Background(), input, DefaultOptions(), func(ctx context.Context, index int, item int) (int, error) {
		time.Sleep(time.Duration(item) * 5 * time.Millisecond)
		return item, nil
	})

	if len(errs) != 0 {
		t.Errorf("Expected no errors, got %d", len(errs))
	}
	for i, res := range results {
		if res != input[i] {
			t.Errorf("Expected result at index %d to be %d, got %d", i, input[i], res)
		}
	}
}

func TestProcessParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	done := make(chan struct{})
	var results []int
	go func() {
		defer close(done)
		results, _ = ProcessParallel(ctx, []int{1, 2, 3}, DefaultOptions(), func(ctx context.Context, index int, item int) (int, error) {
			calls.Add(1)
			return item, nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessParallel did not return after cancellation")
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no work after cancellation, got %d calls", calls.Load())
	}
	if len(results) != 3 {
		t.Errorf("Expected zero-valued results for every item, got %d", len(results))
	}
}

func TestForEach(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}
	var sum atomic.Int64
	errs := ForEach(context.Background(), input, DefaultOptions(), func(ctx context.Context, index int, item int) error {
		sum.Add(int64(item))
		if item == 3 {
			return errors.New("three")
		}
		return nil
	})
	if len(errs) != 1 {
		t.Errorf("Expected 1 error, got %d", len(errs))
	}
	if sum.Load() != 15 {
		t.Errorf("Expected every item to run, sum=%d", sum.Load())
	}

	if errs := ForEach(context.Background(), []int{}, DefaultOptions(), func(ctx context.Context, index int, item int) error {
		return nil
	}); errs != nil {
		t.Errorf("Expected nil errors for empty input, got %v", errs)
	}
}
