package pipeline

import (
	"runtime"
	"sync"
)

// Result pairs an item's position with the error its handler returned.
type Result struct {
	Index int
	Err   error
}

// Process runs fn over items with at most workers goroutines and returns
// the failures in item order.
func Process[T any](items []T, workers int, fn func(i int, item T) error) []Result {
	if len(items) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	errs := make([]error, len(items))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = fn(i, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []Result
	for i, err := range errs {
		if err != nil {
			out = append(out, Result{Index: i, Err: err})
		}
	}
	return out
}
