package md2book

import (
	"context"
	"runtime"
	"sync"

	"github.com/alnah/go-md2book/internal/pipeline"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one transform runs.
	MinWorkers = 1

	// MaxWorkers caps the fan-out; a book has a few dozen files at most.
	MaxWorkers = 16
)

// ResolveWorkers determines the transform fan-out.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in the CLI).
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// transformAll runs t over files on at most workers goroutines. Results keep
// the input order. The first error cancels the remaining work and is
// returned once every worker has stopped.
func transformAll(ctx context.Context, t pipeline.Transformer, files []pipeline.SourceFile, workers int) ([]pipeline.Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if workers > len(files) {
		workers = len(files)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]pipeline.Result, len(files))
	jobs := make(chan int, len(files))

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				r, err := t.Transform(ctx, files[idx])
				if err != nil {
					fail(err)
					continue
				}
				results[idx] = r
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	// Parent cancellation with no transform error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
