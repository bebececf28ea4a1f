package corrupt

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/roach88/facet/internal/dataset"
)

// PoolOptions controls the parallel map over records.
type PoolOptions struct {
	// Workers is the number of concurrent workers. Defaults to runtime.NumCPU().
	Workers int
	// BatchSize is the number of records a worker takes per dispatch. Defaults to 1.
	BatchSize int
}

// Summary describes a completed (or interrupted) run.
type Summary struct {
	Images   int     `json:"images"`
	Variants int     `json:"variants"`
	Failed   int     `json:"failed"`
	Errors   []error `json:"-"`
}

// Run processes every record with a pool of workers and waits for all of
// them to finish. Each worker pulls whole batches of records and performs
// every variant write for each record it receives.
//
// A failing record is logged and counted; it never stops other records.
// Cancelling ctx stops dispatching new batches; records already running see
// the cancelled context. The returned error joins every record failure and
// the context error, if any.
func Run(ctx context.Context, g *Grid, records []dataset.ImageRecord, opts PoolOptions) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	batches := make(chan []dataset.ImageRecord)

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				for _, rec := range batch {
					n, err := g.ProcessRecord(ctx, rec)

					mu.Lock()
					summary.Variants += n
					if err != nil {
						summary.Failed++
						summary.Errors = append(summary.Errors, err)
					} else {
						summary.Images++
					}
					mu.Unlock()

					if err != nil {
						g.logger.Error("failed to corrupt record", "path", rec.SourcePath, "error", err)
					}
				}
			}
		}()
	}

	var ctxErr error
dispatch:
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		select {
		case batches <- records[start:end]:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		}
	}
	close(batches)
	wg.Wait()

	g.logger.Info("corruption finished",
		"images", summary.Images,
		"variants", summary.Variants,
		"failed", summary.Failed)

	errs := append([]error(nil), summary.Errors...)
	if ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return summary, errors.Join(errs...)
}
