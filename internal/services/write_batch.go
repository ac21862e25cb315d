package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// write is one named store write of a batch.
type write struct {
	table string
	run   func(ctx context.Context) error
}

// runWrites issues every write concurrently and waits for all of them. A
// failure does not cancel the others; all failures are returned together
// as a *WriteError.
func runWrites(ctx context.Context, writes []write) ([]string, error) {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		written []string
		errs    []error
	)
	for _, w := range writes {
		w := w
		g.Go(func() error {
			err := w.run(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			} else {
				written = append(written, w.table)
			}
			return nil
		})
	}
	_ = g.Wait()
	if len(errs) > 0 {
		return written, &WriteError{Written: written, Errs: errs}
	}
	return written, nil
}
