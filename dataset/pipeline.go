package dataset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Preprocess materializes every record of a dataset, fanning the
// per-example work (encoding, tiling) across workers. Output order
// matches dataset order; the first failure cancels the rest. Collation
// is left to the caller since the collator needs the whole list at once.
func Preprocess(ctx context.Context, ds Dataset, workers int) ([]Record, error) {
	if workers < 1 {
		workers = 1
	}

	records := make([]Record, ds.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < len(records); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := ds.Get(i)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}

			records[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}
