package otf_api

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// bulkWorkers matches the upstream client's thread pool bound.
const bulkWorkers = 10

// fetchAll runs fetch for every id with bounded parallelism and collects the
// results into a map. Retry and error mapping live inside fetch (it is a
// normal single-item client call), so this stays a dumb fan-out. The first
// error cancels the remaining fetches and fails the batch; partial results
// are discarded.
func fetchAll[K comparable, V any](ctx context.Context, ids []K, fetch func(context.Context, K) (V, error)) (map[K]V, error) {
	results := make(map[K]V, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWorkers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			v, err := fetch(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
