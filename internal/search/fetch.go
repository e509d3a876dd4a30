package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/resonarr/internal/indexer"
	"github.com/vmunix/resonarr/pkg/release"
)

// Fetcher fans a query out to every configured indexer in parallel and
// merges the results. A failing indexer is logged and skipped; the fetch
// fails only when no indexer returned anything usable.
type Fetcher struct {
	adapters []indexer.Adapter
	log      *slog.Logger
}

// NewFetcher creates a fetcher over the configured adapters.
func NewFetcher(adapters []indexer.Adapter, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{adapters: adapters, log: log}
}

// Adapters returns the configured adapters.
func (f *Fetcher) Adapters() []indexer.Adapter {
	return f.adapters
}

// ByName returns the adapter with the given name, or nil.
func (f *Fetcher) ByName(name string) indexer.Adapter {
	for _, a := range f.adapters {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// Search queries all indexers.
func (f *Fetcher) Search(ctx context.Context, query string) ([]release.Info, error) {
	return f.fanOut(ctx, func(ctx context.Context, a indexer.Adapter) ([]release.Info, error) {
		return a.Search(ctx, query)
	})
}

// Fetch pulls every indexer's RSS feed.
func (f *Fetcher) Fetch(ctx context.Context) ([]release.Info, error) {
	return f.fanOut(ctx, func(ctx context.Context, a indexer.Adapter) ([]release.Info, error) {
		return a.Fetch(ctx)
	})
}

func (f *Fetcher) fanOut(ctx context.Context, query func(context.Context, indexer.Adapter) ([]release.Info, error)) ([]release.Info, error) {
	if len(f.adapters) == 0 {
		return nil, ErrNoIndexers
	}

	var mu sync.Mutex
	var merged []release.Info
	failures := 0

	g, ctx := errgroup.WithContext(ctx)
	for _, adapter := range f.adapters {
		adapter := adapter
		g.Go(func() error {
			found, err := query(ctx, adapter)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.log.Warn("indexer query failed", "indexer", adapter.Name(), "error", err)
				failures++
				return nil
			}
			merged = append(merged, found...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if failures == len(f.adapters) {
		return nil, fmt.Errorf("%w: all %d queries failed", ErrNoIndexers, failures)
	}
	return merged, nil
}
