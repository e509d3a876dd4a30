// Package indexer adapts indexer protocols to the canonical release shape.
package indexer

import (
	"context"

	"github.com/vmunix/resonarr/pkg/release"
)

// Adapter is one configured indexer. Every adapter, whatever protocol it
// speaks, emits the canonical release.Info shape.
type Adapter interface {
	// ID is the indexer's configured identity, used in release cache keys.
	ID() int64
	// Name is the display name.
	Name() string
	// Protocol is the download protocol the indexer serves.
	Protocol() release.Protocol
	// Priority orders indexers when candidates tie; lower wins.
	Priority() int
	// Fetch returns the latest releases (RSS pull).
	Fetch(ctx context.Context) ([]release.Info, error)
	// Search queries the indexer with a free-text query.
	Search(ctx context.Context, query string) ([]release.Info, error)
}
