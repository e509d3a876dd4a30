package indexer

import (
	"context"
	"log/slog"

	"github.com/vmunix/resonarr/pkg/newznab"
	"github.com/vmunix/resonarr/pkg/release"
)

// NewznabAdapter serves releases from a Newznab or Torznab indexer.
type NewznabAdapter struct {
	id         int64
	priority   int
	protocol   release.Protocol
	categories []int
	client     *newznab.Client
}

// NewNewznabAdapter creates an adapter for one configured indexer.
// protocol is usenet for Newznab and torrent for Torznab endpoints;
// categories defaults to all audio when empty.
func NewNewznabAdapter(id int64, name, baseURL, apiKey string, protocol release.Protocol, priority int, categories []int, log *slog.Logger) *NewznabAdapter {
	if len(categories) == 0 {
		categories = []int{newznab.CategoryAudio}
	}
	return &NewznabAdapter{
		id:         id,
		priority:   priority,
		protocol:   protocol,
		categories: categories,
		client:     newznab.NewClient(name, baseURL, apiKey, log),
	}
}

func (a *NewznabAdapter) ID() int64                  { return a.id }
func (a *NewznabAdapter) Name() string               { return a.client.Name() }
func (a *NewznabAdapter) Protocol() release.Protocol { return a.protocol }
func (a *NewznabAdapter) Priority() int              { return a.priority }

// Fetch pulls the indexer's RSS feed.
func (a *NewznabAdapter) Fetch(ctx context.Context) ([]release.Info, error) {
	found, err := a.client.RSS(ctx, a.categories)
	if err != nil {
		return nil, err
	}
	return a.convert(found), nil
}

// Search queries the indexer.
func (a *NewznabAdapter) Search(ctx context.Context, query string) ([]release.Info, error) {
	found, err := a.client.Search(ctx, query, a.categories)
	if err != nil {
		return nil, err
	}
	return a.convert(found), nil
}

func (a *NewznabAdapter) convert(found []newznab.Release) []release.Info {
	infos := make([]release.Info, 0, len(found))
	for _, r := range found {
		protocol := a.protocol
		if r.IsTorrent() {
			protocol = release.ProtocolTorrent
		}
		leechers := r.Peers - r.Seeders
		if leechers < 0 {
			leechers = 0
		}
		infos = append(infos, release.Info{
			GUID:        r.GUID,
			Title:       r.Title,
			Size:        r.Size,
			PublishDate: r.PublishDate,
			IndexerID:   a.id,
			Indexer:     r.Indexer,
			Protocol:    protocol,
			DownloadURL: r.DownloadURL,
			Seeders:     r.Seeders,
			Leechers:    leechers,
			InfoHash:    r.InfoHash,
		})
	}
	return infos
}
