package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/events"
	"github.com/vmunix/resonarr/internal/importer"
	"github.com/vmunix/resonarr/pkg/release"
)

// Gateway sends approved releases to the download client and records the
// grab. Releases are looked up in the cache by indexer id and GUID, so a
// grab request for a release the cache has expired fails with
// ErrReleaseNotFound and the caller must search again.
type Gateway struct {
	cache      *ReleaseCache
	client     download.Downloader
	clientKind download.Client
	category   string
	downloads  *download.Store
	history    *importer.HistoryStore
	maker      *Maker
	fetcher    *Fetcher
	bus        *events.Bus
	log        *slog.Logger
}

// GatewayConfig wires a grab gateway.
type GatewayConfig struct {
	Cache      *ReleaseCache
	Client     download.Downloader
	ClientKind download.Client
	Category   string // download client category, defaults to "music"
	Downloads  *download.Store
	History    *importer.HistoryStore
	Maker      *Maker
	Fetcher    *Fetcher
	Bus        *events.Bus
	Log        *slog.Logger
}

// NewGateway creates a grab gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	category := cfg.Category
	if category == "" {
		category = "music"
	}
	return &Gateway{
		cache:      cfg.Cache,
		client:     cfg.Client,
		clientKind: cfg.ClientKind,
		category:   category,
		downloads:  cfg.Downloads,
		history:    cfg.History,
		maker:      cfg.Maker,
		fetcher:    cfg.Fetcher,
		bus:        cfg.Bus,
		log:        log,
	}
}

// Grab sends a cached release to the download client. The release must
// still be present in the cache; an expired entry means the indexer data
// is stale and the caller should run the search again.
func (g *Gateway) Grab(ctx context.Context, indexerID int64, guid string) (*download.Download, error) {
	remote, ok := g.cache.Get(indexerID, guid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReleaseNotFound, guid)
	}
	return g.grab(ctx, remote)
}

// GrabDecision sends an approved decision to the download client and
// caches the release so a retry can find it.
func (g *Gateway) GrabDecision(ctx context.Context, dec *DownloadDecision) (*download.Download, error) {
	if !dec.Approved() {
		return nil, fmt.Errorf("%w: release was rejected", ErrGrabFailed)
	}
	g.cache.Set(dec.Remote)
	return g.grab(ctx, dec.Remote)
}

func (g *Gateway) grab(ctx context.Context, remote *RemoteAlbum) (*download.Download, error) {
	if remote.Artist == nil {
		return nil, fmt.Errorf("%w: release did not resolve to a tracked artist", ErrGrabFailed)
	}

	clientID, err := g.client.Add(ctx, remote.Release.DownloadURL, g.category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGrabFailed, err)
	}

	var albumID *int64
	if remote.Album != nil {
		albumID = &remote.Album.ID
	}
	d := &download.Download{
		ArtistID:    remote.Artist.ID,
		AlbumID:     albumID,
		Client:      g.clientKind,
		ClientID:    clientID,
		Status:      download.StatusQueued,
		ReleaseName: remote.Release.Title,
		Indexer:     remote.Release.Indexer,
	}
	if err := g.downloads.Add(d); err != nil {
		return nil, fmt.Errorf("record download: %w", err)
	}

	if err := g.history.Add(&importer.HistoryEntry{
		ArtistID:   remote.Artist.ID,
		AlbumID:    albumID,
		Event:      importer.EventGrabbed,
		DownloadID: clientID,
		Data:       fmt.Sprintf(`{"indexer":%q,"guid":%q}`, remote.Release.Indexer, remote.Release.GUID),
	}); err != nil {
		g.log.Error("failed to record grab history", "release", remote.Release.Title, "error", err)
	}

	if g.bus != nil {
		_ = g.bus.Publish(ctx, events.NewDownloadGrabbed(
			d.ID, remote.Artist.ID, albumID,
			remote.Release.Title, remote.Release.Indexer, remote.Release.GUID,
		))
	}

	g.log.Info("grabbed release",
		"release", remote.Release.Title,
		"indexer", remote.Release.Indexer,
		"client_id", clientID)
	return d, nil
}

// Push accepts a release announced by an external source, runs it through
// the decision chain, and grabs it when approved. The payload is validated
// field by field before any decision work happens.
func (g *Gateway) Push(ctx context.Context, payload release.Info) (*DownloadDecision, error) {
	if err := validatePush(payload); err != nil {
		return nil, err
	}

	// Pushed releases often arrive without a GUID; synthesize a stable
	// one from the download URL so dedup and history keep working.
	if payload.GUID == "" {
		payload.GUID = "PUSH-" + payload.DownloadURL
	}
	if payload.Indexer != "" && payload.IndexerID == 0 && g.fetcher != nil {
		if a := g.fetcher.ByName(payload.Indexer); a != nil {
			payload.IndexerID = a.ID()
		}
	}

	dec := g.maker.GetRssDecision(ctx, []release.Info{payload})[0]
	if !dec.Approved() {
		g.log.Info("pushed release rejected",
			"release", payload.Title,
			"reasons", len(dec.Rejections))
		return dec, nil
	}

	if _, err := g.GrabDecision(ctx, dec); err != nil {
		return dec, err
	}
	return dec, nil
}

func validatePush(payload release.Info) error {
	var errs []error
	if payload.Title == "" {
		errs = append(errs, &ValidationError{Field: "Title", Message: "must be provided"})
	}
	if payload.DownloadURL == "" {
		errs = append(errs, &ValidationError{Field: "DownloadUrl", Message: "must be provided"})
	}
	if payload.Protocol == release.ProtocolUnknown {
		errs = append(errs, &ValidationError{Field: "Protocol", Message: "must be usenet or torrent"})
	}
	if payload.PublishDate.IsZero() {
		errs = append(errs, &ValidationError{Field: "PublishDate", Message: "must be provided"})
	}
	return errors.Join(errs...)
}
