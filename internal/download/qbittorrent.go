package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	qbt "github.com/autobrr/go-qbittorrent"
)

// QBittorrentClient interacts with a qBittorrent instance through its
// WebUI API. Torrents are identified by infohash.
type QBittorrentClient struct {
	client *qbt.Client
	log    *slog.Logger
}

// NewQBittorrentClient creates a new qBittorrent client.
func NewQBittorrentClient(host, username, password string, log *slog.Logger) *QBittorrentClient {
	if log == nil {
		log = slog.Default()
	}
	return &QBittorrentClient{
		client: qbt.NewClient(qbt.Config{
			Host:     host,
			Username: username,
			Password: password,
			Timeout:  30,
		}),
		log: log.With("component", "qbittorrent"),
	}
}

// Add sends a torrent URL or magnet link to qBittorrent and returns the
// infohash as the client id.
func (c *QBittorrentClient) Add(ctx context.Context, torrentURL, category string) (string, error) {
	c.log.Debug("adding torrent", "category", category)

	opts := map[string]string{"category": category}
	if err := c.client.AddTorrentFromUrlCtx(ctx, torrentURL, opts); err != nil {
		return "", fmt.Errorf("qbittorrent add failed: %w", err)
	}

	if hash := hashFromMagnet(torrentURL); hash != "" {
		return hash, nil
	}

	// A plain .torrent URL carries no hash; the newest torrent in our
	// category is the one just added.
	torrents, err := c.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{
		Category: category,
		Sort:     "added_on",
		Reverse:  true,
	})
	if err != nil {
		return "", fmt.Errorf("qbittorrent list after add: %w", err)
	}
	if len(torrents) == 0 {
		return "", fmt.Errorf("qbittorrent did not report the added torrent")
	}
	return torrents[0].Hash, nil
}

// Status gets the status of a torrent.
func (c *QBittorrentClient) Status(ctx context.Context, clientID string) (*ClientStatus, error) {
	t, err := c.torrent(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientStatus{
		ID:       t.Hash,
		Name:     t.Name,
		Status:   mapTorrentState(t.State, t.Progress),
		Progress: t.Progress * 100,
		Size:     t.Size,
		Path:     t.ContentPath,
	}, nil
}

// Item returns the client's view of a completed torrent. Seeding
// torrents keep their files in place, so imports copy rather than move.
func (c *QBittorrentClient) Item(ctx context.Context, clientID string) (*ClientItem, error) {
	t, err := c.torrent(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientItem{
		DownloadID:   t.Hash,
		Title:        t.Name,
		OutputPath:   t.ContentPath,
		CanMoveFiles: false,
		Removable:    false,
	}, nil
}

// Remove deletes a torrent.
func (c *QBittorrentClient) Remove(ctx context.Context, clientID string, deleteFiles bool) error {
	c.log.Debug("removing torrent", "client_id", clientID, "delete_files", deleteFiles)
	if err := c.client.DeleteTorrentsCtx(ctx, []string{clientID}, deleteFiles); err != nil {
		return fmt.Errorf("qbittorrent remove failed: %w", err)
	}
	return nil
}

func (c *QBittorrentClient) torrent(ctx context.Context, hash string) (*qbt.Torrent, error) {
	torrents, err := c.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{
		Hashes: []string{hash},
	})
	if err != nil {
		return nil, ErrClientUnavailable
	}
	if len(torrents) == 0 {
		return nil, ErrNotFound
	}
	return &torrents[0], nil
}

// mapTorrentState maps a qBittorrent torrent state to our Status type.
func mapTorrentState(state qbt.TorrentState, progress float64) Status {
	switch state {
	case qbt.TorrentStateError, qbt.TorrentStateMissingFiles:
		return StatusFailed
	case qbt.TorrentStateUploading, qbt.TorrentStateStalledUp, qbt.TorrentStatePausedUp,
		qbt.TorrentStateQueuedUp, qbt.TorrentStateForcedUp, qbt.TorrentStateCheckingUp:
		return StatusCompleted
	case qbt.TorrentStateQueuedDl, qbt.TorrentStatePausedDl:
		return StatusQueued
	default:
		if progress >= 1 {
			return StatusCompleted
		}
		return StatusDownloading
	}
}

// hashFromMagnet extracts the infohash from a magnet link, or "" when
// the URL is not a magnet.
func hashFromMagnet(link string) string {
	if !strings.HasPrefix(link, "magnet:") {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	for _, xt := range u.Query()["xt"] {
		if strings.HasPrefix(xt, "urn:btih:") {
			return strings.ToLower(strings.TrimPrefix(xt, "urn:btih:"))
		}
	}
	return ""
}
