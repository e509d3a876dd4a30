// Package download manages download clients and tracks grabbed releases
// through to import.
package download

import (
	"context"
	"time"
)

// Client identifies a download client implementation.
type Client string

const (
	ClientSABnzbd     Client = "sabnzbd"
	ClientQBittorrent Client = "qbittorrent"
	ClientManual      Client = "manual"
)

// Status tracks a download's state from grab through import.
type Status string

const (
	StatusQueued            Status = "queued"
	StatusDownloading       Status = "downloading"
	StatusCompleted         Status = "completed"
	StatusDecided           Status = "decided"
	StatusImported          Status = "imported"
	StatusPartiallyImported Status = "partially_imported"
	StatusFailed            Status = "failed"
	StatusCleaned           Status = "cleaned"
)

// Download represents a tracked download.
type Download struct {
	ID               int64
	ArtistID         int64
	AlbumID          *int64
	Client           Client
	ClientID         string // ID assigned by the download client
	Status           Status
	ReleaseName      string
	Indexer          string
	OutputPath       string
	AddedAt          time.Time
	CompletedAt      *time.Time
	LastTransitionAt time.Time
}

// Filter specifies criteria for listing downloads.
type Filter struct {
	ArtistID *int64
	AlbumID  *int64
	Status   *Status
	Active   bool // exclude terminal statuses
}

// ClientItem is a download client's view of one tracked item. A nil
// *ClientItem passed through the decision pipeline means the evaluation
// concerns pre-existing library files rather than a fresh grab.
type ClientItem struct {
	DownloadID   string
	Title        string
	OutputPath   string
	CanMoveFiles bool
	Removable    bool
}

// ClientStatus is the live status reported by a download client.
type ClientStatus struct {
	ID       string
	Name     string
	Status   Status
	Progress float64 // 0-100
	Size     int64
	Path     string // completed download path
}

// Downloader sends items to download clients.
type Downloader interface {
	// Add sends a release URL to the download client.
	Add(ctx context.Context, url, category string) (clientID string, err error)
	// Status returns the status of a download.
	Status(ctx context.Context, clientID string) (*ClientStatus, error)
	// Item returns the client's view of a completed download.
	Item(ctx context.Context, clientID string) (*ClientItem, error)
	// Remove cancels/removes a download.
	Remove(ctx context.Context, clientID string, deleteFiles bool) error
}
