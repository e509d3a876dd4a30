// Package library manages artist, album, and track file tracking.
package library

import (
	"time"

	"github.com/vmunix/resonarr/pkg/release"
)

// Status tracks the state of an artist or album.
type Status string

const (
	StatusWanted      Status = "wanted"
	StatusAvailable   Status = "available"
	StatusUnmonitored Status = "unmonitored"
)

// Artist represents a tracked artist.
type Artist struct {
	ID             int64
	Name           string
	SortName       string
	Path           string // artist folder, inside a configured root folder
	Status         Status
	QualityProfile string
	Monitored      bool
	AddedAt        time.Time
	UpdatedAt      time.Time
}

// Album represents one album of a tracked artist.
type Album struct {
	ID         int64
	ArtistID   int64
	Title      string
	Year       int
	TrackCount int // expected number of tracks
	Status     Status
	Monitored  bool
	AddedAt    time.Time
}

// TrackFile represents a media file on disk linked to an album.
type TrackFile struct {
	ID          int64
	AlbumID     int64
	TrackNumber int
	Path        string
	SizeBytes   int64
	Quality     release.QualityModel
	Source      string // indexer or "manual"
	AddedAt     time.Time
}

// ArtistFilter specifies criteria for listing artists.
type ArtistFilter struct {
	Name      *string
	Status    *Status
	Monitored *bool
	Limit     int
	Offset    int
}

// AlbumFilter specifies criteria for listing albums.
type AlbumFilter struct {
	ArtistID *int64
	Title    *string
	Status   *Status
	Limit    int
	Offset   int
}

// FileFilter specifies criteria for listing track files.
type FileFilter struct {
	AlbumID *int64
	Path    *string
	Limit   int
}
