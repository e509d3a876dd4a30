// Package release provides types for parsing and representing music release information.
package release

import "time"

// Protocol is the transport a release is downloaded over.
type Protocol int

const (
	ProtocolUnknown Protocol = iota
	ProtocolUsenet
	ProtocolTorrent
)

func (p Protocol) String() string {
	switch p {
	case ProtocolUsenet:
		return "usenet"
	case ProtocolTorrent:
		return "torrent"
	default:
		return "unknown"
	}
}

// ParseProtocol converts a protocol string to a Protocol.
func ParseProtocol(s string) Protocol {
	switch s {
	case "usenet", "nzb":
		return ProtocolUsenet
	case "torrent":
		return ProtocolTorrent
	default:
		return ProtocolUnknown
	}
}

// Info is one discovered candidate from an indexer.
// Immutable once produced by an adapter.
type Info struct {
	GUID        string // opaque, unique within the indexer
	Title       string
	Size        int64
	PublishDate time.Time
	IndexerID   int64
	Indexer     string
	Protocol    Protocol
	DownloadURL string

	// Torrent-only fields, zero otherwise.
	Seeders  int
	Leechers int
	InfoHash string
}
