package download

import (
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"
)

func TestHashFromMagnet(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "magnet with hash",
			link: "magnet:?xt=urn:btih:DEADBEEFDEADBEEFDEADBEEFDEADBEEFDEADBEEF&dn=Muse+Absolution",
			want: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		},
		{
			name: "http torrent url",
			link: "https://indexer.example/download/123.torrent",
			want: "",
		},
		{
			name: "magnet without btih",
			link: "magnet:?dn=Muse+Absolution",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashFromMagnet(tt.link); got != tt.want {
				t.Errorf("hashFromMagnet(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestMapTorrentState(t *testing.T) {
	tests := []struct {
		state    qbt.TorrentState
		progress float64
		want     Status
	}{
		{qbt.TorrentStateDownloading, 0.4, StatusDownloading},
		{qbt.TorrentStateStalledDl, 0.4, StatusDownloading},
		{qbt.TorrentStateQueuedDl, 0, StatusQueued},
		{qbt.TorrentStateUploading, 1, StatusCompleted},
		{qbt.TorrentStateStalledUp, 1, StatusCompleted},
		{qbt.TorrentStatePausedUp, 1, StatusCompleted},
		{qbt.TorrentStateError, 0.4, StatusFailed},
		{qbt.TorrentStateMissingFiles, 1, StatusFailed},
		{qbt.TorrentStateMoving, 1, StatusCompleted},
	}

	for _, tt := range tests {
		if got := mapTorrentState(tt.state, tt.progress); got != tt.want {
			t.Errorf("mapTorrentState(%s, %v) = %s, want %s", tt.state, tt.progress, got, tt.want)
		}
	}
}
