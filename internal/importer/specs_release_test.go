package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/library"
)

func TestArtistPathSpec(t *testing.T) {
	spec := NewArtistPathSpec([]string{"/music"})

	inside := &identify.LocalAlbumRelease{
		Artist: &library.Artist{Name: "Muse", Path: "/music/Muse"},
	}
	d, err := spec.Evaluate(inside, nil)
	require.NoError(t, err)
	assert.True(t, d.Accepted())

	outside := &identify.LocalAlbumRelease{
		Artist: &library.Artist{Name: "Muse", Path: "/srv/other/Muse"},
	}
	d, err = spec.Evaluate(outside, nil)
	require.NoError(t, err)
	assert.False(t, d.Accepted())

	// A sibling folder sharing the root's name prefix is not inside it.
	sneaky := &identify.LocalAlbumRelease{
		Artist: &library.Artist{Name: "Muse", Path: "/musics/Muse"},
	}
	d, err = spec.Evaluate(sneaky, nil)
	require.NoError(t, err)
	assert.False(t, d.Accepted())
}

// fakeHistory serves canned most-recent entries per event.
type fakeHistory struct {
	entries map[string]*HistoryEntry
}

func (f fakeHistory) MostRecentByAlbum(_ int64, event string) (*HistoryEntry, error) {
	return f.entries[event], nil
}

func TestAlreadyImportedSpec(t *testing.T) {
	album := &library.Album{ID: 7, Title: "Absolution"}
	dl := &download.ClientItem{DownloadID: "sab_abc123"}
	now := time.Now()

	t.Run("no import history accepts", func(t *testing.T) {
		spec := NewAlreadyImportedSpec(fakeHistory{entries: map[string]*HistoryEntry{}})
		d, err := spec.Evaluate(&identify.LocalAlbumRelease{Album: album}, dl)
		require.NoError(t, err)
		assert.True(t, d.Accepted())
	})

	t.Run("same download already imported rejects", func(t *testing.T) {
		spec := NewAlreadyImportedSpec(fakeHistory{entries: map[string]*HistoryEntry{
			EventImported: {DownloadID: "sab_abc123", CreatedAt: now},
			EventGrabbed:  {DownloadID: "sab_abc123", CreatedAt: now.Add(-time.Hour)},
		}})
		d, err := spec.Evaluate(&identify.LocalAlbumRelease{Album: album}, dl)
		require.NoError(t, err)
		assert.False(t, d.Accepted())
		assert.Equal(t, "Album was already imported from this download", d.Rejections()[0].Reason)
	})

	t.Run("regrab after import accepts", func(t *testing.T) {
		spec := NewAlreadyImportedSpec(fakeHistory{entries: map[string]*HistoryEntry{
			EventImported: {DownloadID: "sab_abc123", CreatedAt: now.Add(-time.Hour)},
			EventGrabbed:  {DownloadID: "sab_def456", CreatedAt: now},
		}})
		d, err := spec.Evaluate(&identify.LocalAlbumRelease{Album: album}, dl)
		require.NoError(t, err)
		assert.True(t, d.Accepted())
	})

	t.Run("different download id accepts", func(t *testing.T) {
		spec := NewAlreadyImportedSpec(fakeHistory{entries: map[string]*HistoryEntry{
			EventImported: {DownloadID: "sab_other", CreatedAt: now},
		}})
		d, err := spec.Evaluate(&identify.LocalAlbumRelease{Album: album}, dl)
		require.NoError(t, err)
		assert.True(t, d.Accepted())
	})

	t.Run("nil client item accepts", func(t *testing.T) {
		spec := NewAlreadyImportedSpec(fakeHistory{entries: map[string]*HistoryEntry{
			EventImported: {DownloadID: "sab_abc123", CreatedAt: now},
		}})
		d, err := spec.Evaluate(&identify.LocalAlbumRelease{Album: album}, nil)
		require.NoError(t, err)
		assert.True(t, d.Accepted())
	})
}

func TestCloseMatchSpec(t *testing.T) {
	t.Run("close match accepts", func(t *testing.T) {
		rel := &identify.LocalAlbumRelease{NewDownload: true}
		rel.Distance.Add(identify.ComponentAlbum, 0.05)

		d, err := NewCloseMatchSpec().Evaluate(rel, nil)
		require.NoError(t, err)
		assert.True(t, d.Accepted())
	})

	t.Run("distant match rejects", func(t *testing.T) {
		rel := &identify.LocalAlbumRelease{NewDownload: true}
		rel.Distance.Add(identify.ComponentAlbum, 0.9)

		d, err := NewCloseMatchSpec().Evaluate(rel, nil)
		require.NoError(t, err)
		assert.False(t, d.Accepted())
		assert.Contains(t, d.Rejections()[0].Reason, "not close enough")
	})

	t.Run("library rescan ignores missing tracks", func(t *testing.T) {
		rel := &identify.LocalAlbumRelease{NewDownload: false}
		rel.Distance.Add(identify.ComponentAlbum, 0.05)
		rel.Distance.Add(identify.ComponentMissingTracks, 1.0)

		d, err := NewCloseMatchSpec().Evaluate(rel, nil)
		require.NoError(t, err)
		assert.True(t, d.Accepted(), "known library gaps do not fail a rescan")

		rel.NewDownload = true
		d, err = NewCloseMatchSpec().Evaluate(rel, nil)
		require.NoError(t, err)
		assert.False(t, d.Accepted(), "a fresh download is held to the full distance")
	})
}
