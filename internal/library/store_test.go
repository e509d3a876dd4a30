package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/resonarr/pkg/release"
)

func addTestArtist(t *testing.T, s *Store, name string) *Artist {
	t.Helper()
	a := &Artist{
		Name:           name,
		SortName:       name,
		Path:           "/music/" + name,
		Status:         StatusWanted,
		QualityProfile: "lossless",
		Monitored:      true,
	}
	require.NoError(t, s.AddArtist(a))
	return a
}

func addTestAlbum(t *testing.T, s *Store, artistID int64, title string, trackCount int) *Album {
	t.Helper()
	a := &Album{
		ArtistID:   artistID,
		Title:      title,
		Year:       2020,
		TrackCount: trackCount,
		Status:     StatusWanted,
		Monitored:  true,
	}
	require.NoError(t, s.AddAlbum(a))
	return a
}

func TestStore_ArtistRoundTrip(t *testing.T) {
	s := NewStore(setupTestDB(t))

	artist := addTestArtist(t, s, "Radiohead")
	assert.NotZero(t, artist.ID)
	assert.False(t, artist.AddedAt.IsZero())

	got, err := s.GetArtist(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Radiohead", got.Name)
	assert.Equal(t, "/music/Radiohead", got.Path)
	assert.True(t, got.Monitored)

	got.Status = StatusAvailable
	require.NoError(t, s.UpdateArtist(got))

	updated, err := s.GetArtist(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, updated.Status)
}

func TestStore_GetArtist_NotFound(t *testing.T) {
	s := NewStore(setupTestDB(t))

	_, err := s.GetArtist(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindArtistByName(t *testing.T) {
	s := NewStore(setupTestDB(t))
	addTestArtist(t, s, "Radiohead")

	found, err := s.FindArtistByName("radiohead")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Radiohead", found.Name)

	missing, err := s.FindArtistByName("Slayer")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_AlbumRoundTrip(t *testing.T) {
	s := NewStore(setupTestDB(t))
	artist := addTestArtist(t, s, "Radiohead")
	album := addTestAlbum(t, s, artist.ID, "OK Computer", 12)

	got, err := s.GetAlbum(album.ID)
	require.NoError(t, err)
	assert.Equal(t, "OK Computer", got.Title)
	assert.Equal(t, 12, got.TrackCount)

	albums, err := s.ListAlbums(AlbumFilter{ArtistID: &artist.ID})
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	require.NoError(t, s.UpdateAlbumStatus(album.ID, StatusAvailable))
	got, err = s.GetAlbum(album.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, got.Status)
}

func TestStore_FileRoundTrip(t *testing.T) {
	s := NewStore(setupTestDB(t))
	artist := addTestArtist(t, s, "Radiohead")
	album := addTestAlbum(t, s, artist.ID, "OK Computer", 12)

	f := &TrackFile{
		AlbumID:     album.ID,
		TrackNumber: 1,
		Path:        "/music/Radiohead/OK Computer/01 - Airbag.flac",
		SizeBytes:   31457280,
		Quality:     release.QualityModel{Quality: release.QualityFLAC, Revision: release.Revision{Version: 1}},
		Source:      "nzbgeek",
	}
	require.NoError(t, s.AddFile(f))
	assert.NotZero(t, f.ID)

	got, err := s.GetFile(f.ID)
	require.NoError(t, err)
	assert.Equal(t, release.QualityFLAC, got.Quality.Quality)
	assert.Equal(t, 1, got.Quality.Revision.Version)
	assert.Equal(t, int64(31457280), got.SizeBytes)

	files, err := s.ListFiles(FileFilter{AlbumID: &album.ID})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestStore_AddFile_DuplicatePath(t *testing.T) {
	s := NewStore(setupTestDB(t))
	artist := addTestArtist(t, s, "Radiohead")
	album := addTestAlbum(t, s, artist.ID, "OK Computer", 12)

	f := &TrackFile{AlbumID: album.ID, Path: "/music/x.flac", Quality: release.QualityModel{Quality: release.QualityFLAC}}
	require.NoError(t, s.AddFile(f))

	dup := &TrackFile{AlbumID: album.ID, Path: "/music/x.flac", Quality: release.QualityModel{Quality: release.QualityFLAC}}
	err := s.AddFile(dup)
	assert.True(t, errors.Is(err, ErrDuplicate), "expected ErrDuplicate, got %v", err)
}

func TestStore_TxRollback(t *testing.T) {
	s := NewStore(setupTestDB(t))
	artist := addTestArtist(t, s, "Radiohead")
	album := addTestAlbum(t, s, artist.ID, "OK Computer", 12)

	tx, err := s.Begin()
	require.NoError(t, err)

	f := &TrackFile{AlbumID: album.ID, Path: "/music/y.flac", Quality: release.QualityModel{Quality: release.QualityFLAC}}
	require.NoError(t, tx.AddFile(f))
	require.NoError(t, tx.Rollback())

	files, err := s.ListFiles(FileFilter{AlbumID: &album.ID})
	require.NoError(t, err)
	assert.Empty(t, files, "rolled back insert must not persist")
}

func TestStore_ListArtists_Filter(t *testing.T) {
	s := NewStore(setupTestDB(t))
	addTestArtist(t, s, "Radiohead")
	b := addTestArtist(t, s, "Boards of Canada")
	b.Status = StatusAvailable
	require.NoError(t, s.UpdateArtist(b))

	wanted, err := s.ListArtists(ArtistFilter{Status: ptr(StatusWanted)})
	require.NoError(t, err)
	assert.Len(t, wanted, 1)
	assert.Equal(t, "Radiohead", wanted[0].Name)
}
