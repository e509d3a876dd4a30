package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/events"
	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/library"
)

type importFixture struct {
	imp         *Importer
	db          *sql.DB
	downloads   *download.Store
	library     *library.Store
	history     *HistoryStore
	downloadDir string
	musicRoot   string
	tags        stubTags
}

func setupTestImporter(t *testing.T) *importFixture {
	t.Helper()

	db := setupTestDB(t)
	downloadDir := t.TempDir()
	musicRoot := t.TempDir()

	libStore := library.NewStore(db)
	dlStore := download.NewStore(db)
	history := NewHistoryStore(db)
	tags := stubTags{}

	identifier := identify.NewService(libStore, tags, testLogger())

	maker := NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{
			NewArtistPathSpec([]string{musicRoot}),
			NewAlreadyImportedSpec(history),
			NewCloseMatchSpec(),
		},
		[]decision.Specification[*FileItem]{
			NewNotUnpackingSpec([]string{"incomplete"}, testLogger()),
			NewFreeSpaceSpec(fakeDisk{free: 1 << 40}, 100 << 20, false, testLogger()),
			NewSameFileSpec(libStore),
		},
		testLogger(),
	)

	imp := New(Config{
		Library:    libStore,
		Downloads:  dlStore,
		History:    history,
		Identifier: identifier,
		Decisions:  maker,
		Bus:        events.NewBus(testLogger()),
		Logger:     testLogger(),
	})

	return &importFixture{
		imp:         imp,
		db:          db,
		downloads:   dlStore,
		library:     libStore,
		history:     history,
		downloadDir: downloadDir,
		musicRoot:   musicRoot,
		tags:        tags,
	}
}

func createTestDownload(t *testing.T, db *sql.DB, artistID, albumID int64, status download.Status, outputPath string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO downloads (artist_id, album_id, client, client_id, status, release_name, indexer, output_path, added_at, last_transition_at)
		VALUES (?, ?, 'manual', 'man_1', ?, 'Muse - Absolution FLAC', 'TestIndexer', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		artistID, albumID, status, outputPath,
	)
	require.NoError(t, err, "create download")
	id, _ := result.LastInsertId()
	return id
}

// writeTrack creates a file of the given size and registers its tags.
func (f *importFixture) writeTrack(t *testing.T, name string, size int, tags identify.Tags) string {
	t.Helper()
	path := filepath.Join(f.downloadDir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	f.tags[path] = tags
	return path
}

func TestImporter_ImportDownload(t *testing.T) {
	f := setupTestImporter(t)

	artistPath := filepath.Join(f.musicRoot, "Muse")
	artistID := insertTestArtist(t, f.db, "Muse", artistPath)
	albumID := insertTestAlbum(t, f.db, artistID, "Absolution", 2003, 3)

	// Track 1 already in the library; its size will match one candidate.
	insertTestFile(t, f.db, albumID, 1,
		filepath.Join(artistPath, "Absolution (2003)", "01 - Intro.flac"), 1000, "flac")

	f.writeTrack(t, "01 - Intro.flac", 1000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Intro", TrackNumber: 1})
	f.writeTrack(t, "02 - Apocalypse Please.flac", 2000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Apocalypse Please", TrackNumber: 2})
	f.writeTrack(t, "03 - Time Is Running Out.flac", 3000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Time Is Running Out", TrackNumber: 3})

	dlID := createTestDownload(t, f.db, artistID, albumID, download.StatusCompleted, f.downloadDir)
	d, err := f.downloads.Get(dlID)
	require.NoError(t, err)

	res, err := f.imp.ImportDownload(context.Background(), d)
	require.NoError(t, err)

	assert.Len(t, res.Imported, 2)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "Has the same filesize as existing file", res.Rejected[0].Rejections[0].Reason)
	assert.Empty(t, res.Failed)

	// Only 2 of the 3 expected tracks imported from this download; the
	// third was a duplicate of a pre-existing file. The album is complete
	// but the download itself is not fully imported.
	assert.Equal(t, download.StatusPartiallyImported, res.Status)

	// Files landed in the library layout and left the download folder.
	albumDir := filepath.Join(artistPath, "Absolution (2003)")
	assert.FileExists(t, filepath.Join(albumDir, "02 - Apocalypse Please.flac"))
	assert.FileExists(t, filepath.Join(albumDir, "03 - Time Is Running Out.flac"))
	assert.NoFileExists(t, filepath.Join(f.downloadDir, "02 - Apocalypse Please.flac"))

	files, err := f.library.ListFiles(library.FileFilter{AlbumID: &albumID})
	require.NoError(t, err)
	assert.Len(t, files, 3)

	album, err := f.library.GetAlbum(albumID)
	require.NoError(t, err)
	assert.Equal(t, library.StatusAvailable, album.Status)

	entry, err := f.history.MostRecentByAlbum(albumID, EventImported)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "man_1", entry.DownloadID)
}

func TestImporter_ImportDownload_Partial(t *testing.T) {
	f := setupTestImporter(t)

	artistPath := filepath.Join(f.musicRoot, "Muse")
	artistID := insertTestArtist(t, f.db, "Muse", artistPath)
	albumID := insertTestAlbum(t, f.db, artistID, "Absolution", 2003, 14)

	f.writeTrack(t, "01 - Intro.flac", 1000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Intro", TrackNumber: 1})
	f.writeTrack(t, "02 - Apocalypse Please.flac", 2000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Apocalypse Please", TrackNumber: 2})

	dlID := createTestDownload(t, f.db, artistID, albumID, download.StatusCompleted, f.downloadDir)
	d, err := f.downloads.Get(dlID)
	require.NoError(t, err)

	res, err := f.imp.ImportDownload(context.Background(), d)
	require.NoError(t, err)

	assert.Len(t, res.Imported, 2)
	assert.Equal(t, download.StatusPartiallyImported, res.Status)

	// A partial import leaves the album unfinished.
	album, err := f.library.GetAlbum(albumID)
	require.NoError(t, err)
	assert.Equal(t, library.StatusWanted, album.Status)
}

func TestImporter_ImportDownload_NoAudioFiles(t *testing.T) {
	f := setupTestImporter(t)

	artistID := insertTestArtist(t, f.db, "Muse", filepath.Join(f.musicRoot, "Muse"))
	albumID := insertTestAlbum(t, f.db, artistID, "Absolution", 2003, 3)

	require.NoError(t, os.WriteFile(filepath.Join(f.downloadDir, "readme.nfo"), []byte("x"), 0644))

	dlID := createTestDownload(t, f.db, artistID, albumID, download.StatusCompleted, f.downloadDir)
	d, err := f.downloads.Get(dlID)
	require.NoError(t, err)

	res, err := f.imp.ImportDownload(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, download.StatusFailed, res.Status)

	entry, err := f.history.MostRecentByAlbum(albumID, EventFailed)
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestImporter_ImportDownload_SecondRunRejected(t *testing.T) {
	f := setupTestImporter(t)

	artistPath := filepath.Join(f.musicRoot, "Muse")
	artistID := insertTestArtist(t, f.db, "Muse", artistPath)
	albumID := insertTestAlbum(t, f.db, artistID, "Absolution", 2003, 2)

	f.writeTrack(t, "01 - Intro.flac", 1000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Intro", TrackNumber: 1})
	f.writeTrack(t, "02 - Apocalypse Please.flac", 2000,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Apocalypse Please", TrackNumber: 2})

	dlID := createTestDownload(t, f.db, artistID, albumID, download.StatusCompleted, f.downloadDir)
	d, err := f.downloads.Get(dlID)
	require.NoError(t, err)

	res, err := f.imp.ImportDownload(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, download.StatusImported, res.Status)

	// The same grab shows up completed again. Different sizes dodge the
	// duplicate-size check so the history check is what must catch it.
	f.writeTrack(t, "01 - Intro.flac", 1500,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Intro", TrackNumber: 1})
	f.writeTrack(t, "02 - Apocalypse Please.flac", 2500,
		identify.Tags{Artist: "Muse", Album: "Absolution", Title: "Apocalypse Please", TrackNumber: 2})

	dlID2 := createTestDownload(t, f.db, artistID, albumID, download.StatusCompleted, f.downloadDir)
	d2, err := f.downloads.Get(dlID2)
	require.NoError(t, err)

	res, err = f.imp.ImportDownload(context.Background(), d2)
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
	assert.Equal(t, download.StatusFailed, res.Status)
	for _, dec := range res.Rejected {
		assert.Equal(t, "Album was already imported from this download", dec.Rejections[0].Reason)
	}

	files, err := f.library.ListFiles(library.FileFilter{AlbumID: &albumID})
	require.NoError(t, err)
	assert.Len(t, files, 2, "re-import adds nothing")
}

func TestImporter_ImportDownload_WrongStatus(t *testing.T) {
	f := setupTestImporter(t)

	artistID := insertTestArtist(t, f.db, "Muse", filepath.Join(f.musicRoot, "Muse"))
	albumID := insertTestAlbum(t, f.db, artistID, "Absolution", 2003, 3)

	dlID := createTestDownload(t, f.db, artistID, albumID, download.StatusDownloading, f.downloadDir)
	d, err := f.downloads.Get(dlID)
	require.NoError(t, err)

	_, err = f.imp.ImportDownload(context.Background(), d)
	assert.ErrorIs(t, err, download.ErrInvalidTransition)
}
