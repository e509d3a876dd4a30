package search

import (
	"context"
	"database/sql"
	_ "embed"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/pkg/release"
)

//go:embed testdata/schema.sql
var testSchema string

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err, "apply schema")
	return db
}

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func insertTestArtist(t *testing.T, db *sql.DB, name, path string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO artists (name, sort_name, path, status, quality_profile, added_at, updated_at)
		VALUES (?, ?, ?, 'wanted', 'standard', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		name, name, path,
	)
	require.NoError(t, err, "insert test artist")
	id, _ := result.LastInsertId()
	return id
}

func insertTestAlbum(t *testing.T, db *sql.DB, artistID int64, title string, year, trackCount int) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO albums (artist_id, title, year, track_count, status, added_at)
		VALUES (?, ?, ?, ?, 'wanted', CURRENT_TIMESTAMP)`,
		artistID, title, year, trackCount,
	)
	require.NoError(t, err, "insert test album")
	id, _ := result.LastInsertId()
	return id
}

func insertTestFile(t *testing.T, db *sql.DB, albumID int64, trackNumber int, path string, size int64, quality string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO track_files (album_id, track_number, path, size_bytes, quality, added_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		albumID, trackNumber, path, size, quality,
	)
	require.NoError(t, err, "insert test file")
	id, _ := result.LastInsertId()
	return id
}

// fakeAdapter is an in-memory indexer adapter for fetcher tests.
type fakeAdapter struct {
	id       int64
	name     string
	protocol release.Protocol
	priority int
	releases []release.Info
	err      error
	calls    int
}

func (a *fakeAdapter) ID() int64                  { return a.id }
func (a *fakeAdapter) Name() string               { return a.name }
func (a *fakeAdapter) Protocol() release.Protocol { return a.protocol }
func (a *fakeAdapter) Priority() int              { return a.priority }

func (a *fakeAdapter) Fetch(_ context.Context) ([]release.Info, error) {
	a.calls++
	return a.releases, a.err
}

func (a *fakeAdapter) Search(_ context.Context, _ string) ([]release.Info, error) {
	a.calls++
	return a.releases, a.err
}

// fakeResolver serves canned artists and albums by name.
type fakeResolver struct {
	artists map[string]*library.Artist
	albums  map[string]*library.Album
	err     error
}

func (r *fakeResolver) ResolveArtist(name string) (*library.Artist, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.artists[name], nil
}

func (r *fakeResolver) ResolveAlbum(_ int64, title string) (*library.Album, error) {
	return r.albums[title], nil
}

func testRelease(guid, title string, indexerID int64, proto release.Protocol) release.Info {
	return release.Info{
		GUID:        guid,
		Title:       title,
		Size:        400 << 20,
		PublishDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		IndexerID:   indexerID,
		Indexer:     "test-indexer",
		Protocol:    proto,
		DownloadURL: "https://indexer.example/dl/" + guid,
		Seeders:     30,
	}
}
