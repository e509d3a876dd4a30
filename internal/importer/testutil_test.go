package importer

import (
	"database/sql"
	_ "embed"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/resonarr/internal/identify"
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

// stubTags serves canned tags keyed by path.
type stubTags map[string]identify.Tags

func (s stubTags) ReadTags(path string) (identify.Tags, error) {
	return s[path], nil
}

func ptr[T any](v T) *T {
	return &v
}
