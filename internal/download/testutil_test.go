package download

import (
	"database/sql"
	_ "embed"
	"testing"

	_ "modernc.org/sqlite"
)

//go:embed testdata/schema.sql
var testSchema string

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// insertTestArtist inserts a test artist row and returns its ID.
// Downloads reference artists via foreign key.
func insertTestArtist(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO artists (name, path, quality_profile, added_at, updated_at)
		VALUES (?, '/music/test', 'lossless', datetime('now'), datetime('now'))`,
		name,
	)
	if err != nil {
		t.Fatalf("insert test artist: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("get artist id: %v", err)
	}
	return id
}
