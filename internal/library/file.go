package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/resonarr/pkg/release"
)

func addFile(q querier, f *TrackFile) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO track_files (album_id, track_number, path, size_bytes, quality, revision_version, revision_real, source, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.AlbumID, f.TrackNumber, f.Path, f.SizeBytes,
		f.Quality.Quality.String(), f.Quality.Revision.Version, f.Quality.Revision.Real,
		f.Source, now,
	)
	if err != nil {
		return fmt.Errorf("insert track file: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	f.ID = id
	f.AddedAt = now
	return nil
}

// AddFile inserts a new track file record. Sets ID and AddedAt on the struct.
// Returns ErrDuplicate if a record for the same path already exists.
func (s *Store) AddFile(f *TrackFile) error { return addFile(s.db, f) }

// AddFile inserts a new track file record within a transaction.
func (t *Tx) AddFile(f *TrackFile) error { return addFile(t.tx, f) }

func scanFile(row interface{ Scan(...any) error }) (*TrackFile, error) {
	f := &TrackFile{}
	var qualityName string
	if err := row.Scan(&f.ID, &f.AlbumID, &f.TrackNumber, &f.Path, &f.SizeBytes,
		&qualityName, &f.Quality.Revision.Version, &f.Quality.Revision.Real,
		&f.Source, &f.AddedAt); err != nil {
		return nil, err
	}
	f.Quality.Quality = release.ParseQualityName(qualityName)
	return f, nil
}

const fileColumns = "id, album_id, track_number, path, size_bytes, quality, revision_version, revision_real, source, added_at"

// GetFile retrieves a track file by ID. Returns ErrNotFound if absent.
func (s *Store) GetFile(id int64) (*TrackFile, error) {
	f, err := scanFile(s.db.QueryRow(`SELECT `+fileColumns+` FROM track_files WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get track file %d: %w", id, mapSQLiteError(err))
	}
	return f, nil
}

func listFiles(q querier, filter FileFilter) ([]*TrackFile, error) {
	var conditions []string
	var args []any

	if filter.AlbumID != nil {
		conditions = append(conditions, "album_id = ?")
		args = append(args, *filter.AlbumID)
	}
	if filter.Path != nil {
		conditions = append(conditions, "path = ?")
		args = append(args, *filter.Path)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + fileColumns + ` FROM track_files ` + whereClause + ` ORDER BY album_id, track_number`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list track files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*TrackFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track file: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate track files: %w", err)
	}
	return results, nil
}

// ListFiles returns track files matching the filter.
func (s *Store) ListFiles(f FileFilter) ([]*TrackFile, error) { return listFiles(s.db, f) }

// ListFiles returns track files matching the filter within a transaction.
func (t *Tx) ListFiles(f FileFilter) ([]*TrackFile, error) { return listFiles(t.tx, f) }

// DeleteFile removes a track file record by ID. Idempotent.
func (s *Store) DeleteFile(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM track_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete track file %d: %w", id, mapSQLiteError(err))
	}
	return nil
}
