package library

import (
	"fmt"
	"strings"
	"time"
)

func addAlbum(q querier, a *Album) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO albums (artist_id, title, year, track_count, status, monitored, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ArtistID, a.Title, a.Year, a.TrackCount, a.Status, a.Monitored, now,
	)
	if err != nil {
		return fmt.Errorf("insert album: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	a.ID = id
	a.AddedAt = now
	return nil
}

// AddAlbum inserts a new album. Sets ID and AddedAt on the struct.
func (s *Store) AddAlbum(a *Album) error { return addAlbum(s.db, a) }

// AddAlbum inserts a new album within a transaction.
func (t *Tx) AddAlbum(a *Album) error { return addAlbum(t.tx, a) }

func getAlbum(q querier, id int64) (*Album, error) {
	a := &Album{}
	err := q.QueryRow(`
		SELECT id, artist_id, title, year, track_count, status, monitored, added_at
		FROM albums WHERE id = ?`, id,
	).Scan(&a.ID, &a.ArtistID, &a.Title, &a.Year, &a.TrackCount, &a.Status, &a.Monitored, &a.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("get album %d: %w", id, mapSQLiteError(err))
	}
	return a, nil
}

// GetAlbum retrieves an album by ID. Returns ErrNotFound if absent.
func (s *Store) GetAlbum(id int64) (*Album, error) { return getAlbum(s.db, id) }

// GetAlbum retrieves an album by ID within a transaction.
func (t *Tx) GetAlbum(id int64) (*Album, error) { return getAlbum(t.tx, id) }

// ListAlbums returns albums matching the filter.
func (s *Store) ListAlbums(f AlbumFilter) ([]*Album, error) {
	var conditions []string
	var args []any

	if f.ArtistID != nil {
		conditions = append(conditions, "artist_id = ?")
		args = append(args, *f.ArtistID)
	}
	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, artist_id, title, year, track_count, status, monitored, added_at
		FROM albums ` + whereClause + ` ORDER BY year, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Album
	for rows.Next() {
		a := &Album{}
		if err := rows.Scan(&a.ID, &a.ArtistID, &a.Title, &a.Year, &a.TrackCount, &a.Status, &a.Monitored, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return results, nil
}

// UpdateAlbumStatus updates an album's status.
func (s *Store) UpdateAlbumStatus(id int64, status Status) error {
	result, err := s.db.Exec(`UPDATE albums SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update album %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update album %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateAlbumStatus updates an album's status within a transaction.
func (t *Tx) UpdateAlbumStatus(id int64, status Status) error {
	result, err := t.tx.Exec(`UPDATE albums SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update album %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update album %d: %w", id, ErrNotFound)
	}
	return nil
}
