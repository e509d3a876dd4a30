package library

import (
	"fmt"
	"strings"
	"time"
)

func addArtist(q querier, a *Artist) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO artists (name, sort_name, path, status, quality_profile, monitored, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.SortName, a.Path, a.Status, a.QualityProfile, a.Monitored, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert artist: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	a.ID = id
	a.AddedAt = now
	a.UpdatedAt = now
	return nil
}

// AddArtist inserts a new artist. Sets ID, AddedAt, and UpdatedAt on the struct.
func (s *Store) AddArtist(a *Artist) error { return addArtist(s.db, a) }

// AddArtist inserts a new artist within a transaction.
func (t *Tx) AddArtist(a *Artist) error { return addArtist(t.tx, a) }

func getArtist(q querier, id int64) (*Artist, error) {
	a := &Artist{}
	err := q.QueryRow(`
		SELECT id, name, sort_name, path, status, quality_profile, monitored, added_at, updated_at
		FROM artists WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.SortName, &a.Path, &a.Status, &a.QualityProfile, &a.Monitored, &a.AddedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get artist %d: %w", id, mapSQLiteError(err))
	}
	return a, nil
}

// GetArtist retrieves an artist by ID. Returns ErrNotFound if absent.
func (s *Store) GetArtist(id int64) (*Artist, error) { return getArtist(s.db, id) }

// GetArtist retrieves an artist by ID within a transaction.
func (t *Tx) GetArtist(id int64) (*Artist, error) { return getArtist(t.tx, id) }

// ListArtists returns artists matching the filter.
func (s *Store) ListArtists(f ArtistFilter) ([]*Artist, error) {
	var conditions []string
	var args []any

	if f.Name != nil {
		conditions = append(conditions, "name = ?")
		args = append(args, *f.Name)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Monitored != nil {
		conditions = append(conditions, "monitored = ?")
		args = append(args, *f.Monitored)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, name, sort_name, path, status, quality_profile, monitored, added_at, updated_at
		FROM artists ` + whereClause + ` ORDER BY sort_name`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Artist
	for rows.Next() {
		a := &Artist{}
		if err := rows.Scan(&a.ID, &a.Name, &a.SortName, &a.Path, &a.Status, &a.QualityProfile, &a.Monitored, &a.AddedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return results, nil
}

// FindArtistByName finds an artist whose cleaned name matches.
// Returns nil, nil when no artist matches.
func (s *Store) FindArtistByName(name string) (*Artist, error) {
	artists, err := s.ListArtists(ArtistFilter{})
	if err != nil {
		return nil, err
	}
	for _, a := range artists {
		if equalFold(a.Name, name) {
			return a, nil
		}
	}
	return nil, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func updateArtist(q querier, a *Artist) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE artists SET name = ?, sort_name = ?, path = ?, status = ?, quality_profile = ?, monitored = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.SortName, a.Path, a.Status, a.QualityProfile, a.Monitored, now, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artist %d: %w", a.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update artist %d: %w", a.ID, ErrNotFound)
	}
	a.UpdatedAt = now
	return nil
}

// UpdateArtist updates an existing artist. Returns ErrNotFound if absent.
func (s *Store) UpdateArtist(a *Artist) error { return updateArtist(s.db, a) }

// UpdateArtist updates an existing artist within a transaction.
func (t *Tx) UpdateArtist(a *Artist) error { return updateArtist(t.tx, a) }
