package download

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Store persists download records.
type Store struct {
	db *sql.DB
}

// NewStore creates a download store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add records a new download.
// Idempotent: if a download with the same artist_id and release_name already
// exists, the existing record is returned instead of creating a duplicate.
func (s *Store) Add(d *Download) error {
	var existingID int64
	var existingAddedAt time.Time
	err := s.db.QueryRow(`
		SELECT id, added_at FROM downloads
		WHERE artist_id = ? AND release_name = ?`,
		d.ArtistID, d.ReleaseName,
	).Scan(&existingID, &existingAddedAt)

	if err == nil {
		d.ID = existingID
		d.AddedAt = existingAddedAt
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check existing download: %w", err)
	}

	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO downloads (artist_id, album_id, client, client_id, status, release_name, indexer, output_path, added_at, last_transition_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ArtistID, d.AlbumID, d.Client, d.ClientID, d.Status, d.ReleaseName, d.Indexer, d.OutputPath, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert download: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	d.ID = id
	d.AddedAt = now
	d.LastTransitionAt = now
	return nil
}

// Get retrieves a download by ID. Returns ErrNotFound if it does not exist.
func (s *Store) Get(id int64) (*Download, error) {
	d := &Download{}
	err := s.db.QueryRow(`
		SELECT id, artist_id, album_id, client, client_id, status, release_name, indexer, output_path, added_at, completed_at, last_transition_at
		FROM downloads WHERE id = ?`, id,
	).Scan(&d.ID, &d.ArtistID, &d.AlbumID, &d.Client, &d.ClientID, &d.Status, &d.ReleaseName, &d.Indexer, &d.OutputPath, &d.AddedAt, &d.CompletedAt, &d.LastTransitionAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get download %d: %w", id, err)
	}
	return d, nil
}

// List returns downloads matching the filter, oldest first.
func (s *Store) List(f Filter) ([]*Download, error) {
	var conditions []string
	var args []any

	if f.ArtistID != nil {
		conditions = append(conditions, "artist_id = ?")
		args = append(args, *f.ArtistID)
	}
	if f.AlbumID != nil {
		conditions = append(conditions, "album_id = ?")
		args = append(args, *f.AlbumID)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Active {
		conditions = append(conditions, "status NOT IN (?, ?, ?)")
		args = append(args, StatusImported, StatusCleaned, StatusFailed)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.db.Query(`
		SELECT id, artist_id, album_id, client, client_id, status, release_name, indexer, output_path, added_at, completed_at, last_transition_at
		FROM downloads `+whereClause+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Download
	for rows.Next() {
		d := &Download{}
		if err := rows.Scan(&d.ID, &d.ArtistID, &d.AlbumID, &d.Client, &d.ClientID, &d.Status, &d.ReleaseName, &d.Indexer, &d.OutputPath, &d.AddedAt, &d.CompletedAt, &d.LastTransitionAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate downloads: %w", err)
	}
	return results, nil
}

// Transition moves a download to a new status, enforcing the state machine.
// Returns ErrInvalidTransition when the machine forbids the move.
func (s *Store) Transition(d *Download, target Status) error {
	if !d.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, target)
	}

	now := time.Now()
	var completedAt *time.Time
	if target == StatusCompleted || target == StatusImported || target == StatusPartiallyImported {
		completedAt = &now
	} else {
		completedAt = d.CompletedAt
	}

	_, err := s.db.Exec(`
		UPDATE downloads SET status = ?, completed_at = ?, last_transition_at = ? WHERE id = ?`,
		target, completedAt, now, d.ID,
	)
	if err != nil {
		return fmt.Errorf("transition download %d: %w", d.ID, err)
	}
	d.Status = target
	d.CompletedAt = completedAt
	d.LastTransitionAt = now
	return nil
}

// SetOutputPath records the completed path reported by the download client.
func (s *Store) SetOutputPath(d *Download, path string) error {
	_, err := s.db.Exec(`UPDATE downloads SET output_path = ? WHERE id = ?`, path, d.ID)
	if err != nil {
		return fmt.Errorf("set output path for download %d: %w", d.ID, err)
	}
	d.OutputPath = path
	return nil
}

// Delete removes a download record. Idempotent.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM downloads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete download %d: %w", id, err)
	}
	return nil
}
