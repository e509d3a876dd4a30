package importer

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Event types for history records.
const (
	EventGrabbed  = "grabbed"
	EventImported = "imported"
	EventDeleted  = "deleted"
	EventUpgraded = "upgraded"
	EventFailed   = "failed"
)

// HistoryEntry represents a history record.
type HistoryEntry struct {
	ID         int64
	ArtistID   int64
	AlbumID    *int64
	Event      string
	DownloadID string // download client id, empty for manual operations
	Data       string // JSON blob
	CreatedAt  time.Time
}

// HistoryFilter specifies criteria for listing history.
type HistoryFilter struct {
	ArtistID *int64
	AlbumID  *int64
	Event    *string
	Limit    int
}

// HistoryStore persists history records.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a history store.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Add inserts a new history entry.
func (s *HistoryStore) Add(h *HistoryEntry) error {
	now := time.Now()
	if h.Data == "" {
		h.Data = "{}"
	}
	result, err := s.db.Exec(`
		INSERT INTO history (artist_id, album_id, event, download_id, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ArtistID, h.AlbumID, h.Event, h.DownloadID, h.Data, now,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	h.ID = id
	h.CreatedAt = now
	return nil
}

// List returns history entries matching the filter, most recent first.
func (s *HistoryStore) List(f HistoryFilter) ([]*HistoryEntry, error) {
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
	if f.Event != nil {
		conditions = append(conditions, "event = ?")
		args = append(args, *f.Event)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, artist_id, album_id, event, download_id, data, created_at
		FROM history ` + whereClause + ` ORDER BY created_at DESC, id DESC`

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*HistoryEntry
	for rows.Next() {
		h := &HistoryEntry{}
		if err := rows.Scan(&h.ID, &h.ArtistID, &h.AlbumID, &h.Event, &h.DownloadID, &h.Data, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return results, nil
}

// MostRecentByAlbum returns the most recent entry of the given event type
// for an album, or nil when the album has no such event.
func (s *HistoryStore) MostRecentByAlbum(albumID int64, event string) (*HistoryEntry, error) {
	entries, err := s.List(HistoryFilter{AlbumID: &albumID, Event: &event, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}
