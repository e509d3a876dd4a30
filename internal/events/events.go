// Package events provides a typed in-process event bus for the
// download and import pipeline.
package events

// Event type names.
const (
	TypeDownloadGrabbed   = "download.grabbed"
	TypeDownloadCompleted = "download.completed"
	TypeImportStarted     = "import.started"
	TypeImportCompleted   = "import.completed"
	TypeImportFailed      = "import.failed"
)

// DownloadGrabbed is emitted when a release is sent to a download client.
type DownloadGrabbed struct {
	BaseEvent
	ArtistID int64  `json:"artist_id"`
	AlbumID  *int64 `json:"album_id,omitempty"`
	Title    string `json:"title"`
	Indexer  string `json:"indexer"`
	GUID     string `json:"guid"`
}

// NewDownloadGrabbed builds the event for a download row.
func NewDownloadGrabbed(downloadID, artistID int64, albumID *int64, title, indexer, guid string) *DownloadGrabbed {
	return &DownloadGrabbed{
		BaseEvent: NewBaseEvent(TypeDownloadGrabbed, "download", downloadID),
		ArtistID:  artistID,
		AlbumID:   albumID,
		Title:     title,
		Indexer:   indexer,
		GUID:      guid,
	}
}

// DownloadCompleted is emitted when a download client reports a finished download.
type DownloadCompleted struct {
	BaseEvent
	OutputPath string `json:"output_path"`
}

// NewDownloadCompleted builds the event for a download row.
func NewDownloadCompleted(downloadID int64, outputPath string) *DownloadCompleted {
	return &DownloadCompleted{
		BaseEvent:  NewBaseEvent(TypeDownloadCompleted, "download", downloadID),
		OutputPath: outputPath,
	}
}

// ImportStarted is emitted when import of a completed download begins.
type ImportStarted struct {
	BaseEvent
	SourcePath string `json:"source_path"`
}

// NewImportStarted builds the event for a download row.
func NewImportStarted(downloadID int64, sourcePath string) *ImportStarted {
	return &ImportStarted{
		BaseEvent:  NewBaseEvent(TypeImportStarted, "download", downloadID),
		SourcePath: sourcePath,
	}
}

// TrackImportResult tracks the outcome of importing a single track file.
type TrackImportResult struct {
	TrackNumber int    `json:"track_number"`
	Success     bool   `json:"success"`
	FilePath    string `json:"file_path,omitempty"` // Empty if failed
	Error       string `json:"error,omitempty"`     // Empty if success
}

// ImportCompleted is emitted when an import finishes with at least one
// imported file.
type ImportCompleted struct {
	BaseEvent
	ArtistID     int64               `json:"artist_id"`
	AlbumID      int64               `json:"album_id"`
	TrackResults []TrackImportResult `json:"track_results,omitempty"`
	TotalSize    int64               `json:"total_size"`
}

// NewImportCompleted builds the event for a download row.
func NewImportCompleted(downloadID, artistID, albumID int64, results []TrackImportResult, totalSize int64) *ImportCompleted {
	return &ImportCompleted{
		BaseEvent:    NewBaseEvent(TypeImportCompleted, "download", downloadID),
		ArtistID:     artistID,
		AlbumID:      albumID,
		TrackResults: results,
		TotalSize:    totalSize,
	}
}

// AllSucceeded returns true if every track import succeeded.
func (e *ImportCompleted) AllSucceeded() bool {
	for _, r := range e.TrackResults {
		if !r.Success {
			return false
		}
	}
	return true
}

// SuccessCount returns the number of successfully imported tracks.
func (e *ImportCompleted) SuccessCount() int {
	count := 0
	for _, r := range e.TrackResults {
		if r.Success {
			count++
		}
	}
	return count
}

// ImportFailed is emitted when an import produces no files.
type ImportFailed struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewImportFailed builds the event for a download row.
func NewImportFailed(downloadID int64, reason string) *ImportFailed {
	return &ImportFailed{
		BaseEvent: NewBaseEvent(TypeImportFailed, "download", downloadID),
		Reason:    reason,
	}
}
