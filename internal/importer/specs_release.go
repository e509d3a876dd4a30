package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/identify"
)

// closeMatchThreshold is the maximum normalized distance at which a
// candidate album grouping is still considered a match.
const closeMatchThreshold = 0.20

// ArtistPathSpec rejects groups whose destination artist path is not
// inside any configured root folder. For brand-new artists without a
// library path, the path is inferred from the file location.
type ArtistPathSpec struct {
	rootFolders []string
}

// NewArtistPathSpec creates the spec over the configured root folders.
func NewArtistPathSpec(rootFolders []string) *ArtistPathSpec {
	return &ArtistPathSpec{rootFolders: rootFolders}
}

func (s *ArtistPathSpec) Name() string                { return "artist-path" }
func (s *ArtistPathSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate checks the destination path against the configured root folders.
func (s *ArtistPathSpec) Evaluate(rel *identify.LocalAlbumRelease, _ *download.ClientItem) (decision.Decision, error) {
	path := ""
	if rel.Artist != nil && rel.Artist.Path != "" {
		path = rel.Artist.Path
	} else if len(rel.Tracks) > 0 {
		path = filepath.Dir(rel.Tracks[0].Path)
	}
	if path == "" {
		return decision.Reject(decision.NewRejection("No destination path could be determined")), nil
	}

	for _, root := range s.rootFolders {
		if isInsideFolder(root, path) {
			return decision.Accept(), nil
		}
	}
	return decision.Reject(decision.NewRejection(
		fmt.Sprintf("Path %s is not inside a configured root folder", path))), nil
}

// isInsideFolder reports whether path is root or lives under it.
func isInsideFolder(root, path string) bool {
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)
	if cleanPath == cleanRoot {
		return true
	}
	return strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator))
}

// historyLookup is the slice of HistoryStore the AlreadyImportedSpec needs.
type historyLookup interface {
	MostRecentByAlbum(albumID int64, event string) (*HistoryEntry, error)
}

// AlreadyImportedSpec rejects exact duplicate imports of the same grab.
// A newer grab event after the last import means a deliberate re-grab and
// is accepted. Matching relies on download-id equality only; two grabs of
// identical content under different download ids pass this check and fall
// through to the size heuristic in SameFileSpec.
type AlreadyImportedSpec struct {
	history historyLookup
}

// NewAlreadyImportedSpec creates the spec over the history store.
func NewAlreadyImportedSpec(history historyLookup) *AlreadyImportedSpec {
	return &AlreadyImportedSpec{history: history}
}

func (s *AlreadyImportedSpec) Name() string                { return "already-imported" }
func (s *AlreadyImportedSpec) Priority() decision.Priority { return decision.PriorityDatabase }

// Evaluate checks history for a previous import of the same download.
func (s *AlreadyImportedSpec) Evaluate(rel *identify.LocalAlbumRelease, dl *download.ClientItem) (decision.Decision, error) {
	// No download client context: evaluating pre-existing library files.
	if dl == nil || rel.Album == nil {
		return decision.Accept(), nil
	}

	imported, err := s.history.MostRecentByAlbum(rel.Album.ID, EventImported)
	if err != nil {
		return decision.Decision{}, err
	}
	if imported == nil {
		return decision.Accept(), nil
	}

	grabbed, err := s.history.MostRecentByAlbum(rel.Album.ID, EventGrabbed)
	if err != nil {
		return decision.Decision{}, err
	}
	if grabbed != nil && grabbed.CreatedAt.After(imported.CreatedAt) {
		// Deliberate re-grab since the last import.
		return decision.Accept(), nil
	}

	if imported.DownloadID != "" && imported.DownloadID == dl.DownloadID {
		return decision.Reject(decision.NewRejection(
			"Album was already imported from this download")), nil
	}
	return decision.Accept(), nil
}

// CloseMatchSpec rejects groups whose identification distance exceeds the
// matching threshold. Files already resident in the library are compared
// with the missing/unmatched components excluded so known gaps in a
// partial library do not count against the match.
type CloseMatchSpec struct{}

// NewCloseMatchSpec creates the spec.
func NewCloseMatchSpec() *CloseMatchSpec { return &CloseMatchSpec{} }

func (s *CloseMatchSpec) Name() string                { return "close-match" }
func (s *CloseMatchSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate compares the group's distance to the threshold.
func (s *CloseMatchSpec) Evaluate(rel *identify.LocalAlbumRelease, _ *download.ClientItem) (decision.Decision, error) {
	var dist float64
	if rel.NewDownload {
		dist = rel.Distance.NormalizedDistance()
	} else {
		dist = rel.Distance.DistanceExcluding(
			identify.ComponentMissingTracks, identify.ComponentUnmatchedTracks)
	}

	if dist > closeMatchThreshold {
		return decision.Reject(decision.NewRejection(
			fmt.Sprintf("Album match is not close enough (distance %.2f)", dist))), nil
	}
	return decision.Accept(), nil
}
