package importer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/pkg/release"
)

// FileItem is the unit file-level specifications evaluate: one local
// track plus the release group it belongs to.
type FileItem struct {
	Track   *identify.LocalTrack
	Release *identify.LocalAlbumRelease
}

// unpackingWindow is how recently a file must have been written on
// Windows for a working-folder match to count. Slow unpack tools hold
// locks well past the write, so older files are assumed fully unpacked.
const unpackingWindow = 5 * time.Minute

// NotUnpackingSpec rejects files that still live inside a download
// client's working/incomplete folder.
type NotUnpackingSpec struct {
	workingFolders []string
	log            *slog.Logger
}

// NewNotUnpackingSpec creates the spec over the configured working folder names.
func NewNotUnpackingSpec(workingFolders []string, log *slog.Logger) *NotUnpackingSpec {
	if log == nil {
		log = slog.Default()
	}
	return &NotUnpackingSpec{workingFolders: workingFolders, log: log}
}

func (s *NotUnpackingSpec) Name() string                { return "not-unpacking" }
func (s *NotUnpackingSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate checks the file's ancestor directories against working folder names.
func (s *NotUnpackingSpec) Evaluate(item *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	if item.Track.ExistingFile {
		return decision.Accept(), nil
	}

	dir := filepath.Dir(item.Track.Path)
	for _, folder := range s.workingFolders {
		if !ancestorMatches(dir, folder) {
			continue
		}
		if runtime.GOOS == "windows" {
			if time.Since(item.Track.ModTime) < unpackingWindow {
				return decision.Reject(decision.NewTemporaryRejection(
					fmt.Sprintf("File is still being unpacked (inside %s)", folder))), nil
			}
			s.log.Debug("working folder match ignored, file is old", "path", item.Track.Path, "folder", folder)
			continue
		}
		return decision.Reject(decision.NewTemporaryRejection(
			fmt.Sprintf("File is in a working folder (%s)", folder))), nil
	}
	return decision.Accept(), nil
}

// ancestorMatches reports whether any path element of dir contains name.
func ancestorMatches(dir, name string) bool {
	for _, elem := range strings.Split(filepath.Clean(dir), string(filepath.Separator)) {
		if elem != "" && strings.Contains(strings.ToLower(elem), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// DiskProvider supplies file-system information the specifications need.
type DiskProvider interface {
	// AvailableSpace returns the free bytes at the given path.
	AvailableSpace(path string) (int64, error)
}

// FreeSpaceSpec rejects files that would leave less than the configured
// minimum free space at the destination. Indeterminate free space is
// treated as acceptance (fail open) but logged.
type FreeSpaceSpec struct {
	disk    DiskProvider
	minFree int64
	skip    bool
	log     *slog.Logger
}

// NewFreeSpaceSpec creates the spec. minFree is the configured minimum
// free space in bytes; skip disables the check entirely.
func NewFreeSpaceSpec(disk DiskProvider, minFree int64, skip bool, log *slog.Logger) *FreeSpaceSpec {
	if log == nil {
		log = slog.Default()
	}
	return &FreeSpaceSpec{disk: disk, minFree: minFree, skip: skip, log: log}
}

func (s *FreeSpaceSpec) Name() string                { return "free-space" }
func (s *FreeSpaceSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate compares available space at the destination against the file size.
func (s *FreeSpaceSpec) Evaluate(item *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	if s.skip || item.Track.ExistingFile {
		return decision.Accept(), nil
	}
	if item.Release.Artist == nil || item.Release.Artist.Path == "" {
		return decision.Accept(), nil
	}

	// Probe the parent of the artist folder: the artist folder itself may
	// not exist yet for a first import.
	target := filepath.Dir(item.Release.Artist.Path)
	free, err := s.disk.AvailableSpace(target)
	if err != nil {
		s.log.Warn("unable to determine free space", "path", target, "error", err)
		return decision.Accept(), nil
	}

	if free < item.Track.Size+s.minFree {
		return decision.Reject(decision.NewTemporaryRejection(
			fmt.Sprintf("Not enough free space (%d bytes available, need %d)", free, item.Track.Size+s.minFree))), nil
	}
	return decision.Accept(), nil
}

// fileLookup is the slice of library.Store the file specs need.
type fileLookup interface {
	ListFiles(f library.FileFilter) ([]*library.TrackFile, error)
}

// SameFileSpec rejects files whose size exactly matches an existing file
// of the target album. This is a fast, heuristic, non-hash duplicate
// check: equal-size different content is a false positive and a
// re-encode of the same content passes it.
type SameFileSpec struct {
	files fileLookup
}

// NewSameFileSpec creates the spec over the library file store.
func NewSameFileSpec(files fileLookup) *SameFileSpec {
	return &SameFileSpec{files: files}
}

func (s *SameFileSpec) Name() string                { return "same-file" }
func (s *SameFileSpec) Priority() decision.Priority { return decision.PriorityDatabase }

// Evaluate compares the candidate size against every existing album file.
func (s *SameFileSpec) Evaluate(item *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	if item.Release.Album == nil {
		return decision.Accept(), nil
	}

	existing, err := s.files.ListFiles(library.FileFilter{AlbumID: &item.Release.Album.ID})
	if err != nil {
		return decision.Decision{}, err
	}
	for _, f := range existing {
		if f.SizeBytes == item.Track.Size {
			return decision.Reject(decision.NewRejection(
				"Has the same filesize as existing file")), nil
		}
	}
	return decision.Accept(), nil
}

// UpgradeSpec rejects files that would not improve on the album's
// existing files under the artist's quality profile.
type UpgradeSpec struct {
	files         fileLookup
	profiles      map[string]*quality.Profile
	preferPropers bool
}

// NewUpgradeSpec creates the spec. profiles maps profile names to their
// definitions; preferPropers controls whether a newer revision at the same
// quality tier counts as an upgrade.
func NewUpgradeSpec(files fileLookup, profiles map[string]*quality.Profile, preferPropers bool) *UpgradeSpec {
	return &UpgradeSpec{files: files, profiles: profiles, preferPropers: preferPropers}
}

func (s *UpgradeSpec) Name() string                { return "upgrade" }
func (s *UpgradeSpec) Priority() decision.Priority { return decision.PriorityDatabase }

// Evaluate compares the candidate quality against every existing album file.
func (s *UpgradeSpec) Evaluate(item *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	if item.Release.Album == nil || item.Release.Artist == nil {
		// Nothing to upgrade over; also guards brand-new entities whose
		// profile is not resolvable yet.
		return decision.Accept(), nil
	}

	existing, err := s.files.ListFiles(library.FileFilter{AlbumID: &item.Release.Album.ID})
	if err != nil {
		return decision.Decision{}, err
	}
	if len(existing) == 0 {
		return decision.Accept(), nil
	}

	profile, ok := s.profiles[item.Release.Artist.QualityProfile]
	if !ok {
		return decision.Accept(), nil
	}

	candidate := item.Track.Quality
	candidateRank := profile.Rank(candidate.Quality)

	for _, f := range existing {
		existingRank := profile.Rank(f.Quality.Quality)
		if existingRank > candidateRank {
			return decision.Reject(decision.NewRejection(fmt.Sprintf(
				"Existing file has higher quality (%s vs %s)", f.Quality, candidate))), nil
		}
		if existingRank != candidateRank {
			continue
		}
		cmp := compareRevision(f.Quality.Revision, candidate.Revision)
		if !s.preferPropers {
			// Propers not preferred: any revision difference at the same
			// tier is acceptable, only an identical copy is not.
			if cmp == 0 {
				return decision.Reject(decision.NewRejection(
					"Existing file has the same quality")), nil
			}
			continue
		}
		if cmp >= 0 {
			return decision.Reject(decision.NewRejection(fmt.Sprintf(
				"Existing file has an equal or newer revision (%s vs %s)", f.Quality, candidate))), nil
		}
	}
	return decision.Accept(), nil
}

// compareRevision orders revisions: real propers first, then version.
func compareRevision(a, b release.Revision) int {
	if a.Real != b.Real {
		if a.Real > b.Real {
			return 1
		}
		return -1
	}
	if a.Version != b.Version {
		if a.Version > b.Version {
			return 1
		}
		return -1
	}
	return 0
}
