// Package identify matches scanned local files to library artists and albums.
package identify

import (
	"time"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/pkg/release"
)

// Tags holds metadata read from a media file. A zero Tags is valid and
// means the file carried no usable metadata.
type Tags struct {
	Artist      string
	Album       string
	Title       string
	TrackNumber int
	Year        int
}

// Empty reports whether the tags carry no usable identification data.
func (t Tags) Empty() bool {
	return t.Artist == "" && t.Album == "" && t.Title == ""
}

// TagReader reads metadata tags from a media file. Implementations should
// return an error only for I/O-level failures; files without tags should
// come back as empty Tags.
type TagReader interface {
	ReadTags(path string) (Tags, error)
}

// LocalTrack is a file discovered on disk plus its read tags and
// accumulated rejections. Created during a scan; discarded after import.
type LocalTrack struct {
	Path         string
	Size         int64
	ModTime      time.Time
	Tags         Tags
	TrackInfo    *release.TrackInfo
	Quality      release.QualityModel
	ExistingFile bool // already inside the library tree
	Rejections   []decision.Rejection
}

// Reject appends a rejection to the track.
func (t *LocalTrack) Reject(r decision.Rejection) {
	t.Rejections = append(t.Rejections, r)
}

// LocalAlbumRelease is a grouping of local tracks believed to belong to
// one album release, with its distance from the matched candidate.
type LocalAlbumRelease struct {
	Artist      *library.Artist // nil when no artist could be resolved
	Album       *library.Album  // nil when no candidate album matched
	Tracks      []*LocalTrack
	Distance    Distance
	NewDownload bool // freshly grabbed vs already resident in the library
}

// Title returns the matched album title, or the first track's album tag
// when no album was matched.
func (r *LocalAlbumRelease) Title() string {
	if r.Album != nil {
		return r.Album.Title
	}
	for _, t := range r.Tracks {
		if t.Tags.Album != "" {
			return t.Tags.Album
		}
	}
	return "unknown"
}
