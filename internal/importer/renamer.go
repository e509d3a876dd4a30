package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/library"
)

// Renamer builds destination paths for imported tracks following the
// fixed layout <artist path>/<album title> (<year>)/<nn> - <title>.<ext>.
type Renamer struct{}

// DestinationPath returns the library path a track should be copied to.
// The result is always inside the artist folder.
func (Renamer) DestinationPath(artist *library.Artist, album *library.Album, track *identify.LocalTrack) (string, error) {
	if artist == nil || artist.Path == "" {
		return "", fmt.Errorf("artist has no path")
	}

	albumFolder := SanitizeFilename(album.Title)
	if album.Year > 0 {
		albumFolder = fmt.Sprintf("%s (%d)", albumFolder, album.Year)
	}

	dst := filepath.Join(artist.Path, albumFolder, trackFilename(track))
	if err := ValidatePath(dst, artist.Path); err != nil {
		return "", err
	}
	return dst, nil
}

// trackFilename builds "<nn> - <title>.<ext>" from tags, falling back to
// the source basename when tags are missing.
func trackFilename(track *identify.LocalTrack) string {
	ext := strings.ToLower(filepath.Ext(track.Path))

	number := 0
	if track.TrackInfo != nil {
		number = track.TrackInfo.TrackNumber
	}
	if number == 0 {
		number = track.Tags.TrackNumber
	}

	title := track.Tags.Title
	if title == "" && track.TrackInfo != nil {
		title = track.TrackInfo.Title
	}
	if title == "" {
		base := filepath.Base(track.Path)
		return SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base))) + ext
	}

	if number > 0 {
		return fmt.Sprintf("%02d - %s%s", number, SanitizeFilename(title), ext)
	}
	return SanitizeFilename(title) + ext
}
