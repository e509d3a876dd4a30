package identify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
)

// FileTagReader reads metadata from audio files on disk.
type FileTagReader struct{}

// ReadTags reads the embedded tags of one audio file. A file without
// recognizable tags yields empty Tags, not an error.
func (FileTagReader) ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) || errors.Is(err, io.EOF) {
			return Tags{}, nil
		}
		return Tags{}, fmt.Errorf("read tags %s: %w", path, err)
	}

	artist := meta.AlbumArtist()
	if artist == "" {
		artist = meta.Artist()
	}

	trackNumber, _ := meta.Track()
	return Tags{
		Artist:      artist,
		Album:       meta.Album(),
		Title:       meta.Title(),
		TrackNumber: trackNumber,
		Year:        meta.Year(),
	}, nil
}
