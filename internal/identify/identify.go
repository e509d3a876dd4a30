package identify

import (
	"log/slog"
	"math"
	"path/filepath"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/pkg/release"
)

// AlbumSource supplies library lookups during identification.
// *library.Store satisfies it.
type AlbumSource interface {
	FindArtistByName(name string) (*library.Artist, error)
	ListAlbums(f library.AlbumFilter) ([]*library.Album, error)
	ListFiles(f library.FileFilter) ([]*library.TrackFile, error)
}

// Options control an identification run.
type Options struct {
	// NewDownload marks the files as freshly grabbed rather than a
	// rescan of resident library files. It changes which import
	// specifications apply and how strict matching is.
	NewDownload bool
	// SingleRelease constrains grouping to assume all input files
	// belong to exactly one release (manual "assign to this album").
	SingleRelease bool
	// IncludeExisting folds files already linked to the candidate album
	// into missing-track accounting.
	IncludeExisting bool
}

// Service groups scanned files into candidate album releases and scores
// them against the library.
type Service struct {
	source AlbumSource
	tags   TagReader
	log    *slog.Logger
}

// NewService creates an identification service.
func NewService(source AlbumSource, tags TagReader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{source: source, tags: tags, log: log}
}

// Identify reads tags for the given tracks, groups them into candidate
// releases, and matches each group against the library. artist and album
// are optional overrides from manual import; pass nil to resolve from tags.
// A file with unreadable tags still becomes a LocalTrack carrying a
// rejection rather than failing the batch.
func (s *Service) Identify(tracks []*LocalTrack, artist *library.Artist, album *library.Album, opts Options) ([]*LocalAlbumRelease, error) {
	for _, track := range tracks {
		tags, err := s.tags.ReadTags(track.Path)
		if err != nil {
			s.log.Error("tag read failed", "path", track.Path, "error", err)
			track.Tags = Tags{}
			track.Reject(decision.NewTemporaryRejection("Unable to read file tags"))
			continue
		}
		track.Tags = tags
		if track.TrackInfo == nil {
			track.TrackInfo = release.ParseFilename(track.Path)
		}
		if track.Quality.Quality == release.QualityUnknown {
			track.Quality = track.TrackInfo.Quality
		}
	}

	groups := s.group(tracks, opts)

	releases := make([]*LocalAlbumRelease, 0, len(groups))
	for _, group := range groups {
		rel := &LocalAlbumRelease{
			Tracks:      group,
			NewDownload: opts.NewDownload,
		}
		if err := s.match(rel, artist, album, opts); err != nil {
			return nil, err
		}
		releases = append(releases, rel)
	}

	s.log.Debug("identification complete", "tracks", len(tracks), "releases", len(releases))
	return releases, nil
}

// group splits tracks into candidate releases by album tag, falling back
// to the parent directory for untagged files.
func (s *Service) group(tracks []*LocalTrack, opts Options) [][]*LocalTrack {
	if opts.SingleRelease || len(tracks) == 0 {
		if len(tracks) == 0 {
			return nil
		}
		return [][]*LocalTrack{tracks}
	}

	keyed := make(map[string][]*LocalTrack)
	var order []string
	for _, track := range tracks {
		key := release.CleanTitle(track.Tags.Album)
		if key == "" {
			key = "dir:" + filepath.Dir(track.Path)
		}
		if _, seen := keyed[key]; !seen {
			order = append(order, key)
		}
		keyed[key] = append(keyed[key], track)
	}

	groups := make([][]*LocalTrack, 0, len(order))
	for _, key := range order {
		groups = append(groups, keyed[key])
	}
	return groups
}

// match resolves the artist and best candidate album for a group and
// computes its distance.
func (s *Service) match(rel *LocalAlbumRelease, artistOverride *library.Artist, albumOverride *library.Album, opts Options) error {
	tagArtist, tagAlbum := groupTags(rel.Tracks)

	artist := artistOverride
	if artist == nil && tagArtist != "" {
		found, err := s.source.FindArtistByName(tagArtist)
		if err != nil {
			return err
		}
		artist = found
	}
	rel.Artist = artist

	album := albumOverride
	if album == nil && artist != nil {
		candidates, err := s.source.ListAlbums(library.AlbumFilter{ArtistID: &artist.ID})
		if err != nil {
			return err
		}
		album = bestAlbum(tagAlbum, candidates)
	}
	rel.Album = album

	rel.Distance = s.distance(rel, tagArtist, tagAlbum, opts)
	return nil
}

// distance computes the dissimilarity between a track group and its
// candidate album.
func (s *Service) distance(rel *LocalAlbumRelease, tagArtist, tagAlbum string, opts Options) Distance {
	var d Distance

	if rel.Artist == nil {
		d.Add(ComponentArtist, 1.0)
	} else if tagArtist != "" {
		d.Add(ComponentArtist, 1.0-release.Similarity(tagArtist, rel.Artist.Name))
	}

	if rel.Album == nil {
		d.Add(ComponentAlbum, 1.0)
		return d
	}
	if tagAlbum != "" {
		d.Add(ComponentAlbum, 1.0-release.Similarity(tagAlbum, rel.Album.Title))
	}

	matched := matchedTrackNumbers(rel.Tracks)
	if opts.IncludeExisting {
		existing, err := s.source.ListFiles(library.FileFilter{AlbumID: &rel.Album.ID})
		if err != nil {
			s.log.Warn("listing existing files failed", "album_id", rel.Album.ID, "error", err)
		} else {
			for _, f := range existing {
				if f.TrackNumber > 0 {
					matched[f.TrackNumber] = true
				}
			}
		}
	}

	if rel.Album.TrackCount > 0 {
		count := float64(len(rel.Tracks))
		expected := float64(rel.Album.TrackCount)
		d.Add(ComponentTracks, math.Abs(count-expected)/math.Max(count, expected))

		missing := rel.Album.TrackCount - len(matched)
		if missing < 0 {
			missing = 0
		}
		d.Add(ComponentMissingTracks, float64(missing)/expected)
	}

	unmatched := 0
	for _, track := range rel.Tracks {
		if trackNumber(track) == 0 {
			unmatched++
		}
	}
	if len(rel.Tracks) > 0 {
		d.Add(ComponentUnmatchedTracks, float64(unmatched)/float64(len(rel.Tracks)))
	}

	return d
}

// groupTags returns the first non-empty artist and album tag in a group.
func groupTags(tracks []*LocalTrack) (artist, album string) {
	for _, track := range tracks {
		if artist == "" && track.Tags.Artist != "" {
			artist = track.Tags.Artist
		}
		if album == "" && track.Tags.Album != "" {
			album = track.Tags.Album
		}
		if artist != "" && album != "" {
			break
		}
	}
	return artist, album
}

// bestAlbum picks the candidate album whose title best matches the tag.
func bestAlbum(tagAlbum string, candidates []*library.Album) *library.Album {
	if len(candidates) == 0 {
		return nil
	}
	if tagAlbum == "" {
		return nil
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	result := release.MatchTitle(tagAlbum, titles)
	if result.Confidence == release.ConfidenceNone {
		return nil
	}
	for _, c := range candidates {
		if c.Title == result.Title {
			return c
		}
	}
	return nil
}

func matchedTrackNumbers(tracks []*LocalTrack) map[int]bool {
	matched := make(map[int]bool)
	for _, track := range tracks {
		if n := trackNumber(track); n > 0 {
			matched[n] = true
		}
	}
	return matched
}

func trackNumber(track *LocalTrack) int {
	if track.Tags.TrackNumber > 0 {
		return track.Tags.TrackNumber
	}
	if track.TrackInfo != nil {
		return track.TrackInfo.TrackNumber
	}
	return 0
}
