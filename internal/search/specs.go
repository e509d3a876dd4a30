package search

import (
	"fmt"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/pkg/release"
)

// KnownArtistSpec rejects releases that resolved to no tracked artist.
type KnownArtistSpec struct{}

// NewKnownArtistSpec creates the spec.
func NewKnownArtistSpec() *KnownArtistSpec { return &KnownArtistSpec{} }

func (s *KnownArtistSpec) Name() string                { return "known-artist" }
func (s *KnownArtistSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate rejects candidates for artists the library does not track.
func (s *KnownArtistSpec) Evaluate(remote *RemoteAlbum, _ *download.ClientItem) (decision.Decision, error) {
	if remote.Artist == nil {
		return decision.Reject(decision.NewRejection(
			fmt.Sprintf("Unknown artist %q", remote.Parsed.ArtistName))), nil
	}
	return decision.Accept(), nil
}

// QualityAllowedSpec rejects releases whose quality is not in the
// artist's quality profile.
type QualityAllowedSpec struct {
	profiles map[string]*quality.Profile
}

// NewQualityAllowedSpec creates the spec over the configured profiles.
func NewQualityAllowedSpec(profiles map[string]*quality.Profile) *QualityAllowedSpec {
	return &QualityAllowedSpec{profiles: profiles}
}

func (s *QualityAllowedSpec) Name() string                { return "quality-allowed" }
func (s *QualityAllowedSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate checks the parsed quality against the profile's allow list.
func (s *QualityAllowedSpec) Evaluate(remote *RemoteAlbum, _ *download.ClientItem) (decision.Decision, error) {
	if remote.Artist == nil {
		return decision.Accept(), nil
	}
	profile, ok := s.profiles[remote.Artist.QualityProfile]
	if !ok {
		return decision.Reject(decision.NewRejection(
			fmt.Sprintf("Unknown quality profile %q", remote.Artist.QualityProfile))), nil
	}
	q := remote.Parsed.Quality.Quality
	if !profile.Allowed(q) {
		return decision.Reject(decision.NewRejection(
			fmt.Sprintf("%s is not wanted in profile %s", q, profile.Name))), nil
	}
	return decision.Accept(), nil
}

// MinSeedersSpec rejects torrents with too few seeders. Usenet releases
// always pass.
type MinSeedersSpec struct {
	minSeeders int
}

// NewMinSeedersSpec creates the spec.
func NewMinSeedersSpec(minSeeders int) *MinSeedersSpec {
	return &MinSeedersSpec{minSeeders: minSeeders}
}

func (s *MinSeedersSpec) Name() string                { return "min-seeders" }
func (s *MinSeedersSpec) Priority() decision.Priority { return decision.PriorityDefault }

// Evaluate checks reported seeders for torrent releases.
func (s *MinSeedersSpec) Evaluate(remote *RemoteAlbum, _ *download.ClientItem) (decision.Decision, error) {
	if remote.Release.Protocol != release.ProtocolTorrent || s.minSeeders <= 0 {
		return decision.Accept(), nil
	}
	if remote.Release.Seeders < s.minSeeders {
		return decision.Reject(decision.NewTemporaryRejection(
			fmt.Sprintf("Not enough seeders (%d, need %d)", remote.Release.Seeders, s.minSeeders))), nil
	}
	return decision.Accept(), nil
}

// UpgradeAllowedSpec rejects releases that would not improve on the
// album's existing files.
type UpgradeAllowedSpec struct {
	library       *library.Store
	profiles      map[string]*quality.Profile
	preferPropers bool
}

// NewUpgradeAllowedSpec creates the spec over the library store.
func NewUpgradeAllowedSpec(lib *library.Store, profiles map[string]*quality.Profile, preferPropers bool) *UpgradeAllowedSpec {
	return &UpgradeAllowedSpec{library: lib, profiles: profiles, preferPropers: preferPropers}
}

func (s *UpgradeAllowedSpec) Name() string                { return "upgrade-allowed" }
func (s *UpgradeAllowedSpec) Priority() decision.Priority { return decision.PriorityDatabase }

// Evaluate compares the candidate quality against every existing album file.
func (s *UpgradeAllowedSpec) Evaluate(remote *RemoteAlbum, _ *download.ClientItem) (decision.Decision, error) {
	if remote.Artist == nil || remote.Album == nil {
		return decision.Accept(), nil
	}
	profile, ok := s.profiles[remote.Artist.QualityProfile]
	if !ok {
		return decision.Accept(), nil
	}

	files, err := s.library.ListFiles(library.FileFilter{AlbumID: &remote.Album.ID})
	if err != nil {
		return decision.Decision{}, err
	}

	for _, f := range files {
		if !profile.IsUpgrade(f.Quality, remote.Parsed.Quality, s.preferPropers) {
			return decision.Reject(decision.NewRejection(fmt.Sprintf(
				"Existing file %s is not upgraded by %s", f.Quality, remote.Parsed.Quality))), nil
		}
	}
	return decision.Accept(), nil
}
