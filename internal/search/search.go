// Package search runs the release decision pipeline: it fans out to
// indexers, resolves candidates against the library, weighs them, and
// hands winning releases to the grab gateway.
package search

import (
	"context"
	"log/slog"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/pkg/release"
)

// RemoteAlbum is the unit the download decision chain operates on: a raw
// release plus its parsed title and the library entities it resolved to.
type RemoteAlbum struct {
	Release release.Info
	Parsed  *release.ParsedAlbumInfo
	Artist  *library.Artist // nil when no artist matched
	Album   *library.Album  // nil when no album matched

	// QualityWeight orders candidates by profile rank and revision.
	QualityWeight int
	// ReleaseWeight is the candidate's position in the raw input,
	// used as the final stable tie-break.
	ReleaseWeight int
}

// DownloadDecision is one evaluated candidate. Rejected candidates are
// retained, annotated with every reason, so callers can explain skips.
type DownloadDecision struct {
	Remote     *RemoteAlbum
	Rejections []decision.Rejection
}

// Approved reports whether the candidate passed every check.
func (d *DownloadDecision) Approved() bool {
	return len(d.Rejections) == 0
}

// TemporarilyRejected reports whether every rejection is transient.
func (d *DownloadDecision) TemporarilyRejected() bool {
	if len(d.Rejections) == 0 {
		return false
	}
	for _, r := range d.Rejections {
		if r.Type != decision.RejectionTemporary {
			return false
		}
	}
	return true
}

// MetadataResolver maps parsed release fields to library entities.
// *Resolver over a library store is the production implementation.
type MetadataResolver interface {
	ResolveArtist(name string) (*library.Artist, error)
	ResolveAlbum(artistID int64, title string) (*library.Album, error)
}

// Resolver resolves against the local library.
type Resolver struct {
	library *library.Store
}

// NewResolver creates a library-backed metadata resolver.
func NewResolver(lib *library.Store) *Resolver {
	return &Resolver{library: lib}
}

// ResolveArtist finds a tracked artist by name, nil when unknown.
func (r *Resolver) ResolveArtist(name string) (*library.Artist, error) {
	if name == "" {
		return nil, nil
	}
	return r.library.FindArtistByName(name)
}

// ResolveAlbum finds the artist's album best matching the parsed title,
// nil when nothing matches with usable confidence.
func (r *Resolver) ResolveAlbum(artistID int64, title string) (*library.Album, error) {
	if title == "" {
		return nil, nil
	}
	albums, err := r.library.ListAlbums(library.AlbumFilter{ArtistID: &artistID})
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, nil
	}

	titles := make([]string, len(albums))
	for i, a := range albums {
		titles[i] = a.Title
	}
	result := release.MatchTitle(title, titles)
	if result.Confidence == release.ConfidenceNone {
		return nil, nil
	}
	for _, a := range albums {
		if a.Title == result.Title {
			return a, nil
		}
	}
	return nil, nil
}

// Maker evaluates raw releases into ordered download decisions.
type Maker struct {
	engine   *decision.Engine[*RemoteAlbum]
	resolver MetadataResolver
	profiles map[string]*quality.Profile
	fetcher  *Fetcher
	log      *slog.Logger
}

// NewMaker wires the download decision chain.
func NewMaker(
	specs []decision.Specification[*RemoteAlbum],
	resolver MetadataResolver,
	profiles map[string]*quality.Profile,
	fetcher *Fetcher,
	log *slog.Logger,
) *Maker {
	if log == nil {
		log = slog.Default()
	}
	return &Maker{
		engine:   decision.NewEngine(log, specs...),
		resolver: resolver,
		profiles: profiles,
		fetcher:  fetcher,
		log:      log,
	}
}

// GetRssDecision evaluates a raw RSS batch. Every input release yields a
// decision; none are discarded.
func (m *Maker) GetRssDecision(ctx context.Context, releases []release.Info) []*DownloadDecision {
	decisions := make([]*DownloadDecision, 0, len(releases))
	for i, rel := range releases {
		decisions = append(decisions, m.decide(ctx, rel, i, nil, nil))
	}
	return decisions
}

// AlbumSearch queries all indexers for one album and evaluates the results.
func (m *Maker) AlbumSearch(ctx context.Context, artist *library.Artist, album *library.Album) ([]*DownloadDecision, error) {
	query := release.NormalizeSearchQuery(artist.Name + " " + album.Title)
	found, err := m.fetcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	decisions := make([]*DownloadDecision, 0, len(found))
	for i, rel := range found {
		decisions = append(decisions, m.decide(ctx, rel, i, artist, album))
	}
	return decisions, nil
}

// ArtistSearch queries all indexers for anything by one artist.
func (m *Maker) ArtistSearch(ctx context.Context, artist *library.Artist) ([]*DownloadDecision, error) {
	query := release.NormalizeSearchQuery(artist.Name)
	found, err := m.fetcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	decisions := make([]*DownloadDecision, 0, len(found))
	for i, rel := range found {
		decisions = append(decisions, m.decide(ctx, rel, i, artist, nil))
	}
	return decisions, nil
}

// decide builds the RemoteAlbum for one release and runs the chain.
func (m *Maker) decide(ctx context.Context, rel release.Info, position int, artist *library.Artist, album *library.Album) *DownloadDecision {
	remote := &RemoteAlbum{
		Release:       rel,
		Parsed:        release.Parse(rel.Title),
		Artist:        artist,
		Album:         album,
		ReleaseWeight: position,
	}

	var rejections []decision.Rejection

	if remote.Artist == nil {
		found, err := m.resolver.ResolveArtist(remote.Parsed.ArtistName)
		if err != nil {
			m.log.Error("artist resolution failed", "title", rel.Title, "error", err)
			// A resolver outage says nothing about the release itself.
			// Stop here so the transient rejection is not shadowed by a
			// permanent unknown-artist verdict from the chain.
			return &DownloadDecision{Remote: remote, Rejections: []decision.Rejection{
				decision.NewTemporaryRejection("Unable to resolve artist"),
			}}
		}
		remote.Artist = found
	}
	if remote.Artist != nil && remote.Album == nil && remote.Parsed.AlbumTitle != "" {
		found, err := m.resolver.ResolveAlbum(remote.Artist.ID, remote.Parsed.AlbumTitle)
		if err != nil {
			m.log.Error("album resolution failed", "title", rel.Title, "error", err)
			rejections = append(rejections,
				decision.NewTemporaryRejection("Unable to resolve album"))
		} else {
			remote.Album = found
		}
	}

	if remote.Artist != nil {
		if profile, ok := m.profiles[remote.Artist.QualityProfile]; ok {
			remote.QualityWeight = profile.Weight(remote.Parsed.Quality)
		}
	}

	// No tracked download exists yet at search time.
	rejections = append(rejections, m.engine.Evaluate(remote, nil)...)
	return &DownloadDecision{Remote: remote, Rejections: rejections}
}
