package importer

import (
	"log/slog"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/identify"
)

// ImportDecision is the verdict for a single local track.
type ImportDecision struct {
	Track      *identify.LocalTrack
	Release    *identify.LocalAlbumRelease
	Rejections []decision.Rejection
}

// Approved reports whether the track passed every check.
func (d *ImportDecision) Approved() bool {
	return len(d.Rejections) == 0
}

// DecisionMaker evaluates identified releases in two tiers: release-level
// specifications run once per album release, and only when the release is
// approved do the file-level specifications run for its members. A rejected
// release rejects every member without touching the file tier.
type DecisionMaker struct {
	releaseEngine *decision.Engine[*identify.LocalAlbumRelease]
	fileEngine    *decision.Engine[*FileItem]
	log           *slog.Logger
}

// NewDecisionMaker wires the two engines.
func NewDecisionMaker(
	releaseSpecs []decision.Specification[*identify.LocalAlbumRelease],
	fileSpecs []decision.Specification[*FileItem],
	log *slog.Logger,
) *DecisionMaker {
	if log == nil {
		log = slog.Default()
	}
	return &DecisionMaker{
		releaseEngine: decision.NewEngine(log, releaseSpecs...),
		fileEngine:    decision.NewEngine(log, fileSpecs...),
		log:           log,
	}
}

// Decide evaluates every release and returns one decision per track,
// including tracks that carried rejections from identification.
func (m *DecisionMaker) Decide(releases []*identify.LocalAlbumRelease, dl *download.ClientItem) []*ImportDecision {
	var decisions []*ImportDecision
	for _, rel := range releases {
		decisions = append(decisions, m.decideRelease(rel, dl)...)
	}
	return decisions
}

func (m *DecisionMaker) decideRelease(rel *identify.LocalAlbumRelease, dl *download.ClientItem) []*ImportDecision {
	releaseRejections := m.releaseEngine.Evaluate(rel, dl)
	if len(releaseRejections) > 0 {
		m.log.Debug("release rejected",
			"album", rel.Title(),
			"reasons", len(releaseRejections))
		decisions := make([]*ImportDecision, 0, len(rel.Tracks))
		for _, track := range rel.Tracks {
			decisions = append(decisions, &ImportDecision{
				Track:      track,
				Release:    rel,
				Rejections: append(track.Rejections, releaseRejections...),
			})
		}
		return decisions
	}

	decisions := make([]*ImportDecision, 0, len(rel.Tracks))
	for _, track := range rel.Tracks {
		rejections := track.Rejections
		fileRejections := m.fileEngine.Evaluate(&FileItem{Track: track, Release: rel}, dl)
		rejections = append(rejections, fileRejections...)
		decisions = append(decisions, &ImportDecision{
			Track:      track,
			Release:    rel,
			Rejections: rejections,
		})
	}
	return decisions
}
