// Package quality evaluates releases against user-configured quality profiles.
package quality

import (
	"fmt"

	"github.com/vmunix/resonarr/pkg/release"
)

// Profile is an ordered list of accepted qualities. The last entry in Items
// is the most preferred. Cutoff marks the quality at which upgrading stops.
type Profile struct {
	Name   string
	Items  []release.Quality
	Cutoff release.Quality
}

// NewProfile builds a profile from quality names as they appear in config.
// Unknown names are rejected so a typo in config surfaces at startup.
func NewProfile(name string, items []string, cutoff string) (*Profile, error) {
	p := &Profile{Name: name}
	for _, item := range items {
		q := release.ParseQualityName(item)
		if q == release.QualityUnknown {
			return nil, fmt.Errorf("profile %q: unknown quality %q", name, item)
		}
		p.Items = append(p.Items, q)
	}
	if cutoff != "" {
		p.Cutoff = release.ParseQualityName(cutoff)
		if p.Cutoff == release.QualityUnknown {
			return nil, fmt.Errorf("profile %q: unknown cutoff %q", name, cutoff)
		}
	} else if len(p.Items) > 0 {
		p.Cutoff = p.Items[len(p.Items)-1]
	}
	return p, nil
}

// Rank returns the index of q in the profile's ordered items,
// or -1 if the quality is not allowed by the profile.
func (p *Profile) Rank(q release.Quality) int {
	for i, item := range p.Items {
		if item == q {
			return i
		}
	}
	return -1
}

// Allowed reports whether the profile accepts the given quality at all.
func (p *Profile) Allowed(q release.Quality) bool {
	return p.Rank(q) >= 0
}

// Weight produces a total order over quality models within this profile.
// Profile rank dominates; within a rank, a real proper beats a fake one and
// a higher repack version breaks remaining ties.
func (p *Profile) Weight(m release.QualityModel) int {
	rank := p.Rank(m.Quality)
	if rank < 0 {
		return 0
	}
	return (rank+1)*100 + m.Revision.Real*10 + m.Revision.Version
}

// CutoffMet reports whether the given quality is at or above the cutoff.
func (p *Profile) CutoffMet(q release.Quality) bool {
	cutoffRank := p.Rank(p.Cutoff)
	rank := p.Rank(q)
	return rank >= 0 && cutoffRank >= 0 && rank >= cutoffRank
}

// IsUpgrade reports whether candidate would improve on current under this
// profile. With preferPropers, an equal-tier candidate must carry a newer
// revision; without it, any equal-tier revision difference is acceptable.
func (p *Profile) IsUpgrade(current, candidate release.QualityModel, preferPropers bool) bool {
	currentRank := p.Rank(current.Quality)
	candidateRank := p.Rank(candidate.Quality)
	if candidateRank < 0 {
		return false
	}
	if candidateRank != currentRank {
		return candidateRank > currentRank
	}
	if !preferPropers {
		// Same tier, propers not preferred: a revision mismatch in either
		// direction is still acceptable, only an identical copy is not.
		return candidate.Revision != current.Revision
	}
	if candidate.Revision.Real != current.Revision.Real {
		return candidate.Revision.Real > current.Revision.Real
	}
	return candidate.Revision.Version > current.Revision.Version
}
