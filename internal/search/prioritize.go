package search

import (
	"sort"

	"github.com/vmunix/resonarr/pkg/release"
)

// defaultIndexerPriority is used for indexers without a configured priority.
const defaultIndexerPriority = 25

// Prioritizer orders download decisions for grabbing.
type Prioritizer struct {
	protocolOrder   []release.Protocol
	indexerPriority map[int64]int
}

// NewPrioritizer creates a prioritizer. protocolOrder lists protocols most
// preferred first; indexerPriority maps indexer ids to priority (lower wins).
func NewPrioritizer(protocolOrder []release.Protocol, indexerPriority map[int64]int) *Prioritizer {
	return &Prioritizer{
		protocolOrder:   protocolOrder,
		indexerPriority: indexerPriority,
	}
}

// Prioritize returns the decisions ordered for grabbing: accepted before
// rejected; accepted sorted by quality weight descending, then protocol
// preference, then indexer priority, then input position. Rejected
// decisions are retained at the tail in their input order.
func (p *Prioritizer) Prioritize(decisions []*DownloadDecision) []*DownloadDecision {
	ordered := make([]*DownloadDecision, len(decisions))
	copy(ordered, decisions)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Approved() != b.Approved() {
			return a.Approved()
		}
		if !a.Approved() {
			return false // rejected keep input order
		}
		if a.Remote.QualityWeight != b.Remote.QualityWeight {
			return a.Remote.QualityWeight > b.Remote.QualityWeight
		}
		pa, pb := p.protocolRank(a.Remote.Release.Protocol), p.protocolRank(b.Remote.Release.Protocol)
		if pa != pb {
			return pa < pb
		}
		ia, ib := p.priority(a.Remote.Release.IndexerID), p.priority(b.Remote.Release.IndexerID)
		if ia != ib {
			return ia < ib
		}
		return a.Remote.ReleaseWeight < b.Remote.ReleaseWeight
	})

	return ordered
}

func (p *Prioritizer) protocolRank(proto release.Protocol) int {
	for i, candidate := range p.protocolOrder {
		if candidate == proto {
			return i
		}
	}
	return len(p.protocolOrder)
}

func (p *Prioritizer) priority(indexerID int64) int {
	if prio, ok := p.indexerPriority[indexerID]; ok {
		return prio
	}
	return defaultIndexerPriority
}
