package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/identify"
)

// countingReleaseSpec counts evaluations and returns a fixed decision.
type countingReleaseSpec struct {
	name   string
	result decision.Decision
	calls  int
}

func (s *countingReleaseSpec) Name() string                { return s.name }
func (s *countingReleaseSpec) Priority() decision.Priority { return decision.PriorityDefault }
func (s *countingReleaseSpec) Evaluate(_ *identify.LocalAlbumRelease, _ *download.ClientItem) (decision.Decision, error) {
	s.calls++
	return s.result, nil
}

type countingFileSpec struct {
	name   string
	result decision.Decision
	calls  int
}

func (s *countingFileSpec) Name() string                { return s.name }
func (s *countingFileSpec) Priority() decision.Priority { return decision.PriorityDefault }
func (s *countingFileSpec) Evaluate(_ *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	s.calls++
	return s.result, nil
}

func testRelease(trackCount int) *identify.LocalAlbumRelease {
	rel := &identify.LocalAlbumRelease{NewDownload: true}
	for n := 1; n <= trackCount; n++ {
		rel.Tracks = append(rel.Tracks, &identify.LocalTrack{
			Path: "/downloads/album/track.flac",
		})
	}
	return rel
}

func TestDecisionMaker_ReleaseRejectionSkipsFileSpecs(t *testing.T) {
	relSpec := &countingReleaseSpec{
		name:   "rejecting",
		result: decision.Reject(decision.NewRejection("match is not close enough")),
	}
	fileSpec := &countingFileSpec{name: "file", result: decision.Accept()}

	m := NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{relSpec},
		[]decision.Specification[*FileItem]{fileSpec},
		testLogger(),
	)

	decisions := m.Decide([]*identify.LocalAlbumRelease{testRelease(3)}, nil)

	assert.Len(t, decisions, 3, "every track gets a decision")
	for _, d := range decisions {
		assert.False(t, d.Approved())
		assert.Equal(t, "match is not close enough", d.Rejections[0].Reason)
	}
	assert.Equal(t, 1, relSpec.calls, "release spec runs once per release")
	assert.Equal(t, 0, fileSpec.calls, "file specs never run for a rejected release")
}

func TestDecisionMaker_ApprovedReleaseRunsFileSpecsPerTrack(t *testing.T) {
	relSpec := &countingReleaseSpec{name: "accepting", result: decision.Accept()}
	fileSpec := &countingFileSpec{name: "file", result: decision.Accept()}

	m := NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{relSpec},
		[]decision.Specification[*FileItem]{fileSpec},
		testLogger(),
	)

	decisions := m.Decide([]*identify.LocalAlbumRelease{testRelease(4)}, nil)

	assert.Len(t, decisions, 4)
	for _, d := range decisions {
		assert.True(t, d.Approved())
	}
	assert.Equal(t, 1, relSpec.calls)
	assert.Equal(t, 4, fileSpec.calls, "file spec runs once per track")
}

func TestDecisionMaker_FileRejectionIsPerTrack(t *testing.T) {
	relSpec := &countingReleaseSpec{name: "accepting", result: decision.Accept()}

	rel := testRelease(2)
	rel.Tracks[0].Path = "/downloads/album/01.flac"
	rel.Tracks[1].Path = "/downloads/album/02.flac"

	rejectFirst := &pathRejectingSpec{reject: "/downloads/album/01.flac"}
	m := NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{relSpec},
		[]decision.Specification[*FileItem]{rejectFirst},
		testLogger(),
	)

	decisions := m.Decide([]*identify.LocalAlbumRelease{rel}, nil)

	assert.False(t, decisions[0].Approved())
	assert.True(t, decisions[1].Approved(), "sibling track is unaffected")
}

func TestDecisionMaker_TrackRejectionsFromIdentificationAreKept(t *testing.T) {
	relSpec := &countingReleaseSpec{name: "accepting", result: decision.Accept()}
	fileSpec := &countingFileSpec{name: "file", result: decision.Accept()}

	rel := testRelease(1)
	rel.Tracks[0].Reject(decision.NewTemporaryRejection("Unable to read file tags"))

	m := NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{relSpec},
		[]decision.Specification[*FileItem]{fileSpec},
		testLogger(),
	)

	decisions := m.Decide([]*identify.LocalAlbumRelease{rel}, nil)

	assert.False(t, decisions[0].Approved())
	assert.Equal(t, "Unable to read file tags", decisions[0].Rejections[0].Reason)
}

// pathRejectingSpec rejects one specific path.
type pathRejectingSpec struct {
	reject string
}

func (s *pathRejectingSpec) Name() string                { return "path-reject" }
func (s *pathRejectingSpec) Priority() decision.Priority { return decision.PriorityDefault }
func (s *pathRejectingSpec) Evaluate(item *FileItem, _ *download.ClientItem) (decision.Decision, error) {
	if item.Track.Path == s.reject {
		return decision.Reject(decision.NewRejection("rejected path")), nil
	}
	return decision.Accept(), nil
}
