package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/resonarr/internal/indexer"
	"github.com/vmunix/resonarr/internal/indexer/mocks"
	"github.com/vmunix/resonarr/pkg/release"
)

func TestFetcher_Search_MergesResults(t *testing.T) {
	a := &fakeAdapter{id: 1, name: "usenet-one", protocol: release.ProtocolUsenet, releases: []release.Info{
		testRelease("u1", "Muse - Absolution (2003) [FLAC]", 1, release.ProtocolUsenet),
		testRelease("u2", "Muse - Origin of Symmetry (2001) [FLAC]", 1, release.ProtocolUsenet),
	}}
	b := &fakeAdapter{id: 2, name: "torrent-one", protocol: release.ProtocolTorrent, releases: []release.Info{
		testRelease("t1", "Muse - Absolution (2003) [MP3 320]", 2, release.ProtocolTorrent),
	}}
	f := NewFetcher([]indexer.Adapter{a, b}, testLogger())

	found, err := f.Search(context.Background(), "muse absolution")
	require.NoError(t, err)
	assert.Len(t, found, 3)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestFetcher_Search_ToleratesPartialFailure(t *testing.T) {
	healthy := &fakeAdapter{id: 1, name: "healthy", releases: []release.Info{
		testRelease("u1", "Muse - Absolution (2003) [FLAC]", 1, release.ProtocolUsenet),
	}}
	broken := &fakeAdapter{id: 2, name: "broken", err: errors.New("connection refused")}
	f := NewFetcher([]indexer.Adapter{healthy, broken}, testLogger())

	found, err := f.Search(context.Background(), "muse")
	require.NoError(t, err, "one working indexer is enough")
	assert.Len(t, found, 1)
}

func TestFetcher_Search_AllFailed(t *testing.T) {
	a := &fakeAdapter{id: 1, name: "one", err: errors.New("timeout")}
	b := &fakeAdapter{id: 2, name: "two", err: errors.New("timeout")}
	f := NewFetcher([]indexer.Adapter{a, b}, testLogger())

	_, err := f.Search(context.Background(), "muse")
	require.ErrorIs(t, err, ErrNoIndexers)
}

func TestFetcher_NoAdapters(t *testing.T) {
	f := NewFetcher(nil, testLogger())
	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, ErrNoIndexers)
}

func TestFetcher_ByName(t *testing.T) {
	a := &fakeAdapter{id: 1, name: "usenet-one"}
	f := NewFetcher([]indexer.Adapter{a}, testLogger())

	require.NotNil(t, f.ByName("usenet-one"))
	assert.EqualValues(t, 1, f.ByName("usenet-one").ID())
	assert.Nil(t, f.ByName("unknown"))
}

func TestFetcher_Search_PassesQueryThrough(t *testing.T) {
	ctrl := gomock.NewController(t)

	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().
		Search(gomock.Any(), "Muse Origin of Symmetry").
		Return([]release.Info{
			testRelease("g1", "Muse - Origin of Symmetry (2001) [FLAC]", 1, release.ProtocolUsenet),
		}, nil)

	f := NewFetcher([]indexer.Adapter{adapter}, testLogger())

	found, err := f.Search(context.Background(), "Muse Origin of Symmetry")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "g1", found[0].GUID)
}

func TestFetcher_Fetch_PullsEveryFeed(t *testing.T) {
	ctrl := gomock.NewController(t)

	first := mocks.NewMockAdapter(ctrl)
	first.EXPECT().Fetch(gomock.Any()).Return([]release.Info{
		testRelease("g1", "Muse - Absolution (2003) [FLAC]", 1, release.ProtocolUsenet),
	}, nil)
	second := mocks.NewMockAdapter(ctrl)
	second.EXPECT().Fetch(gomock.Any()).Return([]release.Info{
		testRelease("g2", "Muse - Showbiz (1999) [FLAC]", 2, release.ProtocolTorrent),
	}, nil)

	f := NewFetcher([]indexer.Adapter{first, second}, testLogger())

	found, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
