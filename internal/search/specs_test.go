package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/pkg/release"
)

func testProfiles(t *testing.T) map[string]*quality.Profile {
	t.Helper()
	standard, err := quality.NewProfile("standard", []string{"mp3-320", "flac", "flac-24"}, "flac")
	require.NoError(t, err)
	return map[string]*quality.Profile{"standard": standard}
}

func remoteFor(title string, proto release.Protocol, artist *library.Artist, album *library.Album) *RemoteAlbum {
	return &RemoteAlbum{
		Release: testRelease("guid1", title, 1, proto),
		Parsed:  release.Parse(title),
		Artist:  artist,
		Album:   album,
	}
}

func TestKnownArtistSpec(t *testing.T) {
	spec := NewKnownArtistSpec()

	artist := &library.Artist{ID: 1, Name: "Muse", QualityProfile: "standard"}
	dec, err := spec.Evaluate(remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, artist, nil), nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted())

	dec, err = spec.Evaluate(remoteFor("Nobody - Nothing (2003) [FLAC]", release.ProtocolUsenet, nil, nil), nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted())
	assert.Contains(t, dec.Rejections()[0].Reason, "Unknown artist")
}

func TestQualityAllowedSpec(t *testing.T) {
	spec := NewQualityAllowedSpec(testProfiles(t))
	artist := &library.Artist{ID: 1, Name: "Muse", QualityProfile: "standard"}

	dec, err := spec.Evaluate(remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, artist, nil), nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted())

	dec, err = spec.Evaluate(remoteFor("Muse - Absolution (2003) [MP3 192]", release.ProtocolUsenet, artist, nil), nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted())
	assert.Contains(t, dec.Rejections()[0].Reason, "not wanted in profile standard")

	unknownProfile := &library.Artist{ID: 2, Name: "Muse", QualityProfile: "missing"}
	dec, err = spec.Evaluate(remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, unknownProfile, nil), nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted())
}

func TestMinSeedersSpec(t *testing.T) {
	spec := NewMinSeedersSpec(5)
	artist := &library.Artist{ID: 1, Name: "Muse", QualityProfile: "standard"}

	remote := remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolTorrent, artist, nil)
	remote.Release.Seeders = 3
	dec, err := spec.Evaluate(remote, nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted())
	assert.Contains(t, dec.Rejections()[0].Reason, "Not enough seeders")

	remote.Release.Seeders = 5
	dec, err = spec.Evaluate(remote, nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted())

	// Usenet has no seeders to check.
	remote = remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, artist, nil)
	remote.Release.Seeders = 0
	dec, err = spec.Evaluate(remote, nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted())
}

func TestUpgradeAllowedSpec(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)
	artistID := insertTestArtist(t, db, "Muse", "/music/Muse")
	albumID := insertTestAlbum(t, db, artistID, "Absolution", 2003, 12)
	insertTestFile(t, db, albumID, 1, "/music/Muse/Absolution (2003)/01 - Apocalypse Please.mp3", 9000000, "mp3-320")

	spec := NewUpgradeAllowedSpec(lib, testProfiles(t), false)
	artist := &library.Artist{ID: artistID, Name: "Muse", QualityProfile: "standard"}
	album := &library.Album{ID: albumID, ArtistID: artistID, Title: "Absolution"}

	dec, err := spec.Evaluate(remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, artist, album), nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted(), "flac upgrades mp3-320")

	dec, err = spec.Evaluate(remoteFor("Muse - Absolution (2003) [MP3 320]", release.ProtocolUsenet, artist, album), nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted(), "same quality is not an upgrade")
	assert.Contains(t, dec.Rejections()[0].Reason, "not upgraded by")

	dec, err = spec.Evaluate(remoteFor("Muse - Hullabaloo (2002) [FLAC]", release.ProtocolUsenet, artist, nil), nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted(), "no album match means nothing to upgrade")
}

func TestUpgradeAllowedSpec_RevisionWithoutProperPreference(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)
	artistID := insertTestArtist(t, db, "Muse", "/music/Muse")
	albumID := insertTestAlbum(t, db, artistID, "Absolution", 2003, 12)
	insertTestFile(t, db, albumID, 1, "/music/Muse/Absolution (2003)/01 - Apocalypse Please.flac", 30000000, "flac")

	artist := &library.Artist{ID: artistID, Name: "Muse", QualityProfile: "standard"}
	album := &library.Album{ID: albumID, ArtistID: artistID, Title: "Absolution"}
	proper := remoteFor("Muse - Absolution (2003) [FLAC] PROPER", release.ProtocolUsenet, artist, album)

	spec := NewUpgradeAllowedSpec(lib, testProfiles(t), false)
	dec, err := spec.Evaluate(proper, nil)
	require.NoError(t, err)
	assert.True(t, dec.Accepted(), "same tier, different revision is acceptable when propers are not preferred")

	same := remoteFor("Muse - Absolution (2003) [FLAC]", release.ProtocolUsenet, artist, album)
	dec, err = spec.Evaluate(same, nil)
	require.NoError(t, err)
	assert.False(t, dec.Accepted(), "an identical copy is still not an upgrade")
}
