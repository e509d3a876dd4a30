package release_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmunix/resonarr/pkg/release"
)

func TestParse_HumanTitles(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		artist  string
		album   string
		year    int
		quality release.Quality
	}{
		{
			name:    "bracketed flac",
			title:   "Radiohead - OK Computer (1997) [FLAC]",
			artist:  "Radiohead",
			album:   "OK Computer",
			year:    1997,
			quality: release.QualityFLAC,
		},
		{
			name:    "flac 24bit",
			title:   "Daft Punk - Random Access Memories (2013) [FLAC 24bit]",
			artist:  "Daft Punk",
			album:   "Random Access Memories",
			year:    2013,
			quality: release.QualityFLAC24,
		},
		{
			name:    "mp3 320",
			title:   "Nirvana - Nevermind [MP3 320]",
			artist:  "Nirvana",
			album:   "Nevermind",
			quality: release.QualityMP3320,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := release.Parse(tt.title)
			assert.Equal(t, tt.artist, info.ArtistName)
			assert.Equal(t, tt.album, info.AlbumTitle)
			assert.Equal(t, tt.year, info.Year)
			assert.Equal(t, tt.quality, info.Quality.Quality)
		})
	}
}

func TestParse_SceneTitles(t *testing.T) {
	info := release.Parse("Boards_Of_Canada-Music_Has_The_Right_To_Children-WEB-FLAC-1998-GRP")
	assert.Equal(t, "Boards Of Canada", info.ArtistName)
	assert.Equal(t, "Music Has The Right To Children", info.AlbumTitle)
	assert.Equal(t, 1998, info.Year)
	assert.Equal(t, release.QualityFLAC, info.Quality.Quality)
	assert.Equal(t, "GRP", info.ReleaseGroup)
}

func TestParse_Revision(t *testing.T) {
	info := release.Parse("Artist - Album (2020) [FLAC] PROPER")
	assert.Equal(t, 1, info.Quality.Revision.Real)

	info = release.Parse("Artist - Album (2020) [FLAC] REPACK")
	assert.Equal(t, 2, info.Quality.Revision.Version)
	assert.True(t, info.Quality.Revision.IsRepack())

	info = release.Parse("Artist - Album (2020) [FLAC]")
	assert.Equal(t, release.Revision{Version: 1}, info.Quality.Revision)
}

func TestParse_Discography(t *testing.T) {
	info := release.Parse("Artist - Discography (1990-2020) [MP3 320]")
	assert.True(t, info.Discography)
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		path    string
		track   int
		title   string
		quality release.Quality
	}{
		{"/music/incoming/01 - Airbag.flac", 1, "Airbag", release.QualityFLAC},
		{"/music/incoming/03. Subterranean Homesick Alien.mp3", 3, "Subterranean Homesick Alien", release.QualityMP3320},
		{"/music/incoming/no track number.m4a", 0, "no track number", release.QualityAAC320},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info := release.ParseFilename(tt.path)
			assert.Equal(t, tt.track, info.TrackNumber)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.quality, info.Quality.Quality)
		})
	}
}

func TestParseQualityName(t *testing.T) {
	assert.Equal(t, release.QualityFLAC, release.ParseQualityName("FLAC"))
	assert.Equal(t, release.QualityFLAC24, release.ParseQualityName("flac-24"))
	assert.Equal(t, release.QualityMP3320, release.ParseQualityName("mp3-320"))
	assert.Equal(t, release.QualityUnknown, release.ParseQualityName("betamax"))
}
