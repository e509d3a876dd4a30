package release

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParsedAlbumInfo contains structured fields extracted from a release title
// or a filename. Derived deterministically; never persisted on its own.
type ParsedAlbumInfo struct {
	ArtistName   string
	AlbumTitle   string
	Year         int
	Quality      QualityModel
	ReleaseGroup string
	Discography  bool
}

var (
	yearRegex  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	groupRegex = regexp.MustCompile(`-([A-Za-z0-9_]+)$`)
	// bracketed quality/source tags: [FLAC], (2019), [WEB], etc.
	bracketRegex = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	trackRegex   = regexp.MustCompile(`^(\d{1,3})\s*[-. ]\s*(.+)$`)
)

// Parse extracts album information from a release title.
// Handles both human-formatted titles ("Artist - Album (2019) [FLAC]")
// and scene-style names ("Artist_Name-Album_Title-WEB-FLAC-2019-GRP").
func Parse(title string) *ParsedAlbumInfo {
	info := &ParsedAlbumInfo{
		Quality: QualityModel{
			Quality:  parseQuality(title),
			Revision: parseRevision(title),
		},
	}

	if m := yearRegex.FindString(title); m != "" {
		info.Year, _ = strconv.Atoi(m)
	}
	info.Discography = containsAny(strings.ToLower(title), "discography", "collection", "anthology")

	work := strings.TrimSpace(title)

	// Human format: "Artist - Album (...)".
	if artist, album, ok := splitHumanTitle(work); ok {
		info.ArtistName = artist
		info.AlbumTitle = album
		return info
	}

	// Scene format: underscores for spaces, hyphen-separated segments,
	// trailing release group.
	if m := groupRegex.FindStringSubmatch(work); m != nil {
		info.ReleaseGroup = m[1]
		work = strings.TrimSuffix(work, m[0])
	}
	work = strings.ReplaceAll(work, "_", " ")
	segments := strings.Split(work, "-")
	var kept []string
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || isReleaseToken(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) >= 2 {
		info.ArtistName = kept[0]
		info.AlbumTitle = strings.Join(kept[1:], " ")
	} else if len(kept) == 1 {
		info.AlbumTitle = kept[0]
	}
	return info
}

// splitHumanTitle handles "Artist - Album (2019) [FLAC]" style titles.
func splitHumanTitle(title string) (artist, album string, ok bool) {
	parts := strings.SplitN(title, " - ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	artist = strings.TrimSpace(parts[0])
	album = strings.TrimSpace(bracketRegex.ReplaceAllString(parts[1], ""))
	if artist == "" || album == "" {
		return "", "", false
	}
	return artist, album, true
}

// isReleaseToken reports whether a scene segment is release metadata
// rather than part of the artist or album name.
func isReleaseToken(seg string) bool {
	lower := strings.ToLower(seg)
	switch lower {
	case "web", "cd", "2cd", "3cd", "vinyl", "flac", "mp3", "aac",
		"320", "256", "192", "v0", "v2", "24bit", "proper", "repack",
		"rerip", "deluxe", "remastered", "ep", "single":
		return true
	}
	return yearRegex.MatchString(seg) && len(seg) == 4
}

// TrackInfo contains fields parsed from a track filename.
type TrackInfo struct {
	TrackNumber int
	Title       string
	Quality     QualityModel
}

// ParseFilename extracts track information from a media file path.
// Handles "01 - Track Title.flac" and "03. Track Title.mp3" styles.
func ParseFilename(path string) *TrackInfo {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	info := &TrackInfo{
		Title:   name,
		Quality: QualityModel{Quality: QualityFromExtension(ext), Revision: Revision{Version: 1}},
	}

	if m := trackRegex.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 500 {
			info.TrackNumber = n
			info.Title = strings.TrimSpace(m[2])
		}
	}
	return info
}
