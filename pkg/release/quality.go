package release

import "strings"

// Quality represents an audio quality tier.
type Quality int

const (
	QualityUnknown Quality = iota
	QualityMP3192
	QualityMP3256
	QualityMP3320
	QualityAAC320
	QualityFLAC
	QualityFLAC24
)

func (q Quality) String() string {
	switch q {
	case QualityMP3192:
		return "mp3-192"
	case QualityMP3256:
		return "mp3-256"
	case QualityMP3320:
		return "mp3-320"
	case QualityAAC320:
		return "aac-320"
	case QualityFLAC:
		return "flac"
	case QualityFLAC24:
		return "flac-24"
	default:
		return "unknown"
	}
}

// ParseQualityName converts a quality name (as used in config profiles) to a Quality.
func ParseQualityName(s string) Quality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mp3-192", "mp3 192":
		return QualityMP3192
	case "mp3-256", "mp3 256":
		return QualityMP3256
	case "mp3-320", "mp3 320":
		return QualityMP3320
	case "aac-320", "aac 320", "aac":
		return QualityAAC320
	case "flac":
		return QualityFLAC
	case "flac-24", "flac 24bit", "flac24":
		return QualityFLAC24
	default:
		return QualityUnknown
	}
}

// Revision tracks proper/repack status of a release.
// Real counts proper releases (a redone rip of the same quality),
// Version counts repacks of the release itself.
type Revision struct {
	Version int
	Real    int
}

// IsRepack returns true if this revision is a repack or proper.
func (r Revision) IsRepack() bool {
	return r.Version > 1 || r.Real > 0
}

// QualityModel combines a quality tier with its revision.
type QualityModel struct {
	Quality  Quality
	Revision Revision
}

func (m QualityModel) String() string {
	s := m.Quality.String()
	if m.Revision.Real > 0 {
		s += " proper"
	}
	if m.Revision.Version > 1 {
		s += " repack"
	}
	return s
}

// parseQuality extracts the quality tier from a normalized release name.
func parseQuality(name string) Quality {
	name = strings.ToLower(name)
	switch {
	case containsAny(name, "flac 24", "flac24", "24bit", "24-bit", "flac 16-44"):
		if containsAny(name, "24bit", "24-bit", "flac 24", "flac24") {
			return QualityFLAC24
		}
		return QualityFLAC
	case containsAny(name, "flac", "lossless"):
		return QualityFLAC
	case containsAny(name, "aac 320", "aac-320", "m4a 320"):
		return QualityAAC320
	case containsAny(name, "320", "mp3 320", "mp3-320"):
		return QualityMP3320
	case containsAny(name, "256", "v0"):
		return QualityMP3256
	case containsAny(name, "192", "v2", "mp3"):
		return QualityMP3192
	default:
		return QualityUnknown
	}
}

// parseRevision extracts proper/repack flags from a normalized release name.
func parseRevision(name string) Revision {
	name = strings.ToLower(name)
	rev := Revision{Version: 1}
	if containsAny(name, "proper") {
		rev.Real = 1
	}
	if containsAny(name, "repack", "rerip") {
		rev.Version = 2
	}
	return rev
}

// QualityFromExtension maps a file extension to a quality tier.
// Used when tags carry no quality information.
func QualityFromExtension(ext string) Quality {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "flac":
		return QualityFLAC
	case "m4a", "aac":
		return QualityAAC320
	case "mp3":
		return QualityMP3320
	case "ogg", "opus":
		return QualityMP3256
	default:
		return QualityUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
