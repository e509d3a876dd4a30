package importer

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// illegalChars are characters not allowed in filenames on common filesystems.
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	multiDot     = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename replaces characters that are unsafe in filenames. Artist
// and album names come from indexers and tags, so they cannot be trusted to
// be path-safe.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")
	name = illegalChars.ReplaceAllString(name, " ")
	name = multiDot.ReplaceAllString(name, ".")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.Trim(name, " .")
}

// ValidatePath returns ErrPathTraversal if path would escape expectedRoot
// after cleaning.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	if !strings.HasSuffix(cleanRoot, string(filepath.Separator)) {
		cleanRoot += string(filepath.Separator)
	}

	if cleanPath != filepath.Clean(expectedRoot) && !strings.HasPrefix(cleanPath, cleanRoot) {
		return ErrPathTraversal
	}

	return nil
}
