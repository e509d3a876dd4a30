package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions are the file extensions treated as importable audio.
var audioExtensions = map[string]bool{
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// CopyFile copies a file from src to dst.
// Creates destination directory if it doesn't exist.
// Returns ErrDestinationExists if dst already exists.
func CopyFile(src, dst string) (int64, error) {
	// Check if destination exists
	if _, err := os.Stat(dst); err == nil {
		return 0, ErrDestinationExists
	}

	// Create destination directory
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: create directory: %v", ErrCopyFailed, err)
	}

	// Open source
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %v", ErrCopyFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	// Create destination
	dstFile, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: create destination: %v", ErrCopyFailed, err)
	}
	defer func() { _ = dstFile.Close() }()

	// Copy content
	size, err := io.Copy(dstFile, srcFile)
	if err != nil {
		// Clean up partial file on error
		_ = os.Remove(dst)
		return 0, fmt.Errorf("%w: copy content: %v", ErrCopyFailed, err)
	}

	// Sync to disk
	if err := dstFile.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %v", ErrCopyFailed, err)
	}

	return size, nil
}

// MoveFile renames src to dst, falling back to copy+delete across devices.
func MoveFile(src, dst string) (int64, error) {
	if _, err := os.Stat(dst); err == nil {
		return 0, ErrDestinationExists
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: create directory: %v", ErrCopyFailed, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("%w: stat source: %v", ErrCopyFailed, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return info.Size(), nil
	}

	// Cross-device rename fails with EXDEV; copy instead.
	size, err := CopyFile(src, dst)
	if err != nil {
		return 0, err
	}
	_ = os.Remove(src)
	return size, nil
}

// FindAudioFiles walks a directory tree and returns all audio files,
// sorted by path. Files with "sample" in the name are skipped.
// Returns ErrNoAudioFiles if none are found.
func FindAudioFiles(dir string) ([]string, error) {
	var paths []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if info.IsDir() {
			return nil
		}
		if !IsAudioFile(path) {
			return nil
		}

		// Skip sample files
		name := strings.ToLower(info.Name())
		if strings.Contains(name, "sample") {
			return nil
		}

		paths = append(paths, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	if len(paths) == 0 {
		return nil, ErrNoAudioFiles
	}

	sort.Strings(paths)
	return paths, nil
}
