package importer

import "errors"

var (
	// ErrNoAudioFiles indicates a download folder contained nothing importable.
	ErrNoAudioFiles = errors.New("no audio files found")

	// ErrNoApprovedFiles indicates every candidate file was rejected.
	ErrNoApprovedFiles = errors.New("no files approved for import")

	// ErrDestinationExists indicates the destination file already exists.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrCopyFailed indicates a file copy operation failed.
	ErrCopyFailed = errors.New("copy failed")

	// ErrPathTraversal indicates a path would escape its expected root.
	ErrPathTraversal = errors.New("path escapes root directory")
)
