package search

import (
	"errors"
	"fmt"
)

var (
	// ErrReleaseNotFound means the grab target is not in the release
	// cache: it was never searched or its entry expired. The remedy is a
	// fresh search, not a retry of the same request.
	ErrReleaseNotFound = errors.New("release no longer available, search again")

	// ErrGrabFailed means the release was found but the download client
	// or indexer refused it. Retrying the same cached entry is unlikely
	// to help; a fresh search may find a live copy.
	ErrGrabFailed = errors.New("unable to grab release")

	// ErrNoIndexers means no indexer is configured or reachable.
	ErrNoIndexers = errors.New("no indexers available")
)

// ValidationError reports a malformed release-push payload before it
// reaches any decision-making.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
