package download

import "errors"

var (
	// ErrClientUnavailable is returned when the download client cannot be reached.
	ErrClientUnavailable = errors.New("download client unavailable")

	// ErrInvalidAPIKey is returned when the API key is rejected by the client.
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrNotFound is returned when a download record is not found in the database.
	ErrNotFound = errors.New("download not found")

	// ErrInvalidTransition is returned for a state transition the machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)
