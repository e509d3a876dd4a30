package download

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is the list of valid "to" statuses.
var validTransitions = map[Status][]Status{
	StatusQueued:            {StatusDownloading, StatusFailed},
	StatusDownloading:       {StatusCompleted, StatusFailed},
	StatusCompleted:         {StatusDecided, StatusFailed},
	StatusDecided:           {StatusImported, StatusPartiallyImported, StatusFailed},
	StatusImported:          {StatusCleaned},
	StatusPartiallyImported: {StatusDecided, StatusCleaned}, // retry or give up
	StatusFailed:            {StatusQueued},                 // allow retry
	StatusCleaned:           {},                             // terminal
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this status has no path back to an import.
func (s Status) IsTerminal() bool {
	return s == StatusCleaned
}
