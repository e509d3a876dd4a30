package config

import (
	"fmt"
	"strings"
)

// ConfigError aggregates everything wrong with a config file so the user
// sees all problems in one run instead of fixing them one at a time.
type ConfigError struct {
	Path    string   // config file path
	Missing []string // unresolved environment variables
	Errors  []string // validation errors
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 && len(e.Errors) == 0 {
		return ""
	}

	var parts []string

	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing environment variables: %s", strings.Join(e.Missing, ", ")))
	}

	if len(e.Errors) > 0 {
		parts = append(parts, "validation failed:")
		for _, err := range e.Errors {
			parts = append(parts, fmt.Sprintf("  - %s", err))
		}
	}

	return strings.Join(parts, "\n")
}

// HasErrors returns true if there are any errors.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
