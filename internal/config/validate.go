package config

import (
	"fmt"

	"github.com/vmunix/resonarr/pkg/release"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validIndexerTypes = map[string]bool{
	"newznab": true, "torznab": true, "gazelle": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Library.Root == "" {
		errs = append(errs, "library.root: required")
	}

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Quality.Default != "" {
		if _, ok := c.Quality.Profiles[c.Quality.Default]; !ok {
			errs = append(errs, fmt.Sprintf("quality.default: profile %q not defined", c.Quality.Default))
		}
	}
	for name, profile := range c.Quality.Profiles {
		if len(profile.Qualities) == 0 {
			errs = append(errs, fmt.Sprintf("quality.profiles.%s.qualities: required", name))
			continue
		}
		for _, q := range profile.Qualities {
			if release.ParseQualityName(q) == release.QualityUnknown {
				errs = append(errs, fmt.Sprintf("quality.profiles.%s.qualities: unknown quality %q", name, q))
			}
		}
		if profile.Cutoff != "" && release.ParseQualityName(profile.Cutoff) == release.QualityUnknown {
			errs = append(errs, fmt.Sprintf("quality.profiles.%s.cutoff: unknown quality %q", name, profile.Cutoff))
		}
	}

	for _, proto := range c.Search.ProtocolOrder {
		if release.ParseProtocol(proto) == release.ProtocolUnknown {
			errs = append(errs, fmt.Sprintf("search.protocol_order: unknown protocol %q", proto))
		}
	}

	for i, idx := range c.Indexers {
		label := idx.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Sprintf("indexers.%s.name: required", label))
		}
		if !validIndexerTypes[idx.Type] {
			errs = append(errs, fmt.Sprintf("indexers.%s.type: must be one of newznab, torznab, gazelle; got %q", label, idx.Type))
		}
		if idx.URL == "" {
			errs = append(errs, fmt.Sprintf("indexers.%s.url: required", label))
		}
		switch idx.Type {
		case "newznab", "torznab":
			if idx.APIKey == "" {
				errs = append(errs, fmt.Sprintf("indexers.%s.api_key: required", label))
			}
		case "gazelle":
			if idx.Username == "" || idx.Password == "" {
				errs = append(errs, fmt.Sprintf("indexers.%s: username and password required", label))
			}
		}
	}

	if c.Downloaders.SABnzbd != nil {
		if c.Downloaders.SABnzbd.URL == "" {
			errs = append(errs, "downloaders.sabnzbd.url: required when sabnzbd is configured")
		}
		if c.Downloaders.SABnzbd.APIKey == "" {
			errs = append(errs, "downloaders.sabnzbd.api_key: required when sabnzbd is configured")
		}
	}
	if c.Downloaders.QBittorrent != nil && c.Downloaders.QBittorrent.URL == "" {
		errs = append(errs, "downloaders.qbittorrent.url: required when qbittorrent is configured")
	}

	return errs
}
