package config

import (
	"fmt"

	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/pkg/release"
)

// Profiles builds the configured quality profiles.
func (c *Config) Profiles() (map[string]*quality.Profile, error) {
	profiles := make(map[string]*quality.Profile, len(c.Quality.Profiles))
	for name, p := range c.Quality.Profiles {
		cutoff := p.Cutoff
		if cutoff == "" {
			cutoff = p.Qualities[len(p.Qualities)-1]
		}
		profile, err := quality.NewProfile(name, p.Qualities, cutoff)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		profiles[name] = profile
	}
	return profiles, nil
}

// ProtocolOrder returns the configured protocol preference, most
// preferred first.
func (c *Config) ProtocolOrder() []release.Protocol {
	order := make([]release.Protocol, 0, len(c.Search.ProtocolOrder))
	for _, p := range c.Search.ProtocolOrder {
		order = append(order, release.ParseProtocol(p))
	}
	return order
}

// MinFreeSpace returns the import free-space floor in bytes.
func (c *Config) MinFreeSpace() int64 {
	return c.Import.MinFreeSpaceMB << 20
}
