// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Library     LibraryConfig     `toml:"library"`
	Import      ImportConfig      `toml:"import"`
	Quality     QualityConfig     `toml:"quality"`
	Search      SearchConfig      `toml:"search"`
	Indexers    []IndexerConfig   `toml:"indexers"`
	Downloaders DownloadersConfig `toml:"downloaders"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LibraryConfig struct {
	Root string `toml:"root"`
}

type ImportConfig struct {
	MinFreeSpaceMB     int64    `toml:"min_free_space_mb"`
	SkipFreeSpaceCheck bool     `toml:"skip_free_space_check"`
	PreferPropers      bool     `toml:"prefer_propers"`
	WorkingFolders     []string `toml:"working_folders"`
}

type QualityConfig struct {
	Default  string                    `toml:"default"`
	Profiles map[string]QualityProfile `toml:"profiles"`
}

type QualityProfile struct {
	Qualities []string `toml:"qualities"` // worst first
	Cutoff    string   `toml:"cutoff"`
}

type SearchConfig struct {
	MinSeeders    int      `toml:"min_seeders"`
	ProtocolOrder []string `toml:"protocol_order"` // most preferred first
}

type IndexerConfig struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"` // newznab, torznab, gazelle
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	Priority   int    `toml:"priority"`
	Categories []int  `toml:"categories"`
}

type DownloadersConfig struct {
	SABnzbd     *SABnzbdConfig     `toml:"sabnzbd"`
	QBittorrent *QBittorrentConfig `toml:"qbittorrent"`
}

type SABnzbdConfig struct {
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	Category string `toml:"category"`
}

type QBittorrentConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Category string `toml:"category"`
}

// Load reads, substitutes, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8686
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/resonarr.db"
	}
	if c.Import.MinFreeSpaceMB == 0 {
		c.Import.MinFreeSpaceMB = 100
	}
	if len(c.Import.WorkingFolders) == 0 {
		c.Import.WorkingFolders = []string{"incomplete", "_UNPACK_"}
	}
	if len(c.Search.ProtocolOrder) == 0 {
		c.Search.ProtocolOrder = []string{"usenet", "torrent"}
	}
	if c.Quality.Default == "" {
		c.Quality.Default = "standard"
	}
	if len(c.Quality.Profiles) == 0 {
		c.Quality.Profiles = map[string]QualityProfile{
			"standard": {Qualities: []string{"mp3-320", "flac", "flac-24"}, Cutoff: "flac"},
		}
	}
	for i := range c.Indexers {
		if c.Indexers[i].Priority == 0 {
			c.Indexers[i].Priority = 25
		}
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
// and reports the names it could not resolve.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) (string, []string) {
	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		missing = append(missing, varName)
		return match
	})
	return result, missing
}
