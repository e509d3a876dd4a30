package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vmunix/resonarr/internal/config"
	"github.com/vmunix/resonarr/internal/decision"
	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/events"
	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/importer"
	"github.com/vmunix/resonarr/internal/indexer"
	"github.com/vmunix/resonarr/internal/library"
	"github.com/vmunix/resonarr/internal/migrations"
	"github.com/vmunix/resonarr/internal/quality"
	"github.com/vmunix/resonarr/internal/search"
	"github.com/vmunix/resonarr/pkg/release"
)

// app wires the configured stores, pipeline, and clients together. Each
// command opens one app and closes it when done.
type app struct {
	cfg *config.Config
	db  *sql.DB
	log *slog.Logger

	library   *library.Store
	downloads *download.Store
	history   *importer.HistoryStore
	bus       *events.Bus
	profiles  map[string]*quality.Profile

	fetcher     *search.Fetcher
	maker       *search.Maker
	prioritizer *search.Prioritizer
	cache       *search.ReleaseCache
	gateway     *search.Gateway

	importer *importer.Importer
}

func openApp() (*app, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Discover()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.Server.LogLevel)

	db, err := sql.Open("sqlite", cfg.Database.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		log:       log,
		library:   library.NewStore(db),
		downloads: download.NewStore(db),
		history:   importer.NewHistoryStore(db),
		bus:       events.NewBus(log),
		profiles:  profiles,
		cache:     search.NewReleaseCache(),
	}

	a.fetcher = search.NewFetcher(buildAdapters(cfg, log), log)
	a.maker = search.NewMaker(
		[]decision.Specification[*search.RemoteAlbum]{
			search.NewKnownArtistSpec(),
			search.NewQualityAllowedSpec(profiles),
			search.NewMinSeedersSpec(cfg.Search.MinSeeders),
			search.NewUpgradeAllowedSpec(a.library, profiles, cfg.Import.PreferPropers),
		},
		search.NewResolver(a.library),
		profiles,
		a.fetcher,
		log,
	)
	a.prioritizer = search.NewPrioritizer(cfg.ProtocolOrder(), indexerPriorities(cfg))

	client, clientKind := buildDownloader(cfg, log)
	a.gateway = search.NewGateway(search.GatewayConfig{
		Cache:      a.cache,
		Client:     client,
		ClientKind: clientKind,
		Category:   downloadCategory(cfg),
		Downloads:  a.downloads,
		History:    a.history,
		Maker:      a.maker,
		Fetcher:    a.fetcher,
		Bus:        a.bus,
		Log:        log,
	})

	decisions := importer.NewDecisionMaker(
		[]decision.Specification[*identify.LocalAlbumRelease]{
			importer.NewArtistPathSpec([]string{cfg.Library.Root}),
			importer.NewAlreadyImportedSpec(a.history),
			importer.NewCloseMatchSpec(),
		},
		[]decision.Specification[*importer.FileItem]{
			importer.NewNotUnpackingSpec(cfg.Import.WorkingFolders, log),
			importer.NewFreeSpaceSpec(importer.Disk{}, cfg.MinFreeSpace(), cfg.Import.SkipFreeSpaceCheck, log),
			importer.NewSameFileSpec(a.library),
			importer.NewUpgradeSpec(a.library, profiles, cfg.Import.PreferPropers),
		},
		log,
	)
	a.importer = importer.New(importer.Config{
		Library:    a.library,
		Downloads:  a.downloads,
		History:    a.history,
		Identifier: identify.NewService(a.library, identify.FileTagReader{}, log),
		Decisions:  decisions,
		Bus:        a.bus,
		Client:     client,
		Logger:     log,
	})

	return a, nil
}

func (a *app) Close() {
	a.bus.Close()
	_ = a.db.Close()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// buildAdapters turns indexer config entries into live adapters. The
// adapter id is the entry's position, stable as long as config order is.
func buildAdapters(cfg *config.Config, log *slog.Logger) []indexer.Adapter {
	adapters := make([]indexer.Adapter, 0, len(cfg.Indexers))
	for i, idx := range cfg.Indexers {
		id := int64(i + 1)
		switch idx.Type {
		case "newznab":
			adapters = append(adapters, indexer.NewNewznabAdapter(
				id, idx.Name, idx.URL, idx.APIKey, release.ProtocolUsenet, idx.Priority, idx.Categories, log))
		case "torznab":
			adapters = append(adapters, indexer.NewNewznabAdapter(
				id, idx.Name, idx.URL, idx.APIKey, release.ProtocolTorrent, idx.Priority, idx.Categories, log))
		case "gazelle":
			adapters = append(adapters, indexer.NewGazelleAdapter(
				id, idx.Name, idx.URL, idx.Username, idx.Password, idx.Priority, log))
		}
	}
	return adapters
}

func indexerPriorities(cfg *config.Config) map[int64]int {
	priorities := make(map[int64]int, len(cfg.Indexers))
	for i, idx := range cfg.Indexers {
		priorities[int64(i+1)] = idx.Priority
	}
	return priorities
}

// buildDownloader picks the configured download client. With nothing
// configured the importer falls back to manual handling.
func buildDownloader(cfg *config.Config, log *slog.Logger) (download.Downloader, download.Client) {
	if sab := cfg.Downloaders.SABnzbd; sab != nil {
		return download.NewSABnzbdClient(sab.URL, sab.APIKey, log), download.ClientSABnzbd
	}
	if qb := cfg.Downloaders.QBittorrent; qb != nil {
		return download.NewQBittorrentClient(qb.URL, qb.Username, qb.Password, log), download.ClientQBittorrent
	}
	return nil, download.ClientManual
}

func downloadCategory(cfg *config.Config) string {
	if sab := cfg.Downloaders.SABnzbd; sab != nil && sab.Category != "" {
		return sab.Category
	}
	if qb := cfg.Downloaders.QBittorrent; qb != nil && qb.Category != "" {
		return qb.Category
	}
	return "music"
}
