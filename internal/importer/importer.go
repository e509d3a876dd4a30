// Package importer turns completed downloads into library track files.
// It identifies local audio, runs release and file level checks, copies
// approved files into the library, and records history and events.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/vmunix/resonarr/internal/download"
	"github.com/vmunix/resonarr/internal/events"
	"github.com/vmunix/resonarr/internal/identify"
	"github.com/vmunix/resonarr/internal/library"
)

// Importer orchestrates identification, decisions, and file moves for
// completed downloads.
type Importer struct {
	library    *library.Store
	downloads  *download.Store
	history    *HistoryStore
	identifier *identify.Service
	decisions  *DecisionMaker
	renamer    Renamer
	bus        *events.Bus
	client     download.Downloader // may be nil for manual imports
	log        *slog.Logger
}

// Config carries the Importer's collaborators.
type Config struct {
	Library    *library.Store
	Downloads  *download.Store
	History    *HistoryStore
	Identifier *identify.Service
	Decisions  *DecisionMaker
	Bus        *events.Bus
	Client     download.Downloader
	Logger     *slog.Logger
}

// New creates an Importer.
func New(cfg Config) *Importer {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		library:    cfg.Library,
		downloads:  cfg.Downloads,
		history:    cfg.History,
		identifier: cfg.Identifier,
		decisions:  cfg.Decisions,
		bus:        cfg.Bus,
		client:     cfg.Client,
		log:        log,
	}
}

// Result summarizes one import run.
type Result struct {
	Imported []*ImportDecision
	Rejected []*ImportDecision
	Failed   []*ImportDecision // approved but the copy failed
	Status   download.Status   // final download status
}

// ImportDownload imports a completed download. The download must be in
// the completed state (or decided, for a retry after a partial import).
func (i *Importer) ImportDownload(ctx context.Context, d *download.Download) (*Result, error) {
	if d.Status != download.StatusCompleted && d.Status != download.StatusDecided {
		return nil, fmt.Errorf("%w: cannot import download in status %s", download.ErrInvalidTransition, d.Status)
	}

	item, err := i.clientItem(ctx, d)
	if err != nil {
		return nil, err
	}

	sourcePath := d.OutputPath
	if item != nil && item.OutputPath != "" && item.OutputPath != sourcePath {
		sourcePath = item.OutputPath
		if err := i.downloads.SetOutputPath(d, sourcePath); err != nil {
			return nil, err
		}
	}
	if sourcePath == "" {
		return nil, fmt.Errorf("download %d has no output path", d.ID)
	}

	_ = i.bus.Publish(ctx, events.NewImportStarted(d.ID, sourcePath))

	artist, err := i.library.GetArtist(d.ArtistID)
	if err != nil {
		return nil, fmt.Errorf("load artist %d: %w", d.ArtistID, err)
	}
	var album *library.Album
	if d.AlbumID != nil {
		album, err = i.library.GetAlbum(*d.AlbumID)
		if err != nil {
			return nil, fmt.Errorf("load album %d: %w", *d.AlbumID, err)
		}
	}

	tracks, err := scanTracks(sourcePath)
	if err != nil {
		if errors.Is(err, ErrNoAudioFiles) {
			return i.fail(ctx, d, "no audio files in download folder")
		}
		return nil, err
	}

	releases, err := i.identifier.Identify(tracks, artist, album, identify.Options{
		NewDownload:   true,
		SingleRelease: album != nil,
	})
	if err != nil {
		return nil, err
	}

	decisions := i.decisions.Decide(releases, item)
	if d.Status == download.StatusCompleted {
		if err := i.downloads.Transition(d, download.StatusDecided); err != nil {
			return nil, err
		}
	}

	return i.applyDecisions(ctx, d, item, decisions)
}

// clientItem asks the download client for its view of the item. A manual
// download or an unreachable client yields nil, which downstream checks
// treat as pre-existing files only when the download row is absent too;
// here we synthesize a minimal item so history gating still applies.
func (i *Importer) clientItem(ctx context.Context, d *download.Download) (*download.ClientItem, error) {
	if i.client == nil || d.Client == download.ClientManual {
		return &download.ClientItem{
			DownloadID:   d.ClientID,
			Title:        d.ReleaseName,
			OutputPath:   d.OutputPath,
			CanMoveFiles: true,
		}, nil
	}
	item, err := i.client.Item(ctx, d.ClientID)
	if err != nil {
		if errors.Is(err, download.ErrNotFound) {
			i.log.Warn("download missing from client, importing from tracked path",
				"download", d.ID, "client_id", d.ClientID)
			return &download.ClientItem{
				DownloadID:   d.ClientID,
				Title:        d.ReleaseName,
				OutputPath:   d.OutputPath,
				CanMoveFiles: true,
			}, nil
		}
		return nil, fmt.Errorf("query download client: %w", err)
	}
	return item, nil
}

// applyDecisions copies approved files and settles the download status.
func (i *Importer) applyDecisions(ctx context.Context, d *download.Download, item *download.ClientItem, decisions []*ImportDecision) (*Result, error) {
	res := &Result{}
	var trackResults []events.TrackImportResult
	var totalSize int64
	var importedAlbum *library.Album
	var importedArtist *library.Artist

	for _, dec := range decisions {
		if !dec.Approved() {
			for _, r := range dec.Rejections {
				i.log.Info("file rejected",
					"path", dec.Track.Path,
					"reason", r.Reason,
					"type", r.Type.String())
			}
			res.Rejected = append(res.Rejected, dec)
			continue
		}

		size, err := i.importFile(dec, item)
		num := trackNumberOf(dec.Track)
		if err != nil {
			i.log.Error("import failed for file", "path", dec.Track.Path, "error", err)
			res.Failed = append(res.Failed, dec)
			trackResults = append(trackResults, events.TrackImportResult{
				TrackNumber: num,
				Success:     false,
				Error:       err.Error(),
			})
			continue
		}

		res.Imported = append(res.Imported, dec)
		totalSize += size
		trackResults = append(trackResults, events.TrackImportResult{
			TrackNumber: num,
			Success:     true,
			FilePath:    dec.Track.Path,
		})
		importedAlbum = dec.Release.Album
		importedArtist = dec.Release.Artist
	}

	if len(res.Imported) == 0 {
		reason := "all files rejected"
		if len(res.Failed) > 0 {
			reason = "all file copies failed"
		}
		return i.failDecided(ctx, d, res, reason)
	}

	// Fully imported only when every track the download was expected to
	// deliver actually landed; pre-existing library files don't count.
	expected := 1
	if importedAlbum != nil && importedAlbum.TrackCount > 0 {
		expected = importedAlbum.TrackCount
	}
	full := len(res.Imported) >= expected

	target := download.StatusPartiallyImported
	if full {
		target = download.StatusImported
	}
	if err := i.downloads.Transition(d, target); err != nil {
		return nil, err
	}
	res.Status = target

	// Album availability follows the library's contents, which may have
	// been completed by earlier imports.
	if importedAlbum != nil && importedAlbum.TrackCount > 0 &&
		countAlbumFiles(i.library, importedAlbum.ID) >= importedAlbum.TrackCount {
		if err := i.library.UpdateAlbumStatus(importedAlbum.ID, library.StatusAvailable); err != nil {
			i.log.Error("failed to update album status", "album", importedAlbum.ID, "error", err)
		}
	}

	if i.history != nil && importedAlbum != nil {
		entry := &HistoryEntry{
			ArtistID:   importedArtist.ID,
			AlbumID:    &importedAlbum.ID,
			Event:      EventImported,
			DownloadID: downloadKey(item),
			Data:       fmt.Sprintf(`{"files":%d}`, len(res.Imported)),
		}
		if err := i.history.Add(entry); err != nil {
			i.log.Error("failed to record import history", "error", err)
		}
	}

	if importedAlbum != nil {
		_ = i.bus.Publish(ctx, events.NewImportCompleted(
			d.ID, importedArtist.ID, importedAlbum.ID, trackResults, totalSize))
	}

	i.cleanup(ctx, d, item, full)
	return res, nil
}

// importFile copies or moves one approved track into the library and
// records it inside a transaction.
func (i *Importer) importFile(dec *ImportDecision, item *download.ClientItem) (int64, error) {
	dst, err := i.renamer.DestinationPath(dec.Release.Artist, dec.Release.Album, dec.Track)
	if err != nil {
		return 0, err
	}

	move := item != nil && item.CanMoveFiles
	var size int64
	if move {
		size, err = MoveFile(dec.Track.Path, dst)
	} else {
		size, err = CopyFile(dec.Track.Path, dst)
	}
	if err != nil {
		return 0, err
	}

	tx, err := i.library.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	file := &library.TrackFile{
		AlbumID:     dec.Release.Album.ID,
		TrackNumber: trackNumberOf(dec.Track),
		Path:        dst,
		SizeBytes:   size,
		Quality:     dec.Track.Quality,
		Source:      sourceOf(item),
	}
	if err := tx.AddFile(file); err != nil {
		// The file landed on disk but the record failed; remove the copy
		// so a retry starts clean.
		_ = os.Remove(dst)
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return size, nil
}

// fail settles a download that produced nothing before decisions ran.
func (i *Importer) fail(ctx context.Context, d *download.Download, reason string) (*Result, error) {
	if err := i.downloads.Transition(d, download.StatusFailed); err != nil {
		return nil, err
	}
	i.recordFailure(d, reason)
	_ = i.bus.Publish(ctx, events.NewImportFailed(d.ID, reason))
	return &Result{Status: download.StatusFailed}, nil
}

// failDecided settles a decided download whose every file was rejected
// or failed to copy.
func (i *Importer) failDecided(ctx context.Context, d *download.Download, res *Result, reason string) (*Result, error) {
	if err := i.downloads.Transition(d, download.StatusFailed); err != nil {
		return nil, err
	}
	i.recordFailure(d, reason)
	_ = i.bus.Publish(ctx, events.NewImportFailed(d.ID, reason))
	res.Status = download.StatusFailed
	return res, nil
}

func (i *Importer) recordFailure(d *download.Download, reason string) {
	if i.history == nil {
		return
	}
	entry := &HistoryEntry{
		ArtistID:   d.ArtistID,
		AlbumID:    d.AlbumID,
		Event:      EventFailed,
		DownloadID: d.ClientID,
		Data:       fmt.Sprintf(`{"reason":%q}`, reason),
	}
	if err := i.history.Add(entry); err != nil {
		i.log.Error("failed to record failure history", "error", err)
	}
}

// cleanup removes the item from the download client after a full import.
// Partial imports keep the source so a retry can pick up the rest.
func (i *Importer) cleanup(ctx context.Context, d *download.Download, item *download.ClientItem, full bool) {
	if !full || i.client == nil || item == nil || !item.Removable {
		return
	}
	if err := i.client.Remove(ctx, item.DownloadID, true); err != nil {
		i.log.Warn("failed to remove download from client",
			"download", d.ID, "client_id", item.DownloadID, "error", err)
		return
	}
	if err := i.downloads.Transition(d, download.StatusCleaned); err != nil {
		i.log.Error("failed to mark download cleaned", "download", d.ID, "error", err)
	}
}

// scanTracks stats every audio file under dir and builds local tracks.
func scanTracks(dir string) ([]*identify.LocalTrack, error) {
	paths, err := FindAudioFiles(dir)
	if err != nil {
		return nil, err
	}

	tracks := make([]*identify.LocalTrack, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			// The file vanished between walk and stat; skip it.
			continue
		}
		tracks = append(tracks, &identify.LocalTrack{
			Path:    p,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	if len(tracks) == 0 {
		return nil, ErrNoAudioFiles
	}
	return tracks, nil
}

func trackNumberOf(t *identify.LocalTrack) int {
	if t.TrackInfo != nil && t.TrackInfo.TrackNumber > 0 {
		return t.TrackInfo.TrackNumber
	}
	return t.Tags.TrackNumber
}

func sourceOf(item *download.ClientItem) string {
	if item == nil || item.DownloadID == "" {
		return "manual"
	}
	return item.DownloadID
}

func downloadKey(item *download.ClientItem) string {
	if item == nil {
		return ""
	}
	return item.DownloadID
}

// countAlbumFiles returns the number of track files recorded for an album.
func countAlbumFiles(store *library.Store, albumID int64) int {
	files, err := store.ListFiles(library.FileFilter{AlbumID: &albumID})
	if err != nil {
		return 0
	}
	return len(files)
}

// ManualImportOptions controls a user-initiated import of a folder.
type ManualImportOptions struct {
	Artist               *library.Artist
	Album                *library.Album
	ReplaceExistingFiles bool
}

// ImportPath imports audio files from an arbitrary folder outside the
// download pipeline. The client item is synthesized so file checks run;
// files are copied, never moved.
func (i *Importer) ImportPath(ctx context.Context, path string, opts ManualImportOptions) ([]*ImportDecision, error) {
	tracks, err := scanTracks(path)
	if err != nil {
		return nil, err
	}

	releases, err := i.identifier.Identify(tracks, opts.Artist, opts.Album, identify.Options{
		NewDownload:     true,
		SingleRelease:   opts.Album != nil,
		IncludeExisting: !opts.ReplaceExistingFiles,
	})
	if err != nil {
		return nil, err
	}

	item := &download.ClientItem{Title: "manual import", OutputPath: path}
	decisions := i.decisions.Decide(releases, item)

	for _, dec := range decisions {
		if !dec.Approved() {
			continue
		}
		if opts.ReplaceExistingFiles && dec.Release.Album != nil {
			if err := i.replaceExisting(dec.Release.Album.ID, dec.Track); err != nil {
				i.log.Error("failed to replace existing file", "error", err)
				continue
			}
		}
		if _, err := i.importFile(dec, nil); err != nil {
			i.log.Error("manual import failed for file", "path", dec.Track.Path, "error", err)
		}
	}
	return decisions, nil
}

// replaceExisting deletes library files that share a track number with
// the incoming file, both the record and the file on disk.
func (i *Importer) replaceExisting(albumID int64, track *identify.LocalTrack) error {
	num := trackNumberOf(track)
	if num == 0 {
		return nil
	}
	files, err := i.library.ListFiles(library.FileFilter{AlbumID: &albumID})
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.TrackNumber != num {
			continue
		}
		if err := i.library.DeleteFile(f.ID); err != nil {
			return err
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			i.log.Warn("failed to remove replaced file", "path", f.Path, "error", err)
		}
		if i.history != nil {
			_ = i.history.Add(&HistoryEntry{
				ArtistID: albumArtistID(i.library, albumID),
				AlbumID:  &albumID,
				Event:    EventUpgraded,
				Data:     fmt.Sprintf(`{"replaced":%q}`, f.Path),
			})
		}
	}
	return nil
}

func albumArtistID(store *library.Store, albumID int64) int64 {
	album, err := store.GetAlbum(albumID)
	if err != nil {
		return 0
	}
	return album.ArtistID
}
