// package tasks implements the long-running workflows: library processing, playlist
// sync, title repair, and cache warming.
//
// The core abstraction is SyncEngine. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rekordsync/internal/library"
	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/processor"
	"github.com/desertthunder/rekordsync/internal/repositories"
	"github.com/desertthunder/rekordsync/internal/services"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// MatchPicker selects a sink track for a library track when automatic search came up
// empty or interactive mode wants confirmation. Returning (nil, nil) skips the track.
type MatchPicker interface {
	Pick(ctx context.Context, track *models.Track, candidates []services.Track) (*services.Track, error)
}

// ProcessResult summarizes a library processing pass.
type ProcessResult struct {
	TotalTracks     int
	ChangedTracks   int
	DuplicateGroups int
	DryRun          bool
}

// SyncOptions controls a playlist sync run.
type SyncOptions struct {
	DryRun      bool
	Interactive bool
	ForceRemap  bool
}

// SyncResult summarizes a playlist sync run.
type SyncResult struct {
	PlaylistsSynced  int
	PlaylistsSkipped int
	PlaylistsDeleted int
	OrphansRemoved   int
	TracksMatched    int
	TracksUnmatched  int
	CacheHits        int
	TracksAdded      int
	TracksRemoved    int
	DryRun           bool
}

// RepairResult summarizes a title repair pass.
type RepairResult struct {
	TotalTracks    int
	RepairedTracks int
	DryRun         bool
}

// SyncEngine defines the workflows the CLI drives.
type SyncEngine interface {
	// ProcessLibrary cleans, enhances, and saves every track in the source library,
	// reporting duplicates along the way.
	ProcessLibrary(ctx context.Context, progress chan<- ProgressUpdate, sink library.CommitSink) (*ProcessResult, error)

	// SyncPlaylists mirrors the library's playlists into the sink service.
	SyncPlaylists(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOptions) (*SyncResult, error)

	// RepairTitles runs the de-enhancer over the whole library to unwind corrupted
	// (stacked) title annotations.
	RepairTitles(ctx context.Context, progress chan<- ProgressUpdate, sink library.CommitSink) (*RepairResult, error)
}

// Engine implements SyncEngine over a source library, a sink service, and the mapping cache.
type Engine struct {
	source library.Source
	sink   services.Service
	proc   *processor.Processor
	cache  *repositories.MappingCache
	config *shared.Config
	picker MatchPicker
	logger *log.Logger
}

// NewEngine creates an Engine. sink, cache, and picker may be nil for workflows that do
// not need them; logger defaults to stderr.
func NewEngine(source library.Source, sink services.Service, proc *processor.Processor,
	cache *repositories.MappingCache, config *shared.Config, picker MatchPicker, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		source: source,
		sink:   sink,
		proc:   proc,
		cache:  cache,
		config: config,
		picker: picker,
		logger: logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ProcessLibrary runs the full metadata pipeline: load, de-enhance baselines, enhance,
// detect duplicates, save changed tracks through the sink.
func (e *Engine) ProcessLibrary(ctx context.Context, progress chan<- ProgressUpdate, sink library.CommitSink) (*ProcessResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, loadLibraryUpdate())
	collection, err := e.source.Collection()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	tracks := collection.AllTracks()
	result := &ProcessResult{TotalTracks: len(tracks)}

	e.sendProgress(progress, cleanTitlesUpdate(len(tracks)))
	e.proc.SetOriginalTitles(collection)

	e.sendProgress(progress, enhanceUpdate(len(tracks)))
	e.proc.ProcessCollection(collection)

	e.sendProgress(progress, detectDuplicatesUpdate())
	result.DuplicateGroups = len(processor.DuplicateGroups(tracks))
	e.proc.CheckDuplicates(tracks)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.sendProgress(progress, saveLibraryUpdate(countChanged(tracks)))
	changed, err := library.SaveChanges(tracks, sink)
	result.ChangedTracks = changed
	if err != nil {
		return result, err
	}

	_, result.DryRun = sink.(*library.DryRunSink)
	return result, nil
}

// RepairTitles runs the de-enhancer over every track in the library, persisting the
// recovered titles. Repairs historical corruption where annotations were stacked on each
// run; enhancement afterwards rebuilds a single clean annotation.
func (e *Engine) RepairTitles(ctx context.Context, progress chan<- ProgressUpdate, sink library.CommitSink) (*RepairResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}

	tracks, err := e.source.AllTracks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	result := &RepairResult{TotalTracks: len(tracks)}

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.sendProgress(progress, repairTitlesUpdate(i+1, len(tracks)))

		cleaned := processor.Clean(track.Title, track.Artists)
		if cleaned == track.Title {
			continue
		}
		e.logger.Infof("repairing title %q to %q", track.Title, cleaned)
		track.Title = cleaned
	}

	repaired, err := library.SaveChanges(tracks, sink)
	result.RepairedTracks = repaired
	if err != nil {
		return result, err
	}

	_, result.DryRun = sink.(*library.DryRunSink)
	return result, nil
}

// ClearCache drops cached track mappings: all of them, or only one algorithm's.
func (e *Engine) ClearCache(algorithm string) (int, error) {
	if e.cache == nil {
		return 0, fmt.Errorf("%w: mapping cache not initialized", shared.ErrServiceUnavailable)
	}
	if algorithm == "" {
		return e.cache.ClearAll()
	}
	return e.cache.ClearByAlgorithm(algorithm)
}

func countChanged(tracks []*models.Track) int {
	count := 0
	for _, t := range tracks {
		if t.Changed() {
			count++
		}
	}
	return count
}

// matchTrack resolves one library track to a sink track id, consulting the cache first.
//
// Returns ("", nil) when the track has no match; the miss is cached so the next run
// skips the search. Interactive selections are cached under the manual algorithm so
// clearing the automatic algorithm preserves them.
func (e *Engine) matchTrack(ctx context.Context, track *models.Track, opts SyncOptions, result *SyncResult) (string, error) {
	remap, err := e.cache.ShouldRemap(track.ID, opts.ForceRemap)
	if err != nil {
		return "", err
	}

	if !remap {
		cached, err := e.cache.Lookup(track.ID)
		if err != nil {
			return "", err
		}
		result.CacheHits++
		if cached.Matched() {
			return cached.TargetID(), nil
		}
		return "", nil
	}

	found, err := e.sink.SearchTrack(ctx, track.Title, track.Artists)
	if err != nil && !errors.Is(err, shared.ErrTrackNotFound) {
		return "", err
	}

	if found != nil {
		if err := e.cache.Store(track.ID, found.ID, models.AlgorithmBasic, 1.0); err != nil {
			return "", err
		}
		return found.ID, nil
	}

	if opts.Interactive && e.picker != nil {
		// pickManually caches the outcome itself, including explicit skips.
		picked, err := e.pickManually(ctx, track)
		if err != nil {
			return "", err
		}
		if picked == "" && !opts.DryRun {
			e.logger.Warnf("no match: %s - %s", track.Title, track.Artists)
		}
		return picked, nil
	}

	if err := e.cache.Store(track.ID, "", models.AlgorithmBasic, 0); err != nil {
		return "", err
	}
	if !opts.DryRun {
		e.logger.Warnf("no match: %s - %s", track.Title, track.Artists)
	}
	return "", nil
}

// pickManually asks the picker to choose among search candidates. The selection (or the
// explicit skip) is cached under the manual algorithm.
func (e *Engine) pickManually(ctx context.Context, track *models.Track) (string, error) {
	candidates, err := e.sink.SearchTracks(ctx, track.Title, track.Artists, 5)
	if err != nil && !errors.Is(err, shared.ErrTrackNotFound) {
		return "", err
	}

	picked, err := e.picker.Pick(ctx, track, candidates)
	if err != nil {
		return "", err
	}
	if picked == nil {
		if err := e.cache.Store(track.ID, "", models.AlgorithmManual, 0); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := e.cache.Store(track.ID, picked.ID, models.AlgorithmManual, 1.0); err != nil {
		return "", err
	}
	return picked.ID, nil
}
